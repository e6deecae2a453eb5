package gemini

import (
	"io"
	"iter"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// responseStream adapta o iterador do ADK para provider.ResponseStream.
// Pedaços parciais trazem o texto incremental; a resposta final agregada
// traz as chamadas de função. O texto final só é usado se nada veio
// em pedaços.
type responseStream struct {
	next func() (*model.LLMResponse, error, bool)
	stop func()

	sawPartialText bool
	finalText      strings.Builder
	finalCalls     []provider.ToolCall
	partialCalls   []provider.ToolCall
	finished       bool
}

func newResponseStream(seq iter.Seq2[*model.LLMResponse, error]) *responseStream {
	next, stop := iter.Pull2(seq)
	return &responseStream{next: next, stop: stop}
}

func (s *responseStream) Next() (*provider.StreamChunk, error) {
	if s.finished {
		return nil, io.EOF
	}

	for {
		resp, err, ok := s.next()
		if !ok {
			s.finished = true
			return s.lastChunk(), nil
		}
		if err != nil {
			s.finished = true
			return nil, mapGeminiError(err)
		}
		if resp == nil || resp.Content == nil {
			continue
		}

		text, calls := splitParts(resp.Content.Parts)
		if resp.Partial {
			s.partialCalls = append(s.partialCalls, calls...)
			if text != "" {
				s.sawPartialText = true
				return &provider.StreamChunk{Delta: text}, nil
			}
			continue
		}

		s.finalText.WriteString(text)
		s.finalCalls = append(s.finalCalls, calls...)
	}
}

func (s *responseStream) lastChunk() *provider.StreamChunk {
	chunk := &provider.StreamChunk{Done: true, ToolCalls: s.finalCalls}
	if len(chunk.ToolCalls) == 0 {
		chunk.ToolCalls = s.partialCalls
	}
	if !s.sawPartialText {
		chunk.Delta = s.finalText.String()
	}
	return chunk
}

func (s *responseStream) Close() error {
	s.stop()
	return nil
}

func splitParts(parts []*genai.Part) (string, []provider.ToolCall) {
	var text strings.Builder
	var calls []provider.ToolCall
	for _, part := range parts {
		if part == nil {
			continue
		}
		// Partes de raciocínio não vão para o usuário
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			args := fc.Args
			if args == nil {
				args = map[string]any{}
			}
			calls = append(calls, provider.ToolCall{ID: fc.ID, Name: fc.Name, Arguments: args})
		}
	}
	return text.String(), calls
}
