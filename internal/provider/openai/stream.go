package openai

import (
	"errors"
	"io"
	"sort"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// chatStream é a parte do stream do SDK que usamos
type chatStream interface {
	Recv() (goopenai.ChatCompletionStreamResponse, error)
}

// partialCall acumula os pedaços de uma chamada de ferramenta
type partialCall struct {
	id   string
	name string
	args strings.Builder
}

// responseStream adapta o stream do SDK para provider.ResponseStream.
// Texto é repassado assim que chega; chamadas de ferramenta só saem
// completas, no último pedaço.
type responseStream struct {
	stream   chatStream
	closeFn  func()
	calls    map[int]*partialCall
	finished bool
}

func newResponseStream(stream *goopenai.ChatCompletionStream) *responseStream {
	return &responseStream{
		stream:  stream,
		closeFn: func() { stream.Close() },
		calls:   make(map[int]*partialCall),
	}
}

func (s *responseStream) Next() (*provider.StreamChunk, error) {
	if s.finished {
		return nil, io.EOF
	}

	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.finished = true
			calls, err := s.completedCalls()
			if err != nil {
				return nil, err
			}
			return &provider.StreamChunk{ToolCalls: calls, Done: true}, nil
		}
		if err != nil {
			return nil, mapOpenAIError(err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta
		s.accumulate(delta.ToolCalls)

		if delta.Content != "" {
			return &provider.StreamChunk{Delta: delta.Content}, nil
		}
	}
}

func (s *responseStream) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *responseStream) accumulate(deltas []goopenai.ToolCall) {
	for i, d := range deltas {
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		call, ok := s.calls[idx]
		if !ok {
			call = &partialCall{}
			s.calls[idx] = call
		}
		if d.ID != "" {
			call.id = d.ID
		}
		if d.Function.Name != "" {
			call.name = d.Function.Name
		}
		call.args.WriteString(d.Function.Arguments)
	}
}

func (s *responseStream) completedCalls() ([]provider.ToolCall, error) {
	if len(s.calls) == 0 {
		return nil, nil
	}

	indexes := make([]int, 0, len(s.calls))
	for idx := range s.calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]provider.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		call := s.calls[idx]
		args, err := parseArguments(call.args.String())
		if err != nil {
			return nil, &provider.ProviderError{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    "malformed arguments for tool " + call.name,
				Underlying: err,
			}
		}
		out = append(out, provider.ToolCall{ID: call.id, Name: call.name, Arguments: args})
	}
	return out, nil
}
