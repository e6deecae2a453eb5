package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// fakeAPI responde como o endpoint de chat completions em streaming e
// guarda a última requisição recebida
type fakeAPI struct {
	status int
	events []string
	last   map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	_ = json.NewDecoder(r.Body).Decode(&f.last)

	if f.status != 0 && f.status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"invalid_request_error"}}`)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for _, ev := range f.events {
		fmt.Fprintf(w, "data: %s\n\n", ev)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func newTestProvider(t *testing.T, api *fakeAPI) *OpenAIProvider {
	t.Helper()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)
	return New("test-key", "gpt-5.1", ts.URL+"/v1")
}

func contentEvent(text string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","model":"gpt-5.1","choices":[{"index":0,"delta":{"content":%q}}]}`, text)
}

func toolEvent(index int, id, name, args string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","model":"gpt-5.1","choices":[{"index":0,"delta":{"tool_calls":[{"index":%d,"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]}}]}`, index, id, name, args)
}

func drain(t *testing.T, stream provider.ResponseStream) (string, []provider.ToolCall) {
	t.Helper()
	defer stream.Close()

	var text string
	var calls []provider.ToolCall
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return text, calls
		}
		require.NoError(t, err)
		text += chunk.Delta
		calls = append(calls, chunk.ToolCalls...)
	}
}

func TestGenerateStream_Text(t *testing.T) {
	api := &fakeAPI{events: []string{contentEvent("Olá"), contentEvent(", tudo bem?")}}
	p := newTestProvider(t, api)

	stream, err := p.GenerateStream(context.Background(), &provider.GenerateRequest{
		Instructions: "instr",
		Context:      "ctx",
		History:      []provider.Message{{Role: provider.RoleUser, Content: "oi"}},
	})
	require.NoError(t, err)

	text, calls := drain(t, stream)

	assert.Equal(t, "Olá, tudo bem?", text)
	assert.Empty(t, calls)

	msgs := api.last["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "ctx", msgs[1].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[2].(map[string]any)["role"])
	assert.NotContains(t, api.last, "tool_choice")
}

func TestGenerateStream_AccumulatesToolCalls(t *testing.T) {
	api := &fakeAPI{events: []string{
		toolEvent(0, "call_a", "lista_clientes", `{"cp`),
		toolEvent(1, "call_b", "apolices", ``),
		toolEvent(0, "", "", `f":"123"}`),
	}}
	p := newTestProvider(t, api)

	stream, err := p.GenerateStream(context.Background(), &provider.GenerateRequest{
		History:  []provider.Message{{Role: provider.RoleUser, Content: "bati o carro"}},
		Tools:    []provider.ToolDefinition{{Name: "lista_clientes"}, {Name: "apolices"}},
		ToolMode: provider.ToolModeRequired,
	})
	require.NoError(t, err)

	_, calls := drain(t, stream)

	require.Len(t, calls, 2)
	assert.Equal(t, "call_a", calls[0].ID)
	assert.Equal(t, "lista_clientes", calls[0].Name)
	assert.Equal(t, map[string]any{"cpf": "123"}, calls[0].Arguments)
	assert.Equal(t, "apolices", calls[1].Name)
	assert.Equal(t, map[string]any{}, calls[1].Arguments)

	assert.Equal(t, "required", api.last["tool_choice"])
	tools := api.last["tools"].([]any)
	assert.Len(t, tools, 2)
}

func TestGenerateStream_MalformedArguments(t *testing.T) {
	api := &fakeAPI{events: []string{toolEvent(0, "call_a", "x", `{not json`)}}
	p := newTestProvider(t, api)

	stream, err := p.GenerateStream(context.Background(), &provider.GenerateRequest{
		Tools: []provider.ToolDefinition{{Name: "x"}},
	})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next()
	assert.ErrorIs(t, err, provider.ErrInvalidRequest)
}

func TestGenerateStream_MapsAuthError(t *testing.T) {
	p := newTestProvider(t, &fakeAPI{status: http.StatusUnauthorized})

	_, err := p.GenerateStream(context.Background(), &provider.GenerateRequest{
		History: []provider.Message{{Role: provider.RoleUser, Content: "oi"}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrAuthentication)
}

func TestGenerateStream_MapsRateLimit(t *testing.T) {
	p := newTestProvider(t, &fakeAPI{status: http.StatusTooManyRequests})

	_, err := p.GenerateStream(context.Background(), &provider.GenerateRequest{})

	assert.ErrorIs(t, err, provider.ErrRateLimit)
}

func TestToMessages_ToolExchange(t *testing.T) {
	msgs, err := toMessages(&provider.GenerateRequest{
		History: []provider.Message{
			{Role: provider.RoleUser, Content: "cpf 123"},
			{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{
				{ID: "call_1", Name: "lista_clientes", Arguments: map[string]any{"cpf": "123"}},
			}},
			{Role: provider.RoleTool, ToolCallID: "call_1", ToolName: "lista_clientes", Content: "[]"},
		},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, goopenai.ChatMessageRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, `{"cpf":"123"}`, msgs[1].ToolCalls[0].Function.Arguments)
	assert.Equal(t, goopenai.ToolTypeFunction, msgs[1].ToolCalls[0].Type)

	assert.Equal(t, goopenai.ChatMessageRoleTool, msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
}

func TestToMessages_UnknownRole(t *testing.T) {
	_, err := toMessages(&provider.GenerateRequest{
		History: []provider.Message{{Role: "system", Content: "x"}},
	})
	assert.Error(t, err)
}

func TestToToolChoice(t *testing.T) {
	assert.Equal(t, "required", toToolChoice(provider.ToolModeRequired))
	assert.Equal(t, "none", toToolChoice(provider.ToolModeNone))
	assert.Equal(t, "auto", toToolChoice(provider.ToolModeAuto))
	assert.Equal(t, "auto", toToolChoice(""))
}

func TestName(t *testing.T) {
	assert.Equal(t, "openai/gpt-5.1", New("k", "gpt-5.1", "").Name())
}
