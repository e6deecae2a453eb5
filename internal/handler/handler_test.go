package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitormoschetta/seguradora-chat/internal/config"
	"github.com/vitormoschetta/seguradora-chat/internal/gateway"
	"github.com/vitormoschetta/seguradora-chat/internal/model"
	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
	"github.com/vitormoschetta/seguradora-chat/internal/routing"
	"github.com/vitormoschetta/seguradora-chat/internal/server"
	"github.com/vitormoschetta/seguradora-chat/internal/service"
	"github.com/vitormoschetta/seguradora-chat/internal/store"
)

// --- fakes ---

type replyStream struct {
	reply string
	sent  bool
}

func (s *replyStream) Next() (*provider.StreamChunk, error) {
	if s.sent {
		return nil, io.EOF
	}
	s.sent = true
	return &provider.StreamChunk{Delta: s.reply, Done: true}, nil
}

func (s *replyStream) Close() error { return nil }

type replyProvider struct{ reply string }

func (p *replyProvider) Name() string { return "reply" }

func (p *replyProvider) GenerateStream(context.Context, *provider.GenerateRequest) (provider.ResponseStream, error) {
	return &replyStream{reply: p.reply}, nil
}

type stubGateway struct {
	catalog []gateway.RemoteTool
	err     error
}

func (g *stubGateway) Catalog(context.Context) ([]gateway.RemoteTool, error) {
	return g.catalog, g.err
}

func (g *stubGateway) Tools(context.Context, gateway.Declaration) ([]provider.ToolDefinition, error) {
	return nil, g.err
}

func (g *stubGateway) Call(context.Context, gateway.Declaration, string, map[string]any) (gateway.Result, error) {
	return gateway.Result{}, errors.New("not expected")
}

type fixture struct {
	ts       *httptest.Server
	srv      *server.Server
	gateway  *stubGateway
	sessions *service.SessionManager
	missing  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gateway:  &stubGateway{catalog: []gateway.RemoteTool{{Name: routing.ToolListCustomers, Alias: "lista_clientes"}}},
		sessions: service.NewSessionManager(store.NewMemoryStore(time.Hour), 12),
	}

	cfg := config.DefaultConfig()
	cfg.MCPToken = "Bearer secret"
	assistant := service.NewAssistant(
		f.sessions,
		routing.NewSelector(0, 0),
		&replyProvider{reply: "Olá! Como posso ajudar?"},
		f.gateway,
		gateway.Server{Label: cfg.MCPLabel, URL: cfg.MCPURL, Authorization: cfg.MCPToken},
		func() []string { return f.missing },
	)

	f.srv = &server.Server{
		Config:         cfg,
		Assistant:      assistant,
		SessionManager: f.sessions,
		Gateway:        f.gateway,
	}
	f.srv.SetupRouter(NewHandler(f.srv))
	f.ts = httptest.NewServer(f.srv.Router)
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) postChat(t *testing.T, body string) (*http.Response, model.ChatResponse) {
	t.Helper()
	resp, err := http.Post(f.ts.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out model.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (f *fixture) getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// --- HTTP ---

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestHandleRoot(t *testing.T) {
	f := newFixture(t)

	var out map[string]any
	status := f.getJSON(t, "/", &out)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Seguradora Chat - LLM + MCP Gateway", out["service"])
	assert.Equal(t, "openai", out["model"].(map[string]any)["provider"])
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	resp, out := f.postChat(t, "{not json")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON format", out.Error)
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	resp, out := f.postChat(t, `{"message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Message is required", out.Error)
}

func TestHandleChat_GeneralTurn(t *testing.T) {
	f := newFixture(t)

	resp, out := f.postChat(t, `{"message":"bom dia"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Olá! Como posso ajudar?", out.Response)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, []string{routing.StatusThinking, routing.StatusDone}, out.Steps)
	assert.Empty(t, out.Error)
}

func TestHandleChat_ClaimWithoutIdentifier(t *testing.T) {
	f := newFixture(t)

	_, out := f.postChat(t, `{"message":"tive um acidente","session_id":"s1"}`)

	assert.Equal(t, "s1", out.SessionID)
	assert.Equal(t, routing.IdentifierPrompt, out.Response)
	assert.Empty(t, out.Steps)

	var sess model.SessionResponse
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/sessions/s1", &sess))
	assert.Equal(t, "colisão", sess.State.Event)
	assert.Len(t, sess.History, 1)
}

func TestHandleChat_MissingSecrets(t *testing.T) {
	f := newFixture(t)
	f.missing = []string{"OPENAI_API_KEY"}

	_, out := f.postChat(t, `{"message":"oi"}`)

	assert.Equal(t, "⚠️ Faltam variáveis de ambiente (OPENAI_API_KEY).", out.Response)
}

func TestSessions_GetResetDelete(t *testing.T) {
	f := newFixture(t)
	f.postChat(t, `{"message":"minha placa é ABC1D23","session_id":"s2"}`)

	var sess model.SessionResponse
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/sessions/s2", &sess))
	assert.Equal(t, "ABC1D23", sess.State.Plate)
	assert.Len(t, sess.History, 2)

	resp, err := http.Post(f.ts.URL+"/api/sessions/s2/reset", "application/json", nil)
	require.NoError(t, err)
	var reset model.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reset))
	resp.Body.Close()
	assert.Equal(t, routing.ResetMessage, reset.Response)

	var afterReset model.SessionResponse
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/sessions/s2", &afterReset))
	assert.Equal(t, model.State{}, afterReset.State)
	assert.Empty(t, afterReset.History)

	req, err := http.NewRequest(http.MethodDelete, f.ts.URL+"/api/sessions/s2", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, http.StatusNotFound, f.getJSON(t, "/api/sessions/s2", nil))
}

func TestHandleTools(t *testing.T) {
	f := newFixture(t)

	var out map[string]any
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/tools", &out))

	scenarios := out["scenarios"].(map[string]any)
	assert.Len(t, scenarios["SINISTRO"], len(routing.ClaimTools))
	assert.Len(t, scenarios["GERAL"], len(routing.GeneralTools))

	mcpServer := out["mcp_server"].(map[string]any)
	assert.Equal(t, "***", mcpServer["authorization"])
	assert.Equal(t, "never", mcpServer["require_approval"])

	tools := out["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "lista_clientes", tools[0].(map[string]any)["alias"])
}

func TestHandleTools_GatewayDown(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("connection refused")

	var out map[string]any
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/tools", &out))

	assert.Equal(t, "connection refused", out["error"])
	assert.NotContains(t, out, "tools")
}

// --- WebSocket ---

func dialWS(t *testing.T, f *fixture, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) model.WSFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame model.WSFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocket_FullTurn(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f, "ws1")

	connected := readFrame(t, conn)
	assert.Equal(t, model.FrameConnected, connected.Type)
	assert.Equal(t, "ws1", connected.SessionID)

	welcome := readFrame(t, conn)
	assert.Equal(t, model.FrameMessage, welcome.Type)
	assert.Equal(t, routing.WelcomeMessage, welcome.Content)

	require.NoError(t, conn.WriteJSON(model.WSIncoming{Text: "bom dia"}))

	placeholder := readFrame(t, conn)
	assert.Equal(t, model.FrameMessage, placeholder.Type)
	assert.Empty(t, placeholder.Content)
	require.NotEmpty(t, placeholder.MessageID)

	thinking := readFrame(t, conn)
	assert.Equal(t, model.WSFrame{Type: model.FrameStatus, SessionID: "ws1", Content: routing.StatusThinking}, thinking)

	token := readFrame(t, conn)
	assert.Equal(t, model.FrameToken, token.Type)
	assert.Equal(t, placeholder.MessageID, token.MessageID)
	assert.Equal(t, "Olá! Como posso ajudar?", token.Content)

	update := readFrame(t, conn)
	assert.Equal(t, model.FrameUpdate, update.Type)
	assert.Equal(t, placeholder.MessageID, update.MessageID)

	done := readFrame(t, conn)
	assert.Equal(t, routing.StatusDone, done.Content)
}

func TestWebSocket_ResumesExistingSession(t *testing.T) {
	f := newFixture(t)
	f.postChat(t, `{"message":"minha placa é ABC1D23","session_id":"http1"}`)

	conn := dialWS(t, f, "http1")
	connected := readFrame(t, conn)
	assert.Equal(t, "http1", connected.SessionID)
	welcome := readFrame(t, conn)
	assert.Equal(t, routing.WelcomeMessage, welcome.Content)

	var sess model.SessionResponse
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/sessions/http1", &sess))
	assert.Equal(t, "ABC1D23", sess.State.Plate)
	assert.Len(t, sess.History, 2)
}

func TestWebSocket_InvalidFrame(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f, "ws2")
	readFrame(t, conn)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	frame := readFrame(t, conn)
	assert.Equal(t, model.FrameError, frame.Type)
	assert.Contains(t, frame.Content, "Invalid message format")
}

func TestWebSocket_MissingSecretWarning(t *testing.T) {
	f := newFixture(t)
	f.missing = []string{"MCP_TOKEN"}
	conn := dialWS(t, f, "ws3")
	readFrame(t, conn)

	frame := readFrame(t, conn)

	assert.Equal(t, "⚠️ Configure MCP_TOKEN no ambiente (ex.: `Bearer ...`).", frame.Content)
}

func TestWebSocket_CloseEndsSession(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f, "ws4")
	readFrame(t, conn)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(model.WSIncoming{Text: "minha placa é ABC1D23"}))
	for range 5 {
		readFrame(t, conn)
	}
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/sessions/ws4", nil))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool {
		return f.getJSON(t, "/api/sessions/ws4", nil) == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)
}

// --- relays ---

func TestBufferRelay(t *testing.T) {
	ctx := context.Background()
	b := NewBufferRelay()

	id, err := b.Send(ctx, "")
	require.NoError(t, err)
	require.NoError(t, b.Stream(ctx, id, "Olá"))
	require.NoError(t, b.Stream(ctx, id, ", mundo"))
	require.NoError(t, b.Status(ctx, "ok"))
	_, err = b.Send(ctx, "segunda")
	require.NoError(t, err)

	assert.Error(t, b.Stream(ctx, "missing", "x"))

	resp := b.Response("s")
	assert.Equal(t, "Olá, mundo\n\nsegunda", resp.Response)
	assert.Equal(t, []string{"ok"}, resp.Steps)
	assert.Len(t, resp.Messages, 2)
}

func TestHandleChat_LongMessage(t *testing.T) {
	f := newFixture(t)
	payload, err := json.Marshal(model.ChatRequest{Message: strings.Repeat("a", 10_000)})
	require.NoError(t, err)

	resp, err := http.Post(f.ts.URL+"/api/chat", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
