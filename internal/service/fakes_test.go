package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vitormoschetta/seguradora-chat/internal/gateway"
	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// recordingRelay guarda tudo o que o assistente publicou
type recordingRelay struct {
	mu       sync.Mutex
	messages []string
	updates  []string
	statuses []string
	failSend bool
}

func (r *recordingRelay) Send(_ context.Context, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSend {
		return "", io.ErrClosedPipe
	}
	r.messages = append(r.messages, content)
	return fmt.Sprintf("m%d", len(r.messages)-1), nil
}

func (r *recordingRelay) Stream(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var idx int
	fmt.Sscanf(id, "m%d", &idx)
	r.messages[idx] += token
	return nil
}

func (r *recordingRelay) Update(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, id)
	return nil
}

func (r *recordingRelay) Status(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, text)
	return nil
}

// round é a resposta roteirizada de uma chamada ao modelo
type round struct {
	chunks []provider.StreamChunk
	err    error
}

type scriptedStream struct {
	chunks []provider.StreamChunk
	err    error
	pos    int
}

func (s *scriptedStream) Next() (*provider.StreamChunk, error) {
	if s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		return &c, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *scriptedStream) Close() error { return nil }

// scriptedProvider responde cada chamada com o próximo round
type scriptedProvider struct {
	rounds   []round
	requests []*provider.GenerateRequest
	openErr  error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) GenerateStream(_ context.Context, req *provider.GenerateRequest) (provider.ResponseStream, error) {
	p.requests = append(p.requests, req)
	if p.openErr != nil {
		return nil, p.openErr
	}
	i := len(p.requests) - 1
	if i >= len(p.rounds) {
		return &scriptedStream{}, nil
	}
	return &scriptedStream{chunks: p.rounds[i].chunks, err: p.rounds[i].err}, nil
}

func text(s string) provider.StreamChunk { return provider.StreamChunk{Delta: s} }

func callTool(id, name string) provider.StreamChunk {
	return provider.StreamChunk{ToolCalls: []provider.ToolCall{{ID: id, Name: name, Arguments: map[string]any{}}}, Done: true}
}

// fakeGateway responde chamadas com resultados fixos por nome
type fakeGateway struct {
	tools    []provider.ToolDefinition
	results  map[string]gateway.Result
	callErr  error
	toolsErr error
	calls    []string
	decls    []gateway.Declaration
}

func (g *fakeGateway) Tools(_ context.Context, decl gateway.Declaration) ([]provider.ToolDefinition, error) {
	g.decls = append(g.decls, decl)
	if g.toolsErr != nil {
		return nil, g.toolsErr
	}
	return g.tools, nil
}

func (g *fakeGateway) Call(_ context.Context, decl gateway.Declaration, alias string, _ map[string]any) (gateway.Result, error) {
	g.calls = append(g.calls, alias)
	if g.callErr != nil {
		return gateway.Result{}, g.callErr
	}
	if !decl.Allows(alias) {
		return gateway.Result{}, fmt.Errorf("%w: %s", gateway.ErrToolNotAllowed, alias)
	}
	return g.results[alias], nil
}
