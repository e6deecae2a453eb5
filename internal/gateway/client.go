package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

var (
	ErrToolNotAllowed = errors.New("tool not allowed in this turn")
	ErrUnknownTool    = errors.New("unknown tool")
)

// ToolSession é a parte da sessão MCP usada pelo cliente.
// *mcp.ClientSession satisfaz esta interface.
type ToolSession interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

// Dialer abre uma nova sessão com o gateway
type Dialer func(ctx context.Context) (ToolSession, error)

// Options configura a conexão com o gateway MCP
type Options struct {
	Endpoint    string
	Token       string
	TokenHeader string
	Timeout     time.Duration
}

// RemoteTool é uma ferramenta anunciada pelo gateway
type RemoteTool struct {
	Name        string         `json:"name"`
	Alias       string         `json:"alias"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"input_schema,omitempty"`
}

// Result é o retorno de uma chamada de ferramenta
type Result struct {
	Text    string
	IsError bool
}

// Client conversa com o gateway MCP. A conexão é aberta no primeiro uso
// e refeita depois de uma falha.
type Client struct {
	dial Dialer

	mu      sync.Mutex
	session ToolSession
	catalog []RemoteTool
	aliases *Aliases
}

// NewClient cria o cliente sobre o transporte streamable HTTP do MCP
func NewClient(opts Options) *Client {
	return NewClientWithDialer(streamableDialer(opts))
}

// NewClientWithDialer cria o cliente com um Dialer próprio
func NewClientWithDialer(dial Dialer) *Client {
	return &Client{dial: dial}
}

func streamableDialer(opts Options) Dialer {
	// Criar HTTP client com autenticação customizada
	httpClient := &http.Client{
		Transport: &AuthenticatedTransport{
			Header: opts.TokenHeader,
			Token:  opts.Token,
			Base:   http.DefaultTransport,
		},
		Timeout: opts.Timeout,
	}

	return func(ctx context.Context) (ToolSession, error) {
		transport := &mcp.StreamableClientTransport{
			Endpoint:   opts.Endpoint,
			HTTPClient: httpClient,
		}
		client := mcp.NewClient(&mcp.Implementation{Name: "seguradora-chat", Version: "v1.0.0"}, nil)

		log.Printf("🔌 Connecting to MCP endpoint: %s", opts.Endpoint)
		// A sessão sobrevive à requisição que a abriu
		session, err := client.Connect(context.WithoutCancel(ctx), transport, nil)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ MCP session initialized")
		return session, nil
	}
}

func (c *Client) connect(ctx context.Context) (ToolSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}
	session, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP gateway: %w", err)
	}
	c.session = session
	return session, nil
}

// drop descarta a sessão com falha para que o próximo uso reconecte
func (c *Client) drop(session ToolSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != session {
		return
	}
	_ = session.Close()
	c.session = nil
	c.catalog = nil
	c.aliases = nil
}

// Catalog lista todas as ferramentas do gateway, com seus apelidos
func (c *Client) Catalog(ctx context.Context) ([]RemoteTool, error) {
	c.mu.Lock()
	if c.catalog != nil {
		out := append([]RemoteTool(nil), c.catalog...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	session, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	var tools []*mcp.Tool
	params := &mcp.ListToolsParams{}
	for {
		res, err := session.ListTools(ctx, params)
		if err != nil {
			c.drop(session)
			return nil, fmt.Errorf("failed to list MCP tools: %w", err)
		}
		tools = append(tools, res.Tools...)
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	aliases := NewAliases(names)

	catalog := make([]RemoteTool, 0, len(tools))
	for _, t := range tools {
		alias, _ := aliases.Alias(t.Name)
		catalog = append(catalog, RemoteTool{
			Name:        t.Name,
			Alias:       alias,
			Description: t.Description,
			Schema:      toolSchema(t),
		})
	}

	c.mu.Lock()
	if c.session == session {
		c.catalog = catalog
		c.aliases = aliases
	}
	c.mu.Unlock()

	return append([]RemoteTool(nil), catalog...), nil
}

// Tools devolve as ferramentas liberadas pela declaração, já com
// nomes aceitos pelos provedores
func (c *Client) Tools(ctx context.Context, decl Declaration) ([]provider.ToolDefinition, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	defs := make([]provider.ToolDefinition, 0, len(decl.AllowedTools))
	for _, t := range catalog {
		if !decl.Allows(t.Name) {
			continue
		}
		defs = append(defs, provider.ToolDefinition{
			Name:        t.Alias,
			Description: t.Description,
			Parameters:  t.Schema,
		})
	}
	if len(defs) < len(decl.AllowedTools) {
		log.Printf("⚠️  MCP gateway announced %d of %d allowed tools", len(defs), len(decl.AllowedTools))
	}
	return defs, nil
}

// Call executa a ferramenta pelo apelido. Erros de transporte voltam como
// error; falhas da própria ferramenta voltam em Result.IsError.
func (c *Client) Call(ctx context.Context, decl Declaration, alias string, args map[string]any) (Result, error) {
	if _, err := c.Catalog(ctx); err != nil {
		return Result{}, err
	}

	remote, err := c.resolve(decl, alias)
	if err != nil {
		return Result{}, err
	}

	session, err := c.connect(ctx)
	if err != nil {
		return Result{}, err
	}

	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      remote,
		Arguments: args,
	})
	if err != nil {
		c.drop(session)
		return Result{}, fmt.Errorf("failed to call MCP tool %s: %w", remote, err)
	}

	return Result{Text: resultText(res), IsError: res.IsError}, nil
}

func (c *Client) resolve(decl Declaration, alias string) (string, error) {
	c.mu.Lock()
	aliases := c.aliases
	c.mu.Unlock()

	remote := alias
	if aliases != nil {
		if name, ok := aliases.Remote(alias); ok {
			remote = name
		} else if !decl.Allows(alias) {
			return "", fmt.Errorf("%w: %s", ErrUnknownTool, alias)
		}
	}
	if !decl.Allows(remote) {
		return "", fmt.Errorf("%w: %s", ErrToolNotAllowed, remote)
	}
	return remote, nil
}

// Close encerra a sessão aberta, se houver
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.catalog = nil
	c.aliases = nil
	return err
}

func resultText(res *mcp.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

// toolSchema extrai o inputSchema da ferramenta como mapa
func toolSchema(t *mcp.Tool) map[string]any {
	data, err := json.Marshal(t)
	if err != nil {
		return defaultSchema()
	}
	var raw struct {
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return defaultSchema()
	}
	return schemaFromJSON(raw.InputSchema)
}

func schemaFromJSON(data json.RawMessage) map[string]any {
	var schema map[string]any
	if len(data) == 0 || json.Unmarshal(data, &schema) != nil || schema == nil {
		return defaultSchema()
	}
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]any{}
	}
	return schema
}

func defaultSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
