package models

// Role identifica o autor de uma mensagem enviada ao provedor
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolMode controla se o modelo é obrigado a chamar ferramentas
type ToolMode string

const (
	// ToolModeAuto deixa o modelo decidir
	ToolModeAuto ToolMode = "auto"
	// ToolModeRequired obriga pelo menos uma chamada de ferramenta
	ToolModeRequired ToolMode = "required"
	// ToolModeNone proíbe chamadas de ferramenta
	ToolModeNone ToolMode = "none"
)

// Message é uma mensagem da conversa enviada ao provedor.
// Mensagens de ferramenta carregam ToolCallID e ToolName.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ToolCall é um pedido do modelo para executar uma ferramenta
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition declara uma ferramenta ao modelo.
// Parameters é um JSON Schema já decodificado.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// GenerateRequest encapsula todos os parâmetros de uma geração
type GenerateRequest struct {
	// Instructions é o bloco de instruções do cenário
	Instructions string

	// Context é o bloco de sistema com o estado da conversa
	Context string

	// History contém o histórico curto e as trocas de ferramenta do turno
	History []Message

	// Tools contém as ferramentas declaradas para este turno
	Tools []ToolDefinition

	ToolMode ToolMode
}

// ResponseStream dá acesso aos pedaços de uma resposta em streaming
type ResponseStream interface {
	// Next retorna o próximo pedaço, ou io.EOF ao final
	Next() (*StreamChunk, error)

	// Close libera recursos
	Close() error
}

// StreamChunk é um pedaço da resposta em streaming
type StreamChunk struct {
	// Delta é o texto incremental
	Delta string

	// ToolCalls são as chamadas de ferramenta completas deste pedaço
	ToolCalls []ToolCall

	// Done indica o último pedaço
	Done bool
}
