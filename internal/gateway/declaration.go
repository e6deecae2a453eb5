package gateway

import "slices"

// ApprovalNever é a única política de aprovação usada: o modelo chama as
// ferramentas sem pedir confirmação ao usuário
const ApprovalNever = "never"

// Declaration identifica o gateway MCP e o subconjunto de ferramentas
// liberado para um turno. É montada a cada requisição e não muda depois.
type Declaration struct {
	Type            string   `json:"type"`
	Label           string   `json:"server_label"`
	Description     string   `json:"server_description"`
	URL             string   `json:"server_url"`
	Authorization   string   `json:"authorization,omitempty"`
	RequireApproval string   `json:"require_approval"`
	AllowedTools    []string `json:"allowed_tools"`
}

// Server é a parte estática da declaração, vinda da configuração
type Server struct {
	Label         string
	Description   string
	URL           string
	Authorization string
}

// NewDeclaration monta a declaração do turno com as ferramentas escolhidas
func NewDeclaration(srv Server, allowed []string) Declaration {
	return Declaration{
		Type:            "mcp",
		Label:           srv.Label,
		Description:     srv.Description,
		URL:             srv.URL,
		Authorization:   srv.Authorization,
		RequireApproval: ApprovalNever,
		AllowedTools:    slices.Clone(allowed),
	}
}

// Allows informa se a ferramenta remota está liberada neste turno
func (d Declaration) Allows(name string) bool {
	return slices.Contains(d.AllowedTools, name)
}

// Redacted devolve uma cópia sem o token, para exibição
func (d Declaration) Redacted() Declaration {
	out := d
	out.AllowedTools = slices.Clone(d.AllowedTools)
	if out.Authorization != "" {
		out.Authorization = "***"
	}
	return out
}
