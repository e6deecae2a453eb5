package routing

import (
	"fmt"
	"strings"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

// Mensagens fixas exibidas no chat
const (
	WelcomeMessage = "✅ Pronto! Conectado ao LLM e ao MCP da Seguradora.\n" +
		"Dica: em sinistro, basta você informar **CPF** ou **placa** (um deles já resolve).\n" +
		"Comando: **/reset** limpa o contexto."

	ResetMessage = "🔄 Contexto limpo. O que aconteceu?"

	IdentifierPrompt = "Para eu consultar sua apólice no MCP e te orientar com base na cobertura, me envie **apenas 1** destes dados:\n" +
		"- **CPF/CNPJ**, ou\n" +
		"- **placa**, ou\n" +
		"- **e-mail/telefone** cadastrado.\n\n" +
		"Ex.: `CPF 123.456.789-10` ou `placa ABC1D23`."

	ErrorPrefix = "❌ Erro ao chamar LLM/MCP: "

	StatusThinking = "Consultando sistemas (MCP) e montando orientação…"
	StatusDone     = "Concluído."

	EmptyAnswer = "O agente processou a mensagem, mas não retornou uma resposta."
)

// ResetCommands são aceitos em qualquer caixa, como corpo inteiro da mensagem
var ResetCommands = []string{"/reset", "reset", "/restart"}

// IsResetCommand informa se o texto é um comando de reset
func IsResetCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, c := range ResetCommands {
		if t == c {
			return true
		}
	}
	return false
}

// MissingConfigMessage é o aviso de abertura da sessão para uma
// variável de ambiente ausente
func MissingConfigMessage(name string) string {
	if name == "MCP_TOKEN" {
		return "⚠️ Configure MCP_TOKEN no ambiente (ex.: `Bearer ...`)."
	}
	return fmt.Sprintf("⚠️ Configure %s no ambiente.", name)
}

// MissingVarsMessage é o aviso exibido a cada mensagem enquanto faltar
// configuração
func MissingVarsMessage(vars ...string) string {
	return fmt.Sprintf("⚠️ Faltam variáveis de ambiente (%s).", strings.Join(vars, " / "))
}

// ToolStatus é o texto de progresso durante uma chamada ao MCP
func ToolStatus(activity string) string {
	return fmt.Sprintf("Executando chamadas via MCP… (%s)", activity)
}

// ErrorStatus é o texto de progresso quando o turno falha
func ErrorStatus(err error) string {
	return fmt.Sprintf("Erro: %v", err)
}

func baseInstructions() string {
	return "Você é um assistente de sinistros de seguradora.\n" +
		"Objetivo: orientar o cliente usando DADOS REAIS via MCP.\n\n" +
		"Regras críticas:\n" +
		"1) NÃO invente cobertura/benefícios. Para cobertura/franquia/guincho/carro reserva/oficina, consulte o MCP.\n" +
		"2) Se houver QUALQUER identificador (CPF/CNPJ OU placa OU e-mail OU telefone), NÃO peça outro identificador: " +
		"use o MCP para localizar cliente/apólice e obter o que falta.\n" +
		"   - Exemplo: se tiver CPF e faltar placa, chame a tool de LISTA_CLIENTES para obter placa.\n" +
		"3) Só pergunte identificador se NÃO houver nenhum no contexto.\n" +
		"4) Se o contexto já tiver CPF/placa, NÃO repita a pergunta.\n" +
		"5) Responda em PT-BR, com passos claros e objetivos.\n"
}

// ClaimInstructions é o playbook do cenário de sinistro
func ClaimInstructions() string {
	return baseInstructions() +
		"\nCenário: SINISTRO.\n" +
		"Você DEVE consultar o MCP antes de orientar.\n" +
		"Fluxo recomendado:\n" +
		"- Use LISTA_CLIENTES para localizar cliente por CPF/CNPJ/placa/e-mail/telefone e obter dados faltantes.\n" +
		"- Use DADOS_APOLICES para obter dados da apólice.\n" +
		"- Use VERIFICA_ELEGIBILIDADE para confirmar guincho/carro reserva/etc conforme evento.\n" +
		"- Se útil, liste oficinas credenciadas e ofertas de carro reserva.\n"
}

// GeneralInstructions é a instrução do cenário geral
func GeneralInstructions() string {
	return baseInstructions() + "\nCenário: GERAL.\n"
}

// StateContext renderiza o estado confirmado para o modelo
func StateContext(s model.State) string {
	var b strings.Builder
	b.WriteString("CONTEXTO DA CONVERSA (estado confirmado pelo usuário):\n")
	fmt.Fprintf(&b, "- CPF: %s\n", orMissing(s.CPF))
	fmt.Fprintf(&b, "- CNPJ: %s\n", orMissing(s.CNPJ))
	fmt.Fprintf(&b, "- Placa: %s\n", orMissing(s.Plate))
	fmt.Fprintf(&b, "- E-mail: %s\n", orMissing(s.Email))
	fmt.Fprintf(&b, "- Telefone: %s\n", orMissing(s.Phone))
	fmt.Fprintf(&b, "- Evento: %s\n\n", orMissing(s.Event))
	b.WriteString("Regra: Se QUALQUER identificador estiver informado acima, use o MCP para buscar os demais dados. " +
		"Não peça placa se já há CPF, por exemplo.\n")
	return b.String()
}

func orMissing(v string) string {
	if v == "" {
		return "NÃO INFORMADO"
	}
	return v
}
