package routing

import (
	"github.com/vitormoschetta/seguradora-chat/internal/extract"
	"github.com/vitormoschetta/seguradora-chat/internal/model"
	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// Scenario é o estado do seletor
type Scenario string

const (
	ScenarioGeneral Scenario = "GERAL"
	ScenarioClaim   Scenario = "SINISTRO"
)

// Limites padrão de chamadas de ferramenta por turno
const (
	DefaultClaimMaxToolCalls   = 4
	DefaultGeneralMaxToolCalls = 2
)

// Plan é a decisão do seletor para um turno
type Plan struct {
	Scenario     Scenario
	Instructions string
	AllowedTools []string
	ToolMode     provider.ToolMode
	MaxToolCalls int

	// AskIdentifier indica que o turno termina pedindo um identificador,
	// sem chamar o modelo.
	AskIdentifier bool
}

// Selector escolhe ferramentas e instruções a partir da intenção do turno
type Selector struct {
	ClaimMaxToolCalls   int
	GeneralMaxToolCalls int
}

// NewSelector cria um seletor com os limites informados; zero usa o padrão
func NewSelector(claimMax, generalMax int) *Selector {
	if claimMax <= 0 {
		claimMax = DefaultClaimMaxToolCalls
	}
	if generalMax <= 0 {
		generalMax = DefaultGeneralMaxToolCalls
	}
	return &Selector{ClaimMaxToolCalls: claimMax, GeneralMaxToolCalls: generalMax}
}

// Select decide o plano do turno. state já deve conter os dados do turno atual.
func (s *Selector) Select(turnText string, state model.State) Plan {
	claim := extract.IsClaimIntent(turnText) || state.Event != ""

	if !claim {
		return Plan{
			Scenario:     ScenarioGeneral,
			Instructions: GeneralInstructions(),
			AllowedTools: clone(GeneralTools),
			ToolMode:     provider.ToolModeAuto,
			MaxToolCalls: s.GeneralMaxToolCalls,
		}
	}

	return Plan{
		Scenario:      ScenarioClaim,
		Instructions:  ClaimInstructions(),
		AllowedTools:  clone(ClaimTools),
		ToolMode:      provider.ToolModeRequired,
		MaxToolCalls:  s.ClaimMaxToolCalls,
		AskIdentifier: !state.HasIdentifier(),
	}
}

func clone(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
