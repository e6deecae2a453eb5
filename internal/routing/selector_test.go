package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitormoschetta/seguradora-chat/internal/extract"
	"github.com/vitormoschetta/seguradora-chat/internal/model"
	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

func stateFor(prior model.State, text string) model.State {
	prior.Merge(extract.Extract(text))
	return prior
}

func TestSelect_ClaimWithIdentifier(t *testing.T) {
	s := NewSelector(0, 0)
	text := "bati o carro, CPF 123.456.789-10"

	plan := s.Select(text, stateFor(model.State{}, text))

	assert.Equal(t, ScenarioClaim, plan.Scenario)
	assert.Equal(t, ClaimTools, plan.AllowedTools)
	assert.Equal(t, provider.ToolModeRequired, plan.ToolMode)
	assert.Equal(t, DefaultClaimMaxToolCalls, plan.MaxToolCalls)
	assert.False(t, plan.AskIdentifier)
	assert.Contains(t, plan.Instructions, "Cenário: SINISTRO.")
}

func TestSelect_ClaimWithoutIdentifier_AsksForOne(t *testing.T) {
	s := NewSelector(0, 0)
	text := "tive um acidente"

	plan := s.Select(text, stateFor(model.State{}, text))

	assert.Equal(t, ScenarioClaim, plan.Scenario)
	assert.True(t, plan.AskIdentifier)
}

func TestSelect_General(t *testing.T) {
	s := NewSelector(0, 0)
	text := "qual o telefone da central?"

	plan := s.Select(text, stateFor(model.State{}, text))

	assert.Equal(t, ScenarioGeneral, plan.Scenario)
	assert.Equal(t, GeneralTools, plan.AllowedTools)
	assert.Equal(t, provider.ToolModeAuto, plan.ToolMode)
	assert.Equal(t, DefaultGeneralMaxToolCalls, plan.MaxToolCalls)
	assert.False(t, plan.AskIdentifier)
	assert.Contains(t, plan.Instructions, "Cenário: GERAL.")
}

func TestSelect_CarriedEventKeepsClaim(t *testing.T) {
	s := NewSelector(0, 0)
	prior := model.State{Event: extract.EventTheft}
	text := "minha placa é ABC1D23"

	plan := s.Select(text, stateFor(prior, text))

	assert.Equal(t, ScenarioClaim, plan.Scenario)
	assert.False(t, plan.AskIdentifier)
}

func TestSelect_KeywordWithoutEventIsClaim(t *testing.T) {
	s := NewSelector(0, 0)

	plan := s.Select("preciso de guincho", model.State{})

	assert.Equal(t, ScenarioClaim, plan.Scenario)
	assert.True(t, plan.AskIdentifier)
}

func TestSelect_CustomCaps(t *testing.T) {
	s := NewSelector(7, 1)

	assert.Equal(t, 7, s.Select("sinistro", model.State{CPF: "1"}).MaxToolCalls)
	assert.Equal(t, 1, s.Select("oi", model.State{}).MaxToolCalls)
}

func TestSelect_ReturnsCopyOfToolList(t *testing.T) {
	s := NewSelector(0, 0)

	plan := s.Select("oi", model.State{})
	plan.AllowedTools[0] = "mutated"

	assert.Equal(t, ToolListCustomers, GeneralTools[0])
}

func TestClaimToolsIsSupersetOfGeneral(t *testing.T) {
	for _, name := range GeneralTools {
		assert.Contains(t, ClaimTools, name)
	}
	assert.Greater(t, len(ClaimTools), len(GeneralTools))
}

func TestIsResetCommand(t *testing.T) {
	for _, in := range []string{"/reset", "RESET", "  /Restart  ", "reset"} {
		assert.True(t, IsResetCommand(in), in)
	}
	for _, in := range []string{"reset please", "/resetar", ""} {
		assert.False(t, IsResetCommand(in), in)
	}
}

func TestStateContext(t *testing.T) {
	ctx := StateContext(model.State{CPF: "12345678910", Event: extract.EventCollision})

	assert.Contains(t, ctx, "- CPF: 12345678910\n")
	assert.Contains(t, ctx, "- Placa: NÃO INFORMADO\n")
	assert.Contains(t, ctx, "- Evento: colisão\n")
}

func TestMissingConfigMessage(t *testing.T) {
	assert.Equal(t, "⚠️ Configure OPENAI_API_KEY no ambiente.", MissingConfigMessage("OPENAI_API_KEY"))
	assert.Equal(t, "⚠️ Configure MCP_TOKEN no ambiente (ex.: `Bearer ...`).", MissingConfigMessage("MCP_TOKEN"))
	assert.Equal(t, "⚠️ Faltam variáveis de ambiente (OPENAI_API_KEY / MCP_TOKEN).",
		MissingVarsMessage("OPENAI_API_KEY", "MCP_TOKEN"))
	assert.Equal(t, "⚠️ Faltam variáveis de ambiente (MCP_TOKEN).", MissingVarsMessage("MCP_TOKEN"))
}

func TestStatusTexts(t *testing.T) {
	assert.Equal(t, "Executando chamadas via MCP… (lista)", ToolStatus("lista"))
	assert.Equal(t, "Erro: boom", ErrorStatus(errors.New("boom")))
}
