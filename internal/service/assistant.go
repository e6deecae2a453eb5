package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/vitormoschetta/seguradora-chat/internal/extract"
	"github.com/vitormoschetta/seguradora-chat/internal/gateway"
	"github.com/vitormoschetta/seguradora-chat/internal/model"
	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
	"github.com/vitormoschetta/seguradora-chat/internal/routing"
)

// Resultado devolvido ao modelo quando ele pede mais chamadas que o limite do turno
const toolLimitResult = "ERRO: limite de chamadas de ferramenta deste turno atingido. Responda com os dados já obtidos."

// ToolGateway é o acesso às ferramentas remotas usado pelo assistente
type ToolGateway interface {
	Tools(ctx context.Context, decl gateway.Declaration) ([]provider.ToolDefinition, error)
	Call(ctx context.Context, decl gateway.Declaration, alias string, args map[string]any) (gateway.Result, error)
}

// SecretsFunc lista as variáveis de ambiente obrigatórias ausentes
type SecretsFunc func() []string

// Assistant executa os turnos de conversa: extrai identificadores, escolhe
// ferramentas e conduz o modelo até a resposta final.
type Assistant struct {
	sessions *SessionManager
	selector *routing.Selector
	provider provider.Provider
	gateway  ToolGateway
	server   gateway.Server
	missing  SecretsFunc
}

func NewAssistant(
	sessions *SessionManager,
	selector *routing.Selector,
	llm provider.Provider,
	gw ToolGateway,
	srv gateway.Server,
	missing SecretsFunc,
) *Assistant {
	if missing == nil {
		missing = func() []string { return nil }
	}
	return &Assistant{
		sessions: sessions,
		selector: selector,
		provider: llm,
		gateway:  gw,
		server:   srv,
		missing:  missing,
	}
}

// Welcome inicia a sessão: confere a configuração, grava uma conversa vazia
// se a sessão ainda não existe e envia a mensagem de boas-vindas. Uma sessão
// já gravada é retomada com estado e histórico intactos.
func (a *Assistant) Welcome(ctx context.Context, sess *ChatSession, relay Relay) error {
	if missing := a.missing(); len(missing) > 0 {
		_, err := relay.Send(ctx, routing.MissingConfigMessage(missing[0]))
		return err
	}

	sess = a.sessions.Lock(sess)
	defer sess.Mu.Unlock()

	exists, err := a.sessions.Exists(ctx, sess.ID)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := a.sessions.Reset(ctx, sess.ID); err != nil {
			return err
		}
	}
	_, err = relay.Send(ctx, routing.WelcomeMessage)
	return err
}

// HandleTurn processa uma mensagem do usuário. Falhas do modelo ou do
// gateway são mostradas ao usuário; o erro retornado indica falha de
// infraestrutura (store ou relay).
func (a *Assistant) HandleTurn(ctx context.Context, sess *ChatSession, text string, relay Relay) error {
	if missing := a.missing(); len(missing) > 0 {
		_, err := relay.Send(ctx, routing.MissingVarsMessage(missing...))
		return err
	}

	sess = a.sessions.Lock(sess)
	defer sess.Mu.Unlock()

	text = strings.TrimSpace(text)

	if routing.IsResetCommand(text) {
		if _, err := a.sessions.Reset(ctx, sess.ID); err != nil {
			return err
		}
		_, err := relay.Send(ctx, routing.ResetMessage)
		return err
	}

	conv, err := a.sessions.Load(ctx, sess.ID)
	if err != nil {
		return err
	}

	// Atualiza estado com o que o usuário trouxe
	conv.State.Merge(extract.Extract(text))
	conv.Append(model.RoleUser, text)

	plan := a.selector.Select(text, conv.State)
	log.Printf("Processing message in session %s (scenario %s, %d tools)", sess.ID, plan.Scenario, len(plan.AllowedTools))

	if plan.AskIdentifier {
		if _, err := relay.Send(ctx, routing.IdentifierPrompt); err != nil {
			return err
		}
		return a.sessions.Save(ctx, conv)
	}

	msgID, err := relay.Send(ctx, "")
	if err != nil {
		return err
	}
	if err := relay.Status(ctx, routing.StatusThinking); err != nil {
		return err
	}

	answer, runErr := a.run(ctx, conv, plan, relay, msgID)

	if runErr != nil {
		log.Printf("❌ Turn failed in session %s: %v", sess.ID, runErr)
		if err := a.fail(ctx, relay, msgID, runErr); err != nil {
			return err
		}
		return a.sessions.Save(ctx, conv)
	}

	if answer == "" {
		if err := relay.Stream(ctx, msgID, routing.EmptyAnswer); err != nil {
			return err
		}
	}
	if err := relay.Update(ctx, msgID); err != nil {
		return err
	}
	if err := relay.Status(ctx, routing.StatusDone); err != nil {
		return err
	}

	if answer != "" {
		conv.Append(model.RoleAssistant, answer)
	}
	return a.sessions.Save(ctx, conv)
}

// fail finaliza a mensagem parcial como está e mostra o erro ao usuário
func (a *Assistant) fail(ctx context.Context, relay Relay, msgID string, cause error) error {
	if err := relay.Update(ctx, msgID); err != nil {
		return err
	}
	if err := relay.Status(ctx, routing.ErrorStatus(cause)); err != nil {
		return err
	}
	_, err := relay.Send(ctx, routing.ErrorPrefix+cause.Error())
	return err
}

// run conduz o ciclo modelo/ferramentas e devolve o texto final do turno.
// O modo obrigatório vale só para a primeira rodada; ao atingir o limite de
// chamadas a rodada seguinte proíbe ferramentas.
func (a *Assistant) run(ctx context.Context, conv *model.Conversation, plan routing.Plan, relay Relay, msgID string) (string, error) {
	decl := gateway.NewDeclaration(a.server, plan.AllowedTools)

	tools, err := a.gateway.Tools(ctx, decl)
	if err != nil {
		return "", err
	}

	history := toProviderHistory(conv.History)
	mode := plan.ToolMode
	calls := 0

	var answer strings.Builder
	emit := func(delta string) error {
		answer.WriteString(delta)
		return relay.Stream(ctx, msgID, delta)
	}

	for round := 0; round <= plan.MaxToolCalls; round++ {
		req := &provider.GenerateRequest{
			Instructions: plan.Instructions,
			Context:      routing.StateContext(conv.State),
			History:      history,
			Tools:        tools,
			ToolMode:     mode,
		}

		text, toolCalls, err := a.generate(ctx, req, answer.Len() > 0, emit)
		if err != nil {
			return strings.TrimSpace(answer.String()), err
		}
		if len(toolCalls) == 0 {
			break
		}

		history = append(history, provider.Message{
			Role:      provider.RoleAssistant,
			Content:   text,
			ToolCalls: toolCalls,
		})

		for _, call := range toolCalls {
			result, err := a.execute(ctx, decl, call, &calls, plan.MaxToolCalls, relay)
			if err != nil {
				return strings.TrimSpace(answer.String()), err
			}
			history = append(history, provider.Message{
				Role:       provider.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}

		mode = provider.ToolModeAuto
		if calls >= plan.MaxToolCalls {
			mode = provider.ToolModeNone
		}
	}

	return strings.TrimSpace(answer.String()), nil
}

// execute chama uma ferramenta respeitando o limite do turno. Recusas do
// gateway voltam ao modelo como resultado; falhas de transporte abortam.
func (a *Assistant) execute(ctx context.Context, decl gateway.Declaration, call provider.ToolCall, calls *int, maxCalls int, relay Relay) (string, error) {
	if *calls >= maxCalls {
		return toolLimitResult, nil
	}
	*calls++

	if err := relay.Status(ctx, routing.ToolStatus(call.Name)); err != nil {
		return "", err
	}

	res, err := a.gateway.Call(ctx, decl, call.Name, call.Arguments)
	switch {
	case errors.Is(err, gateway.ErrToolNotAllowed), errors.Is(err, gateway.ErrUnknownTool):
		return "ERRO: " + err.Error(), nil
	case err != nil:
		return "", err
	case res.IsError:
		return "ERRO: " + res.Text, nil
	default:
		return res.Text, nil
	}
}

// generate consome um stream do provedor. O texto é repassado via emit;
// as chamadas de ferramenta são devolvidas completas.
func (a *Assistant) generate(ctx context.Context, req *provider.GenerateRequest, separate bool, emit func(string) error) (string, []provider.ToolCall, error) {
	stream, err := a.provider.GenerateStream(ctx, req)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	var text strings.Builder
	var calls []provider.ToolCall
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return text.String(), calls, nil
		}
		if err != nil {
			return text.String(), calls, err
		}

		if chunk.Delta != "" {
			// Separa o texto de rodadas diferentes
			if text.Len() == 0 && separate {
				if err := emit("\n\n"); err != nil {
					return "", nil, fmt.Errorf("failed to relay token: %w", err)
				}
			}
			text.WriteString(chunk.Delta)
			if err := emit(chunk.Delta); err != nil {
				return "", nil, fmt.Errorf("failed to relay token: %w", err)
			}
		}
		calls = append(calls, chunk.ToolCalls...)
	}
}

func toProviderHistory(turns []model.Turn) []provider.Message {
	out := make([]provider.Message, 0, len(turns))
	for _, t := range turns {
		role := provider.RoleUser
		if t.Role == model.RoleAssistant {
			role = provider.RoleAssistant
		}
		out = append(out, provider.Message{Role: role, Content: t.Content})
	}
	return out
}
