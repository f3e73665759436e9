package conversation

import (
	"context"
	"fmt"
	"strings"

	"parley/internal/scenario"
	"parley/internal/services/llm"
	"parley/internal/store"
)

// brevityConstraint keeps replies short enough to feel natural when spoken
// aloud by the voice layer.
const brevityConstraint = "Stay in character at all times. Keep every reply " +
	"conversational and brief: one to three sentences, no lists, no stage " +
	"directions, no narration."

// Completer is the slice of the model client the engine needs.
type Completer interface {
	Complete(ctx context.Context, system string, turns []llm.Turn) (string, error)
}

// Engine produces the next assistant utterance for a session. It is
// stateless: the caller persists the resulting turn.
type Engine struct {
	completer Completer
}

// NewEngine constructs a conversation engine backed by the given completer.
func NewEngine(completer Completer) *Engine {
	return &Engine{completer: completer}
}

// NextTurn maps the stored transcript plus the new participant message into
// model turns and returns the model's reply verbatim. An empty reply is valid
// and returned as "".
func (e *Engine) NextTurn(ctx context.Context, sc *scenario.Scenario, prior []store.Message, participantMsg string) (string, error) {
	if sc == nil {
		return "", fmt.Errorf("conversation: scenario required")
	}
	turns := make([]llm.Turn, 0, len(prior)+1)
	for _, msg := range prior {
		turns = append(turns, llm.Turn{Role: turnRole(msg.Role), Content: msg.Content})
	}
	turns = append(turns, llm.Turn{Role: "user", Content: participantMsg})
	return e.completer.Complete(ctx, systemPrompt(sc), turns)
}

func systemPrompt(sc *scenario.Scenario) string {
	prompt := strings.TrimSpace(sc.SystemPrompt)
	if prompt == "" {
		return brevityConstraint
	}
	return prompt + "\n\n" + brevityConstraint
}

func turnRole(role store.Role) string {
	if role == store.RoleParticipant {
		return "user"
	}
	return "assistant"
}
