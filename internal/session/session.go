// /internal/session/session.go
package session

import (
	"fmt"
	"strings"
	"sync"

	"nasty-client/internal/ai"
	"nasty-client/internal/roles"
	"nasty-client/internal/victory"
)

// Speaker tags a dialog turn.
type Speaker string

const (
	SpeakerLearner Speaker = "learner"
	SpeakerClient  Speaker = "client"
)

type Turn struct {
	Speaker Speaker
	Text    string
}

// State of one conversation attempt.
type State int

const (
	StateSelectingRole State = iota
	StateInDialog
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateSelectingRole:
		return "selecting_role"
	case StateInDialog:
		return "in_dialog"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Session is the in-memory state of one conversation attempt. Never
// persisted: a process restart drops all active dialogs.
//
// Gateway events each run on their own goroutine, so a slash command can
// terminate the session while a dialog turn is still waiting on the
// provider. The mutex serializes those; a Terminate issued mid-turn takes
// effect once the turn finishes.
type Session struct {
	Role         roles.Role
	Dialog       []Turn
	MessageCount int

	mu    sync.Mutex
	state State
}

// New creates a session for the chosen role, still waiting for Start.
func New(role roles.Role) *Session {
	return &Session{Role: role, state: StateSelectingRole}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start asks the generator for the client's opening line and moves the
// session into dialog. On generator failure the session stays in
// selecting_role and can be started again.
func (s *Session) Start(gen ai.Provider) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelectingRole {
		return "", fmt.Errorf("session: start in state %s", s.state)
	}

	opening, err := gen.Generate([]ai.Message{
		{Role: "system", Content: roles.SystemPrompt(s.Role)},
		{Role: "user", Content: roles.StartInstruction()},
	})
	if err != nil {
		return "", err
	}

	s.Dialog = append(s.Dialog, Turn{Speaker: SpeakerClient, Text: opening})
	s.state = StateInDialog
	return opening, nil
}

// Advance applies one learner turn: appends it, generates the client reply
// and checks it against the victory policy. On victory the reply is NOT
// appended to the dialog and the session becomes terminal. On generator
// failure the learner turn is rolled back so the session is exactly as it
// was before the call.
func (s *Session) Advance(gen ai.Provider, det victory.Detector, learnerText string) (reply string, won bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInDialog {
		return "", false, fmt.Errorf("session: advance in state %s", s.state)
	}

	s.MessageCount++
	s.Dialog = append(s.Dialog, Turn{Speaker: SpeakerLearner, Text: learnerText})

	reply, err = gen.Generate(s.history())
	if err != nil {
		s.Dialog = s.Dialog[:len(s.Dialog)-1]
		s.MessageCount--
		return "", false, err
	}

	if det.Detect(reply) {
		s.state = StateTerminal
		return reply, true, nil
	}

	s.Dialog = append(s.Dialog, Turn{Speaker: SpeakerClient, Text: reply})
	return reply, false, nil
}

// Terminate drops out of dialog without scoring (fallback input, restart).
// Blocks while a turn is in flight and applies after it.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateTerminal
}

// history renders the dialog in the provider's role vocabulary: the learner
// speaks as "user", the simulated client as "assistant".
func (s *Session) history() []ai.Message {
	msgs := make([]ai.Message, 0, len(s.Dialog)+1)
	msgs = append(msgs, ai.Message{Role: "system", Content: roles.SystemPrompt(s.Role)})
	for _, t := range s.Dialog {
		role := "assistant"
		if t.Speaker == SpeakerLearner {
			role = "user"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: t.Text})
	}
	return msgs
}

// Transcript renders the dialog for the written evaluation.
func (s *Session) Transcript(closingReply string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript(closingReply)
}

func (s *Session) transcript(closingReply string) string {
	var sb strings.Builder
	for _, t := range s.Dialog {
		if t.Speaker == SpeakerLearner {
			sb.WriteString("Администратор: ")
		} else {
			sb.WriteString("Клиент: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	if closingReply != "" {
		sb.WriteString("Клиент: ")
		sb.WriteString(closingReply)
		sb.WriteString("\n")
	}
	return sb.String()
}

// EvaluationMessages builds the request for the written evaluation of a won
// dialog. closingReply is the deal-closing line that was never appended.
func (s *Session) EvaluationMessages(closingReply string) []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []ai.Message{
		{Role: "system", Content: roles.EvaluationPrompt(s.Role)},
		{Role: "user", Content: s.transcript(closingReply)},
	}
}
