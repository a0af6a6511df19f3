package session

import (
	"errors"
	"strings"
	"testing"

	"nasty-client/internal/ai"
	"nasty-client/internal/roles"
	"nasty-client/internal/victory"
)

// scriptedProvider replays canned replies in order.
type scriptedProvider struct {
	replies []string
	calls   int
	err     error
}

func (p *scriptedProvider) Generate(msgs []ai.Message) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func mustRole(t *testing.T, key string) roles.Role {
	t.Helper()
	r, ok := roles.Get(key)
	if !ok {
		t.Fatalf("unknown role %q", key)
	}
	return r
}

func TestStartSeedsClientOpening(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	if s.State() != StateSelectingRole {
		t.Fatalf("new session state = %s", s.State())
	}

	gen := &scriptedProvider{replies: []string{"Массаж? Опять развод на деньги."}}
	opening, err := s.Start(gen)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StateInDialog {
		t.Errorf("state after Start = %s, want in_dialog", s.State())
	}
	if len(s.Dialog) != 1 || s.Dialog[0].Speaker != SpeakerClient || s.Dialog[0].Text != opening {
		t.Errorf("dialog after Start = %+v", s.Dialog)
	}
	if s.MessageCount != 0 {
		t.Errorf("opening line must not count as a learner message, count = %d", s.MessageCount)
	}
}

func TestStartFailureLeavesSessionRestartable(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	if _, err := s.Start(&scriptedProvider{err: errors.New("provider down")}); err == nil {
		t.Fatal("expected error")
	}
	if s.State() != StateSelectingRole || len(s.Dialog) != 0 {
		t.Errorf("failed Start must leave the session untouched: state=%s dialog=%v", s.State(), s.Dialog)
	}
	if _, err := s.Start(&scriptedProvider{replies: []string{"Ну, слушаю."}}); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestAdvanceNormalTurn(t *testing.T) {
	s := New(mustRole(t, "irina"))
	gen := &scriptedProvider{replies: []string{
		"У меня нет времени на ваши массажи.",
		"Полчаса? Ну не знаю, у меня совещание.",
	}}
	if _, err := s.Start(gen); err != nil {
		t.Fatal(err)
	}

	det := victory.NewPhraseDetector()
	reply, won, err := s.Advance(gen, det, "Это займёт всего полчаса, можно в обед.")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if won {
		t.Error("ordinary objection must not count as victory")
	}
	if s.MessageCount != 1 {
		t.Errorf("message count = %d, want 1", s.MessageCount)
	}
	if len(s.Dialog) != 3 {
		t.Fatalf("dialog length = %d, want 3", len(s.Dialog))
	}
	if s.Dialog[2].Speaker != SpeakerClient || s.Dialog[2].Text != reply {
		t.Errorf("last turn = %+v", s.Dialog[2])
	}
}

func TestAdvanceVictoryReplyNotAppended(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	gen := &scriptedProvider{replies: []string{
		"Не верю я в эти массажи.",
		"Договорились, записывайте на пятницу.",
	}}
	if _, err := s.Start(gen); err != nil {
		t.Fatal(err)
	}

	reply, won, err := s.Advance(gen, victory.NewPhraseDetector(), "Первый сеанс за полцены, решайтесь.")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !won {
		t.Fatal("agreement phrase must end the dialog")
	}
	if s.State() != StateTerminal {
		t.Errorf("state = %s, want terminal", s.State())
	}
	for _, turn := range s.Dialog {
		if turn.Text == reply {
			t.Error("closing reply must not be appended to the dialog")
		}
	}
	// learner turn stays, message counted
	if s.MessageCount != 1 {
		t.Errorf("message count = %d, want 1", s.MessageCount)
	}
	if _, _, err := s.Advance(gen, victory.NewPhraseDetector(), "ещё"); err == nil {
		t.Error("terminal session must reject Advance")
	}
}

func TestAdvanceRollbackOnGeneratorFailure(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	if _, err := s.Start(&scriptedProvider{replies: []string{"Слушаю."}}); err != nil {
		t.Fatal(err)
	}

	before := len(s.Dialog)
	_, _, err := s.Advance(&scriptedProvider{err: errors.New("timeout")}, victory.NewPhraseDetector(), "Здравствуйте!")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(s.Dialog) != before || s.MessageCount != 0 || s.State() != StateInDialog {
		t.Errorf("failed Advance must roll back: dialog=%d count=%d state=%s",
			len(s.Dialog), s.MessageCount, s.State())
	}

	// retry with a working provider succeeds
	if _, _, err := s.Advance(&scriptedProvider{replies: []string{"Ну допустим."}}, victory.NewPhraseDetector(), "Здравствуйте!"); err != nil {
		t.Errorf("retry: %v", err)
	}
}

func TestHistorySpeakerMapping(t *testing.T) {
	s := New(mustRole(t, "max"))
	gen := &scriptedProvider{replies: []string{"Какая скидка?", "Мало."}}
	if _, err := s.Start(gen); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Advance(gen, victory.NewPhraseDetector(), "Десять процентов."); err != nil {
		t.Fatal(err)
	}

	msgs := s.history()
	if msgs[0].Role != "system" {
		t.Fatalf("first message role = %q", msgs[0].Role)
	}
	wantRoles := []string{"assistant", "user", "assistant"}
	for i, want := range wantRoles {
		if got := msgs[i+1].Role; got != want {
			t.Errorf("message %d role = %q, want %q", i+1, got, want)
		}
	}
}

func TestTranscriptIncludesClosingReply(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	gen := &scriptedProvider{replies: []string{"Дорого у вас."}}
	if _, err := s.Start(gen); err != nil {
		t.Fatal(err)
	}

	tr := s.Transcript("Договорились.")
	if !strings.Contains(tr, "Клиент: Дорого у вас.") {
		t.Errorf("transcript missing opening line:\n%s", tr)
	}
	if !strings.HasSuffix(tr, "Клиент: Договорились.\n") {
		t.Errorf("transcript must end with the closing reply:\n%s", tr)
	}
}

// blockingProvider parks Generate until released, signalling when the call
// has started.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	reply   string
}

func (p *blockingProvider) Generate(msgs []ai.Message) (string, error) {
	close(p.started)
	<-p.release
	return p.reply, nil
}

func TestDiscardDuringAdvance(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	if _, err := s.Start(&scriptedProvider{replies: []string{"Слушаю."}}); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	m.Put("9", s)

	gen := &blockingProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
		reply:   "Ну допустим.",
	}

	advanced := make(chan error, 1)
	go func() {
		_, _, err := s.Advance(gen, victory.NewPhraseDetector(), "Здравствуйте!")
		advanced <- err
	}()

	<-gen.started

	// a slash command arriving mid-turn discards the session
	discarded := make(chan struct{})
	go func() {
		m.Discard("9")
		close(discarded)
	}()

	close(gen.release)
	if err := <-advanced; err != nil {
		t.Fatalf("Advance: %v", err)
	}
	<-discarded

	if s.State() != StateTerminal {
		t.Errorf("state = %s, want terminal after discard", s.State())
	}
	if _, ok := m.Get("9"); ok {
		t.Error("session must be gone from the manager")
	}
	if _, _, err := s.Advance(&scriptedProvider{replies: []string{"ещё"}}, victory.NewPhraseDetector(), "ещё"); err == nil {
		t.Error("discarded session must reject further turns")
	}
}

func TestAdvanceAfterTerminate(t *testing.T) {
	s := New(mustRole(t, "dmitry"))
	if _, err := s.Start(&scriptedProvider{replies: []string{"Слушаю."}}); err != nil {
		t.Fatal(err)
	}
	s.Terminate()
	if _, _, err := s.Advance(&scriptedProvider{replies: []string{"Ну."}}, victory.NewPhraseDetector(), "Привет"); err == nil {
		t.Error("terminated session must reject Advance")
	}
}

func TestManagerBusyFlag(t *testing.T) {
	m := NewManager()
	const user = "42"

	if !m.TryAcquire(user) {
		t.Fatal("first acquire must succeed")
	}
	if m.TryAcquire(user) {
		t.Error("second acquire while busy must fail")
	}
	m.Release(user)
	if !m.TryAcquire(user) {
		t.Error("acquire after release must succeed")
	}
	m.Release(user)
}

func TestManagerPutGetDiscard(t *testing.T) {
	m := NewManager()
	s := New(mustRole(t, "dmitry"))

	if _, ok := m.Get("7"); ok {
		t.Error("empty manager returned a session")
	}
	m.Put("7", s)
	if got, ok := m.Get("7"); !ok || got != s {
		t.Error("Put/Get mismatch")
	}
	m.Discard("7")
	if _, ok := m.Get("7"); ok {
		t.Error("Discard left the session behind")
	}
}
