package dialogue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/village"
	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

// MaxHistoryTurns bounds the conversation history kept per session. Older
// turns are dropped from the front; the transcript keeps everything.
const MaxHistoryTurns = 20

// fallbackLines are used when neither scripted nor AI responders produce a
// reply. Selection is seeded by the villager's note path so the same villager
// falls back to the same rotation of lines.
var fallbackLines = []string{
	"Hmm? Oh, I was just thinking about my notes.",
	"The fountain is lovely this time of day, isn't it?",
	"I keep meaning to reread what I wrote. There's always more to it.",
	"Careful near the forest. The trees don't move for anyone.",
	"Every house here holds a story. Mine is still being written.",
}

// Session is one in-progress conversation between the player and a villager.
type Session struct {
	ID        string
	Villager  village.Villager
	StartedAt time.Time

	turns    []Turn
	all      []Turn
	fallback *rng.Source
}

// Manager tracks dialogue sessions and routes player messages through the
// responder chain: zone scripts first, then the AI responder, then a canned
// fallback line.
//
// Invariant: all access to the session map is guarded by the mutex.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	scripts    *ScriptEngine
	ai         Responder
	transcript *TranscriptWriter
	logger     *zap.Logger
}

// NewManager creates a dialogue manager. The script engine and transcript
// writer are optional; the AI responder may be nil when no API key is
// configured.
func NewManager(scripts *ScriptEngine, ai Responder, transcript *TranscriptWriter, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		scripts:    scripts,
		ai:         ai,
		transcript: transcript,
		logger:     logger,
	}
}

// StartSession opens a conversation with the villager and returns the session
// ID used by later Talk and EndSession calls.
//
// Postcondition: the returned ID is unique among live sessions.
func (m *Manager) StartSession(v village.Villager) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.sessions[id] = &Session{
		ID:        id,
		Villager:  v,
		StartedAt: time.Now(),
		fallback:  rng.NewFromString(v.NotePath),
	}
	m.logger.Debug("dialogue session started",
		zap.String("session", id),
		zap.String("villager", v.ID))
	return id
}

// Talk records the player's message, asks the responder chain for a reply,
// and records the reply.
//
// Precondition: sessionID must name a live session.
// Postcondition: Talk always returns a reply for a live session; a canned
// fallback line is used when no responder answers.
func (m *Manager) Talk(ctx context.Context, sessionID, message string) (string, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return "", fmt.Errorf("dialogue: unknown session %s", sessionID)
	}
	history := make([]Turn, len(s.turns))
	copy(history, s.turns)
	v := s.Villager
	m.mu.Unlock()

	reply := m.reply(ctx, v, message, history)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok = m.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("dialogue: session %s ended mid-reply", sessionID)
	}
	s.record(Turn{Role: RolePlayer, Text: message})
	s.record(Turn{Role: RoleVillager, Text: reply})
	return reply, nil
}

// EndSession closes the session and, when a transcript writer is configured,
// appends the full conversation to the vault. Ending an unknown session is
// not an error.
func (m *Manager) EndSession(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if m.transcript == nil || len(s.all) == 0 {
		return nil
	}
	rel, err := m.transcript.Append(s.Villager, s.all, s.StartedAt)
	if err != nil {
		return err
	}
	m.logger.Info("dialogue transcript written",
		zap.String("villager", s.Villager.ID),
		zap.String("path", rel),
		zap.Int("turns", len(s.all)))
	return nil
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// reply walks the responder chain. Lua scripts take priority so authored
// dialogue always wins over generated dialogue.
func (m *Manager) reply(ctx context.Context, v village.Villager, message string, history []Turn) string {
	if m.scripts != nil {
		text, err := m.scripts.Reply(ctx, v, message, history)
		if err == nil {
			return text
		}
		if err != ErrNoReply {
			m.logger.Warn("scripted reply failed",
				zap.String("villager", v.ID),
				zap.Error(err))
		}
	}
	if m.ai != nil {
		text, err := m.ai.Reply(ctx, v, message, history)
		if err == nil {
			return text
		}
		if err != ErrNoReply {
			m.logger.Warn("AI reply failed",
				zap.String("villager", v.ID),
				zap.Error(err))
		}
	}
	return m.fallbackLine(v)
}

// fallbackLine picks the next canned line from the villager's seeded rotation.
func (m *Manager) fallbackLine(v village.Villager) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Villager.ID == v.ID {
			line, _ := rng.Pick(s.fallback, fallbackLines)
			return line
		}
	}
	line, _ := rng.Pick(rng.NewFromString(v.NotePath), fallbackLines)
	return line
}

// record appends a turn to both the bounded history and the full transcript.
func (s *Session) record(t Turn) {
	s.all = append(s.all, t)
	s.turns = append(s.turns, t)
	if len(s.turns) > MaxHistoryTurns {
		s.turns = s.turns[len(s.turns)-MaxHistoryTurns:]
	}
}
