// Package session enforces the one-live-code-session-per-user rule and
// expires idle sessions.
package session

import (
	"math/rand"
	"sync"
	"time"

	"mailshop/internal/logging"
	"mailshop/internal/model"
)

const codeLength = 8

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultTimeouts is the inactivity window per code service.
func DefaultTimeouts() map[model.CodeService]time.Duration {
	return map[model.CodeService]time.Duration{
		model.CodeHotmail: 15 * time.Minute,
		model.CodeGmail:   10 * time.Minute,
	}
}

// Session binds a chat user to one in-flight code-retrieval attempt.
// Code is an opaque token shown to the user, nothing checks it.
type Session struct {
	UserID    int64
	Service   model.CodeService
	Code      string
	CreatedAt time.Time
}

type entry struct {
	sess  Session
	timer *time.Timer
}

// ExpiryFunc is called after a session times out, outside the
// manager's lock. It fires at most once per session.
type ExpiryFunc func(userID int64, timeout time.Duration)

// Manager owns every session and its expiry timer. All access goes
// through Start/Get/Clear, internally synchronized.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	timeouts map[model.CodeService]time.Duration
	onExpire ExpiryFunc
}

func NewManager(timeouts map[model.CodeService]time.Duration, onExpire ExpiryFunc) *Manager {
	return &Manager{
		sessions: make(map[int64]*entry),
		timeouts: timeouts,
		onExpire: onExpire,
	}
}

func (m *Manager) Timeout(service model.CodeService) time.Duration {
	return m.timeouts[service]
}

// Start opens a session for the user, replacing any existing one. The
// old session's timer is stopped before the new record is installed,
// so a stale timer can never fire against the new session.
func (m *Manager) Start(userID int64, service model.CodeService) Session {
	timeout := m.timeouts[service]

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[userID]; ok {
		old.timer.Stop()
	}

	e := &entry{
		sess: Session{
			UserID:    userID,
			Service:   service,
			Code:      newCode(),
			CreatedAt: time.Now(),
		},
	}
	e.timer = time.AfterFunc(timeout, func() {
		m.expire(userID, e, timeout)
	})
	m.sessions[userID] = e

	logging.Logg.Debug("Session started",
		"user_id", userID, "service", service, "timeout", timeout)
	return e.sess
}

// Get looks the session up without side effects.
func (m *Manager) Get(userID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return e.sess, true
}

// Clear removes the user's session and cancels its timer. Clearing an
// absent session is a no-op, so racing a timer that already fired is
// safe.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[userID]; ok {
		e.timer.Stop()
		delete(m.sessions, userID)
	}
}

// expire runs on the timer goroutine. The entry identity check makes a
// timer that lost the race against Clear or a superseding Start a
// no-op: only the exact session the timer was armed for is removed.
func (m *Manager) expire(userID int64, e *entry, timeout time.Duration) {
	m.mu.Lock()
	current, ok := m.sessions[userID]
	if !ok || current != e {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, userID)
	m.mu.Unlock()

	logging.Logg.Info("Session expired", "user_id", userID, "timeout", timeout)
	if m.onExpire != nil {
		m.onExpire(userID, timeout)
	}
}

func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
