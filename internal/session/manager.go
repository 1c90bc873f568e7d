package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/logging"
)

// Options configures a Manager.
type Options struct {
	Timeout      time.Duration
	CookieName   string
	SecureCookie bool
	Clock        clock.Clock
	Logger       *logging.Logger
}

// Manager is the load/save boundary for sessions.
type Manager struct {
	store  Store
	opts   Options
	clock  clock.Clock
	logger *logging.Logger
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = brand.SessionCookie
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("session")
	}
	return &Manager{
		store:  store,
		opts:   opts,
		clock:  clock.OrDefault(opts.Clock),
		logger: logger,
	}
}

// Timeout returns the inactivity timeout.
func (m *Manager) Timeout() time.Duration {
	return m.opts.Timeout
}

// Begin loads the session named by the request cookie, or starts a new one,
// and records activity. An expired session comes back cleared.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request) (*Session, error) {
	var sess *Session
	if ck, err := r.Cookie(m.opts.CookieName); err == nil && ck.Value != "" {
		loaded, err := m.store.Load(r.Context(), ck.Value)
		switch {
		case err == nil:
			sess = loaded
		case errors.Is(err, ErrNotFound):
		default:
			return nil, err
		}
	}

	if sess == nil {
		sess = New(uuid.NewString())
		m.setCookie(w, sess.ID)
	}

	if sess.Touch(m.clock.Now(), m.opts.Timeout) {
		m.logger.Debug("session expired", "id", shortID(sess.ID))
	}
	if sess.CSRFToken == "" {
		sess.CSRFToken = uuid.NewString()
	}
	return sess, nil
}

// Commit saves the session.
func (m *Manager) Commit(ctx context.Context, sess *Session) error {
	return m.store.Save(ctx, sess)
}

// Reset discards sess and returns a fresh session under a new id.
func (m *Manager) Reset(ctx context.Context, w http.ResponseWriter, sess *Session) (*Session, error) {
	if sess != nil {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			return nil, err
		}
	}
	fresh := New(uuid.NewString())
	fresh.LastActivity = m.clock.Now()
	fresh.CSRFToken = uuid.NewString()
	m.setCookie(w, fresh.ID)
	return fresh, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
