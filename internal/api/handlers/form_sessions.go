package handlers

import (
	"fmt"
	"sync"
	"time"

	"patient-intake-service/internal/forms/patients"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	formSessionCookie = "patient_form_session"
	sessionSeenKey    = "seen"
)

// FormSessions keeps one PatientForm per browser session. The session ID,
// its cookie and its expiry are handled by fiber's session store; forms whose
// session expired are dropped when a new session starts.
type FormSessions struct {
	store   *session.Store
	newForm func() *patients.PatientForm

	mu    sync.Mutex
	forms map[string]*patients.PatientForm
}

func NewFormSessions(newForm func() *patients.PatientForm, ttl time.Duration) *FormSessions {
	return &FormSessions{
		store: session.New(session.Config{
			Expiration:     ttl,
			KeyLookup:      "cookie:" + formSessionCookie,
			CookiePath:     "/patients",
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
		newForm: newForm,
		forms:   make(map[string]*patients.PatientForm),
	}
}

// Get returns the caller's form and refreshes the session expiry.
// created is true when the form was built for this request.
func (s *FormSessions) Get(c *fiber.Ctx) (sessionID string, form *patients.PatientForm, created bool, err error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return "", nil, false, fmt.Errorf("load form session: %w", err)
	}
	sessionID = sess.ID()
	sess.Set(sessionSeenKey, time.Now().Unix())
	if err := sess.Save(); err != nil {
		return "", nil, false, fmt.Errorf("save form session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if form, ok := s.forms[sessionID]; ok {
		return sessionID, form, false, nil
	}
	s.sweep()
	form = s.newForm()
	s.forms[sessionID] = form
	return sessionID, form, true, nil
}

// Len returns the number of forms held.
func (s *FormSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// sweep must run with mu held.
func (s *FormSessions) sweep() {
	for id := range s.forms {
		data, err := s.store.Storage.Get(id)
		if err == nil && data == nil {
			delete(s.forms, id)
		}
	}
}
