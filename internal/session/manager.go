package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"serverrewards/internal/metrics"
	"serverrewards/internal/model"
	"serverrewards/internal/store"
	"serverrewards/pkg/apierror"
)

// Manager owns every session and the roster of connected players.
type Manager struct {
	store *store.Store

	mu       sync.Mutex
	sessions map[uint64]*Session
	online   map[uint64]model.Player
}

// NewManager creates a manager over st.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store:    st,
		sessions: make(map[uint64]*Session),
		online:   make(map[uint64]model.Player),
	}
}

// Connect records a player as online, or refreshes their details.
func (m *Manager) Connect(p model.Player) {
	m.mu.Lock()
	_, known := m.online[p.ID]
	m.online[p.ID] = p
	m.mu.Unlock()

	if !known {
		log.Printf("[Session] %s (%d) connected", p.Name, p.ID)
	}
}

// Disconnect drops the player's session and marks them offline.
func (m *Manager) Disconnect(user uint64) {
	m.mu.Lock()
	delete(m.online, user)
	delete(m.sessions, user)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	log.Printf("[Session] %d disconnected", user)
}

// Player returns a connected player.
func (m *Manager) Player(user uint64) (model.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.online[user]
	return p, ok
}

// Online lists connected players by name.
func (m *Manager) Online() []model.Player {
	m.mu.Lock()
	out := make([]model.Player, 0, len(m.online))
	for _, p := range m.online {
		out = append(out, p)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Session returns the user's session, creating it on first use.
func (m *Manager) Session(user uint64) *Session {
	m.mu.Lock()
	s, ok := m.sessions[user]
	if !ok {
		s = newSession(user)
		m.sessions[user] = s
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		metrics.SetActiveSessions(n)
	}
	return s
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// remove drops s if it is still the user's session.
func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	if m.sessions[s.userID] == s {
		delete(m.sessions, s.userID)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.SetActiveSessions(n)
}

// ErrUnknownVerb is returned for commands no handler accepts.
var ErrUnknownVerb = errors.New("unknown command")

// Handle runs one command for actor and returns the resulting screen.
// Domain failures are reported as an error toast in the model; only an
// unknown verb is returned as an error.
func (m *Manager) Handle(ctx context.Context, actor model.Player, cmd Command) (RenderModel, error) {
	verb := strings.ToLower(strings.TrimSpace(cmd.Verb))
	h, ok := verbs[verb]
	if !ok {
		return RenderModel{}, fmt.Errorf("%w: %q", ErrUnknownVerb, cmd.Verb)
	}

	m.Connect(actor)
	s := m.Session(actor.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &call{ctx: ctx, m: m, s: s, actor: actor, args: Args(cmd.Args)}
	err := c.authorize(h)
	if err == nil {
		err = h.fn(c)
	}
	if err != nil {
		c.fail(err)
	}
	return c.render(), nil
}

// call is the context of one command.
type call struct {
	ctx   context.Context
	m     *Manager
	s     *Session
	actor model.Player
	args  Args
}

func (c *call) authorize(h verb) error {
	if h.admin && !c.actor.Admin {
		return apierror.Forbidden("You do not have permission to do that")
	}
	if h.adminMode && !c.s.adminMode {
		return apierror.Forbidden("Enable admin mode first")
	}
	return nil
}

// fail raises an error toast for err.
func (c *call) fail(err error) {
	msg := err.Error()
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	c.s.notify(ToastError, "Error", msg, apierror.CodeOf(err))
}

func (c *call) info(title, format string, args ...interface{}) {
	c.s.notify(ToastInfo, title, fmt.Sprintf(format, args...), "")
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
