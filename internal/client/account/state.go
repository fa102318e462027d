package account

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/identitykeeper/internal/models"
)

// StateOverride изменяет вычисленное состояние перед публикацией
type StateOverride func(state *models.SessionState)

// StateHub derives the session state from the repository and publishes it to subscribers.
// It has replay-one semantics: a new subscriber immediately receives the latest published state.
type StateHub struct {
	repo   *Repository
	logger *slog.Logger
	latest *models.SessionState
	subs   map[int]chan models.SessionState

	// renewMu сериализует вычисление и публикацию, чтобы состояния не перемешивались
	renewMu sync.Mutex
	mu      sync.Mutex
	nextID  int
}

// NewStateHub creates a hub and registers it as a change listener of the repository
func NewStateHub(repo *Repository, logger *slog.Logger) *StateHub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &StateHub{
		repo:   repo,
		logger: logger,
		subs:   make(map[int]chan models.SessionState),
	}
	repo.OnChange(func(ctx context.Context) error {
		return h.RenewState(ctx)
	})
	return h
}

// CurrentState computes the session state from storage without publishing it
func (h *StateHub) CurrentState(ctx context.Context) (models.SessionState, error) {
	def, err := h.repo.GetDefaultUser(ctx)
	if err != nil {
		return models.SessionState{}, fmt.Errorf("failed to get default user: %w", err)
	}
	if def == nil {
		return models.SessionState{UserAccountInfo: models.EmptyAccount()}, nil
	}
	return models.SessionState{UserAccountInfo: *def, IsLoggedIn: true}, nil
}

// RenewState recomputes the session state, applies overrides and publishes the result
func (h *StateHub) RenewState(ctx context.Context, overrides ...StateOverride) error {
	h.renewMu.Lock()
	defer h.renewMu.Unlock()

	state, err := h.CurrentState(ctx)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		o(&state)
	}

	h.publish(state)
	h.logger.Debug("session state renewed",
		slog.Bool("logged_in", state.IsLoggedIn),
		slog.String("user", state.UserSelectBy))
	return nil
}

// Latest returns the last published state, false if nothing was published yet
func (h *StateHub) Latest() (models.SessionState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return models.SessionState{}, false
	}
	return cloneState(*h.latest), true
}

// Subscribe returns a channel of state updates and a cancel func.
// Slow subscribers only miss intermediate states, the latest one is always delivered.
func (h *StateHub) Subscribe() (<-chan models.SessionState, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan models.SessionState, 1)
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	if h.latest != nil {
		ch <- cloneState(*h.latest)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (h *StateHub) publish(state models.SessionState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	latest := cloneState(state)
	h.latest = &latest

	for _, ch := range h.subs {
		// буфер на один элемент: выбрасываем устаревшее значение
		select {
		case ch <- cloneState(state):
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- cloneState(state)
	}
}

func cloneState(s models.SessionState) models.SessionState {
	return models.SessionState{
		UserAccountInfo: *s.UserAccountInfo.Clone(),
		IsLoggedIn:      s.IsLoggedIn,
	}
}
