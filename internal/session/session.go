// Package session holds the active booking attempts. A session starts in
// the room phase on its own deck plan and enters checkout once a cabin is
// chosen.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"meridian/internal/catalog"
	"meridian/internal/checkout"
	"meridian/internal/deck"
	apperrors "meridian/internal/errors"
	"meridian/internal/models"
	"meridian/internal/payment"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseRoom     Phase = "room"
	PhaseCheckout Phase = "checkout"
)

type Session struct {
	mu sync.Mutex

	id         string
	voyage     models.Voyage
	plan       *deck.Plan
	phase      Phase
	machine    *checkout.Machine
	createdAt  time.Time
	lastActive time.Time

	// ctx ends when the session is torn down; a pending payment is bound to it
	ctx    context.Context
	cancel context.CancelFunc
}

type View struct {
	ID         string             `json:"id"`
	Voyage     models.Voyage      `json:"voyage"`
	Phase      Phase              `json:"phase"`
	Cabin      *models.Cabin      `json:"cabin,omitempty"`
	Available  int                `json:"available_cabins"`
	Checkout   *checkout.Snapshot `json:"checkout,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	LastActive time.Time          `json:"last_active"`
}

// view must be called with s.mu held
func (s *Session) view() View {
	v := View{
		ID:         s.id,
		Voyage:     s.voyage,
		Phase:      s.phase,
		Available:  s.plan.Available(),
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
	if c, ok := s.plan.Selected(); ok {
		v.Cabin = &c
	}
	if s.machine != nil {
		snap := s.machine.Snapshot()
		v.Checkout = &snap
	}
	return v
}

type Options struct {
	Tracker checkout.Tracker
	Ledger  checkout.Ledger
	Settler payment.Settler
	// DeckSeed seeds deck occupancy; 0 seeds from the clock
	DeckSeed int64
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog *catalog.Provider
	tracker checkout.Tracker
	ledger  checkout.Ledger
	settler payment.Settler

	rngMu sync.Mutex
	rng   *rand.Rand

	now func() time.Time
}

func NewManager(cat *catalog.Provider, opts Options) *Manager {
	seed := opts.DeckSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  cat,
		tracker:  opts.Tracker,
		ledger:   opts.Ledger,
		settler:  opts.Settler,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
}

func (m *Manager) generateDeck() []models.Cabin {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return deck.Generate(m.rng)
}

// Create opens a session for a voyage with a freshly generated deck plan
func (m *Manager) Create(voyageID string) (View, error) {
	voyage, ok := m.catalog.Voyage(voyageID)
	if !ok {
		return View{}, fmt.Errorf("voyage %s: %w", voyageID, apperrors.ErrVoyageNotFound)
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := m.now()
	s := &Session{
		id:         uuid.New().String(),
		voyage:     voyage,
		plan:       deck.NewPlan(m.generateDeck()),
		phase:      PhaseRoom,
		createdAt:  now,
		lastActive: now,
		ctx:        ctx,
		cancel:     cancel,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	slog.Info("Booking session created", "session_id", s.id, "voyage_id", voyage.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrSessionNotFound)
	}
	return s, nil
}

// with runs fn holding the session lock and refreshes its activity time
func (m *Manager) with(id string, fn func(s *Session) error) (View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = m.now()
	if err := fn(s); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (m *Manager) Get(id string) (View, error) {
	return m.with(id, func(*Session) error { return nil })
}

func (m *Manager) Deck(id string) ([]models.Cabin, error) {
	var cabins []models.Cabin
	_, err := m.with(id, func(s *Session) error {
		cabins = s.plan.Cabins()
		return nil
	})
	return cabins, err
}

// SelectCabin chooses the stateroom. It is only allowed in the room phase.
func (m *Manager) SelectCabin(id, cabinID string) (View, error) {
	return m.with(id, func(s *Session) error {
		if s.phase != PhaseRoom {
			return apperrors.ErrCheckoutInProgress
		}
		_, err := s.plan.Select(cabinID)
		return err
	})
}

// StartCheckout moves a session with a chosen cabin into checkout
func (m *Manager) StartCheckout(ctx context.Context, id string) (View, error) {
	return m.with(id, func(s *Session) error {
		if s.phase == PhaseCheckout {
			return apperrors.ErrCheckoutInProgress
		}
		cabin, ok := s.plan.Selected()
		if !ok {
			return apperrors.ErrNoCabinSelected
		}

		s.machine = checkout.New(checkout.Params{
			Voyage:     s.voyage,
			Cabin:      cabin,
			Excursions: m.catalog.AvailableExcursions(s.voyage),
			Tracker:    m.tracker,
			Ledger:     m.ledger,
			Settler:    m.settler,
		})
		s.phase = PhaseCheckout

		m.tracker.Track(ctx, models.EventAddToCart, map[string]any{
			"cabin": cabin.ID,
			"type":  cabin.Type,
			"price": cabin.Price,
		})
		return nil
	})
}

func checkoutOf(s *Session) (*checkout.Machine, error) {
	if s.phase != PhaseCheckout || s.machine == nil {
		return nil, apperrors.ErrCheckoutNotStarted
	}
	return s.machine, nil
}

func (m *Manager) Next(ctx context.Context, id string) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		machine.Fire(ctx, checkout.ActionNext)
		return nil
	})
}

// Back steps the checkout backward. Backing out of review returns the
// session to the room phase with its cabin choice kept.
func (m *Manager) Back(ctx context.Context, id string) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		if machine.Step() == checkout.StepReview && !machine.Paying() {
			s.machine = nil
			s.phase = PhaseRoom
			return nil
		}
		machine.Fire(ctx, checkout.ActionBack)
		return nil
	})
}

func (m *Manager) SetGuest(id string, guest models.GuestInfo) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		machine.SetGuest(guest)
		return nil
	})
}

func (m *Manager) SelectPackage(id string, tier models.PackageTier) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		_, err = machine.SelectPackage(tier)
		return err
	})
}

func (m *Manager) ToggleExcursion(id, excursionID string) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		machine.ToggleExcursion(excursionID)
		return nil
	})
}

// Pay starts settlement and returns at once. The outcome lands in the
// session's checkout snapshot; tearing the session down abandons it.
func (m *Manager) Pay(id string) (View, error) {
	return m.with(id, func(s *Session) error {
		machine, err := checkoutOf(s)
		if err != nil {
			return err
		}
		done, err := machine.StartPayment(s.ctx)
		if err != nil {
			return err
		}
		go m.awaitPayment(s, done)
		return nil
	})
}

func (m *Manager) awaitPayment(s *Session, done <-chan checkout.PaymentResult) {
	res := <-done

	s.mu.Lock()
	s.lastActive = m.now()
	s.mu.Unlock()

	if res.Err != nil {
		slog.Warn("Payment did not complete", "session_id", s.id, "error", res.Err)
		return
	}
	slog.Info("Payment completed", "session_id", s.id, "booking_id", res.Booking.ID)
}

// Close discards a session and abandons any pending payment
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, apperrors.ErrSessionNotFound)
	}
	s.cancel()
	slog.Info("Booking session closed", "session_id", id)
	return nil
}

// Reap discards sessions idle for longer than idle and returns how many
func (m *Manager) Reap(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		s.mu.Lock()
		if s.lastActive.Before(cutoff) {
			stale = append(stale, id)
		}
		s.mu.Unlock()
	}
	m.mu.RUnlock()

	reaped := 0
	for _, id := range stale {
		if err := m.Close(id); err == nil {
			reaped++
		}
	}
	return reaped
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown discards every session
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
	slog.Info("Booking sessions discarded", "count", len(sessions))
}
