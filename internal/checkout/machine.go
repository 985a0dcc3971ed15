// Package checkout drives a booking attempt from review to a confirmed booking.
//
// Steps advance through an explicit transition table keyed by (step, action).
// Each key lists candidate edges tried in order; the first edge whose guard
// passes is taken. When no edge passes the action is refused without error.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	apperrors "meridian/internal/errors"
	"meridian/internal/models"
	"meridian/internal/payment"
)

type Step string

const (
	StepReview    Step = "review"
	StepGuest     Step = "guest"
	StepUpsell    Step = "upsell"
	StepExcursion Step = "excursion"
	StepPayment   Step = "payment"
	StepSuccess   Step = "success"
)

type Action string

const (
	ActionNext    Action = "next"
	ActionBack    Action = "back"
	ActionSettled Action = "settled"
)

type Tracker interface {
	Track(ctx context.Context, name string, payload map[string]any) models.AnalyticsEvent
}

type Ledger interface {
	Append(ctx context.Context, booking models.Booking) error
}

type emission struct {
	name    string
	payload map[string]any
}

type edge struct {
	to    Step
	guard func(m *Machine) bool
	emit  func(m *Machine) *emission
}

type transitionKey struct {
	from   Step
	action Action
}

var transitions = map[transitionKey][]edge{
	{StepReview, ActionNext}: {
		{to: StepGuest, emit: progress(models.EventCheckoutStart, 1, nil)},
	},
	{StepGuest, ActionNext}: {
		{to: StepUpsell, guard: guestComplete, emit: progress(models.EventCheckoutProgress, 2, nil)},
	},
	{StepUpsell, ActionNext}: {
		{to: StepExcursion, guard: hasExcursions, emit: progress(models.EventCheckoutProgress, 3, packageField)},
		{to: StepPayment, emit: progress(models.EventCheckoutProgress, 3, packageField)},
	},
	{StepExcursion, ActionNext}: {
		{to: StepPayment, emit: progress(models.EventCheckoutProgress, 4, excursionCountField)},
	},
	{StepPayment, ActionSettled}: {
		{to: StepSuccess},
	},

	{StepGuest, ActionBack}:     {{to: StepReview}},
	{StepUpsell, ActionBack}:    {{to: StepGuest}},
	{StepExcursion, ActionBack}: {{to: StepUpsell}},
	{StepPayment, ActionBack}: {
		{to: StepExcursion, guard: hasExcursions},
		{to: StepUpsell},
	},
}

func guestComplete(m *Machine) bool {
	return m.guest.FirstName != "" && m.guest.Email != ""
}

func hasExcursions(m *Machine) bool {
	return len(m.available) > 0
}

func packageField(m *Machine, p map[string]any) {
	p["package"] = m.pkg
}

func excursionCountField(m *Machine, p map[string]any) {
	p["excursions_count"] = len(m.selected)
}

func progress(name string, step int, extra func(*Machine, map[string]any)) func(*Machine) *emission {
	return func(m *Machine) *emission {
		p := map[string]any{"step": step}
		if extra != nil {
			extra(m, p)
		}
		return &emission{name: name, payload: p}
	}
}

var newReceiptID = func() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

type Params struct {
	Voyage     models.Voyage
	Cabin      models.Cabin
	Excursions []models.Excursion
	Tracker    Tracker
	Ledger     Ledger
	Settler    payment.Settler
}

type Machine struct {
	mu sync.Mutex

	voyage    models.Voyage
	cabin     models.Cabin
	available []models.Excursion

	step     Step
	guest    models.GuestInfo
	pkg      models.PackageTier
	selected []string
	paying   bool
	booking  *models.Booking

	tracker Tracker
	ledger  Ledger
	settler payment.Settler
	now     func() time.Time
}

func New(p Params) *Machine {
	available := p.Excursions
	if available == nil {
		available = []models.Excursion{}
	}
	return &Machine{
		voyage:    p.Voyage,
		cabin:     p.Cabin,
		available: available,
		step:      StepReview,
		pkg:       models.PackageStandard,
		selected:  []string{},
		tracker:   p.Tracker,
		ledger:    p.Ledger,
		settler:   p.Settler,
		now:       time.Now,
	}
}

// Fire applies a navigation action and reports whether the step changed.
// Navigation is frozen while a payment is in flight.
func (m *Machine) Fire(ctx context.Context, action Action) bool {
	m.mu.Lock()
	if m.paying {
		m.mu.Unlock()
		return false
	}
	from := m.step
	e, ok := m.fire(action)
	m.mu.Unlock()

	if !ok {
		slog.Debug("Checkout transition refused", "step", from, "action", action)
		return false
	}
	if e != nil {
		m.tracker.Track(ctx, e.name, e.payload)
	}
	return true
}

// fire must be called with m.mu held
func (m *Machine) fire(action Action) (*emission, bool) {
	for _, candidate := range transitions[transitionKey{m.step, action}] {
		if candidate.guard != nil && !candidate.guard(m) {
			continue
		}
		var e *emission
		if candidate.emit != nil {
			e = candidate.emit(m)
		}
		m.step = candidate.to
		return e, true
	}
	return nil, false
}

func (m *Machine) editable() bool {
	return !m.paying && m.step != StepSuccess
}

// SetGuest replaces the guest details. It never advances the step.
func (m *Machine) SetGuest(info models.GuestInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.editable() {
		return false
	}
	m.guest = info
	return true
}

func (m *Machine) SelectPackage(tier models.PackageTier) (bool, error) {
	if !tier.Valid() {
		return false, fmt.Errorf("%q: %w", tier, apperrors.ErrInvalidPackage)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.editable() {
		return false, nil
	}
	m.pkg = tier
	return true, nil
}

// ToggleExcursion adds or removes an excursion. Ids outside the voyage's
// available excursions are ignored.
func (m *Machine) ToggleExcursion(excursionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.editable() || !m.offers(excursionID) {
		return false
	}

	for i, id := range m.selected {
		if id == excursionID {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			return true
		}
	}
	m.selected = append(m.selected, excursionID)
	return true
}

func (m *Machine) offers(excursionID string) bool {
	for _, e := range m.available {
		if e.ID == excursionID {
			return true
		}
	}
	return false
}

type PaymentResult struct {
	Booking models.Booking
	Err     error
}

// StartPayment marks a payment in flight and settles it in the background.
// A second call before it settles returns ErrPaymentInFlight and changes
// nothing. If ctx ends before settlement the payment is abandoned and no
// booking is written.
func (m *Machine) StartPayment(ctx context.Context) (<-chan PaymentResult, error) {
	total, err := m.beginPayment(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan PaymentResult, 1)
	go func() {
		defer close(done)
		booking, err := m.settle(ctx, total)
		done <- PaymentResult{Booking: booking, Err: err}
	}()
	return done, nil
}

// Pay is StartPayment waiting for the outcome
func (m *Machine) Pay(ctx context.Context) (models.Booking, error) {
	done, err := m.StartPayment(ctx)
	if err != nil {
		return models.Booking{}, err
	}
	res := <-done
	return res.Booking, res.Err
}

func (m *Machine) beginPayment(ctx context.Context) (int64, error) {
	m.mu.Lock()
	switch {
	case m.paying:
		m.mu.Unlock()
		return 0, apperrors.ErrPaymentInFlight
	case m.step == StepSuccess:
		m.mu.Unlock()
		return 0, apperrors.ErrCheckoutClosed
	case m.step != StepPayment:
		step := m.step
		m.mu.Unlock()
		return 0, fmt.Errorf("step %s: %w", step, apperrors.ErrPaymentNotReady)
	}
	m.paying = true
	total := m.breakdown().Total
	m.mu.Unlock()

	m.tracker.Track(ctx, models.EventCheckoutProgress, map[string]any{"step": 5})
	return total, nil
}

func (m *Machine) settle(ctx context.Context, total int64) (models.Booking, error) {
	if err := m.settler.Settle(ctx, total); err != nil {
		m.mu.Lock()
		m.paying = false
		m.mu.Unlock()
		slog.Warn("Payment abandoned", "voyage_id", m.voyage.ID, "error", err)
		return models.Booking{}, fmt.Errorf("payment abandoned: %w", err)
	}

	m.mu.Lock()
	booking := models.Booking{
		ID:    newReceiptID(),
		Date:  m.now().UTC(),
		Guest: m.guest,
		Voyage: models.VoyageSummary{
			Title:  m.voyage.Title,
			ID:     m.voyage.ID,
			Region: m.voyage.Location,
		},
		Package:    m.pkg,
		Excursions: len(m.selected),
		TotalPaid:  total,
		Status:     models.BookingStatusConfirmed,
	}
	m.mu.Unlock()

	if err := m.ledger.Append(ctx, booking); err != nil {
		slog.Error("Failed to record booking", "booking_id", booking.ID, "error", err)
	}

	m.tracker.Track(ctx, models.EventPurchase, map[string]any{
		"value":     booking.TotalPaid,
		"currency":  models.Currency,
		"voyage_id": booking.Voyage.ID,
		"package":   booking.Package,
	})

	m.mu.Lock()
	m.fire(ActionSettled)
	m.paying = false
	m.booking = &booking
	m.mu.Unlock()

	slog.Info("Booking confirmed", "booking_id", booking.ID, "voyage_id", booking.Voyage.ID, "total", booking.TotalPaid)
	return booking, nil
}

// breakdown must be called with m.mu held
func (m *Machine) breakdown() Breakdown {
	return Price(m.cabin, m.pkg, m.voyage.Nights, m.selected, m.available)
}

// Path is the navigable step sequence of this checkout
func (m *Machine) Path() []Step {
	if hasExcursions(m) {
		return []Step{StepReview, StepGuest, StepUpsell, StepExcursion, StepPayment, StepSuccess}
	}
	return []Step{StepReview, StepGuest, StepUpsell, StepPayment, StepSuccess}
}

type Snapshot struct {
	Step       Step               `json:"step"`
	Path       []Step             `json:"path"`
	Voyage     models.Voyage      `json:"voyage"`
	Cabin      models.Cabin       `json:"cabin"`
	Guest      models.GuestInfo   `json:"guest"`
	Package    models.PackageTier `json:"package"`
	Available  []models.Excursion `json:"available_excursions"`
	Selected   []string           `json:"selected_excursions"`
	Price      Breakdown          `json:"price"`
	CanAdvance bool               `json:"can_advance"`
	Paying     bool               `json:"paying"`
	Booking    *models.Booking    `json:"booking,omitempty"`
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	selected := make([]string, len(m.selected))
	copy(selected, m.selected)

	canAdvance := false
	if !m.paying {
		for _, candidate := range transitions[transitionKey{m.step, ActionNext}] {
			if candidate.guard == nil || candidate.guard(m) {
				canAdvance = true
				break
			}
		}
	}

	return Snapshot{
		Step:       m.step,
		Path:       m.Path(),
		Voyage:     m.voyage,
		Cabin:      m.cabin,
		Guest:      m.guest,
		Package:    m.pkg,
		Available:  m.available,
		Selected:   selected,
		Price:      m.breakdown(),
		CanAdvance: canAdvance,
		Paying:     m.paying,
		Booking:    m.booking,
	}
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakdown().Total
}

func (m *Machine) Paying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paying
}
