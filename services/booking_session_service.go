package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"

	"hotel-booking/models"
)

var ErrSessionNotFound = errors.New("booking session not found")

type RoomFetcher interface {
	FetchRooms(ctx context.Context, checkIn, checkOut time.Time) ([]models.MappedRoom, error)
}

type PaymentInitiator interface {
	GenerateTxRef() string
	Initiate(ctx context.Context, intent models.PaymentIntent, secure bool) (CheckoutConfig, error)
}

// bookingSession owns one Flow. Every access holds mu.
type bookingSession struct {
	mu    sync.Mutex
	id    string
	flow  *Flow
	txRef string
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID           string                  `json:"id"`
	Step         int                     `json:"step"`
	StepName     string                  `json:"stepName"`
	Selection    models.BookingSelection `json:"selection"`
	Rooms        []models.MappedRoom     `json:"rooms"`
	RoomsLoading bool                    `json:"roomsLoading"`
	RoomsError   string                  `json:"roomsError,omitempty"`
	Summary      *models.BookingSummary  `json:"summary,omitempty"`
	TxRef        string                  `json:"txRef,omitempty"`
}

type SubmitResult struct {
	Checkout CheckoutConfig        `json:"checkout"`
	Draft    models.DraftPayload   `json:"draft"`
	Summary  models.BookingSummary `json:"summary"`
}

// BookingSessionService keeps wizard sessions in a TTL cache. Date changes
// start a background room fetch; only the newest fetch of a session is
// applied.
type BookingSessionService struct {
	cache        *ccache.Cache[*bookingSession]
	ttl          time.Duration
	rooms        RoomFetcher
	payments     PaymentInitiator
	drafts       DraftStore
	rules        PricingRules
	fetchTimeout time.Duration
	now          func() time.Time
	fetches      sync.WaitGroup
}

func NewBookingSessionService(rooms RoomFetcher, payments PaymentInitiator, drafts DraftStore, rules PricingRules, ttl time.Duration) *BookingSessionService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &BookingSessionService{
		cache:        ccache.New(ccache.Configure[*bookingSession]().MaxSize(10000).ItemsToPrune(100)),
		ttl:          ttl,
		rooms:        rooms,
		payments:     payments,
		drafts:       drafts,
		rules:        rules,
		fetchTimeout: 90 * time.Second,
		now:          time.Now,
	}
}

// Stop releases the cache's background worker.
func (s *BookingSessionService) Stop() {
	s.cache.Stop()
}

// WaitForFetches blocks until every started room fetch has finished.
func (s *BookingSessionService) WaitForFetches() {
	s.fetches.Wait()
}

func (s *BookingSessionService) lookup(id string) (*bookingSession, error) {
	item := s.cache.Get(id)
	if item == nil || item.Expired() {
		return nil, ErrSessionNotFound
	}
	item.Extend(s.ttl)
	return item.Value(), nil
}

func (s *BookingSessionService) view(sess *bookingSession) SessionView {
	rooms, loading, err := sess.flow.Rooms()
	v := SessionView{
		ID:           sess.id,
		Step:         int(sess.flow.Step()),
		StepName:     sess.flow.Step().String(),
		Selection:    sess.flow.Selection(),
		Rooms:        append([]models.MappedRoom{}, rooms...),
		RoomsLoading: loading,
		TxRef:        sess.txRef,
	}
	if err != nil {
		v.RoomsError = err.Error()
	}
	if summary, ok := sess.flow.Summary(); ok {
		v.Summary = &summary
	}
	return v
}

// Create opens a session on the dates step and starts loading rooms for
// the default one night stay.
func (s *BookingSessionService) Create() SessionView {
	sess := &bookingSession{id: uuid.NewString(), flow: NewFlow(s.rules, s.now())}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	gen := sess.flow.datesChanged()
	sel := sess.flow.Selection()
	s.cache.Set(sess.id, sess, s.ttl)
	s.startFetch(sess, gen, sel.CheckIn, sel.CheckOut)
	return s.view(sess)
}

func (s *BookingSessionService) Get(id string) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Delete discards a session, for example when the booking modal is closed.
func (s *BookingSessionService) Delete(id string) error {
	if !s.cache.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Complete clears a session once its booking is confirmed.
func (s *BookingSessionService) Complete(id string) {
	if s.cache.Delete(id) {
		log.Printf("✅ booking session %s completed", id)
	}
}

func (s *BookingSessionService) update(id string, fn func(f *Flow) error) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess.flow); err != nil {
		return SessionView{}, err
	}
	return s.view(sess), nil
}

// changeDates runs a date mutation and fetches rooms for the new range.
func (s *BookingSessionService) changeDates(id string, fn func(f *Flow) (uint64, error)) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	gen, err := fn(sess.flow)
	if err != nil {
		return SessionView{}, err
	}
	sel := sess.flow.Selection()
	s.startFetch(sess, gen, sel.CheckIn, sel.CheckOut)
	return s.view(sess), nil
}

// startFetch loads rooms in the background. The caller holds sess.mu.
func (s *BookingSessionService) startFetch(sess *bookingSession, gen uint64, checkIn, checkOut time.Time) {
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()

		rooms, err := s.rooms.FetchRooms(ctx, checkIn, checkOut)
		if err != nil {
			log.Printf("⚠️  session %s: room fetch %d failed: %v", sess.id, gen, err)
		}

		sess.mu.Lock()
		applied := sess.flow.ApplyRooms(gen, rooms, err)
		sess.mu.Unlock()
		if !applied {
			log.Printf("➡️  session %s: discarding stale rooms for %s..%s", sess.id,
				checkIn.Format(ezeeDateLayout), checkOut.Format(ezeeDateLayout))
		}
	}()
}

func (s *BookingSessionService) SetCheckIn(id string, d time.Time) (SessionView, error) {
	return s.changeDates(id, func(f *Flow) (uint64, error) { return f.SetCheckIn(d) })
}

func (s *BookingSessionService) SetCheckOut(id string, d time.Time) (SessionView, error) {
	return s.changeDates(id, func(f *Flow) (uint64, error) { return f.SetCheckOut(d) })
}

func (s *BookingSessionService) SetDates(id string, checkIn, checkOut time.Time) (SessionView, error) {
	return s.changeDates(id, func(f *Flow) (uint64, error) { return f.SetDates(checkIn, checkOut) })
}

func (s *BookingSessionService) SetGuests(id string, adults, children int) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.SetGuests(adults, children) })
}

func (s *BookingSessionService) SelectRoom(id, roomID, ratePlanID string) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.SelectRoom(roomID, ratePlanID) })
}

func (s *BookingSessionService) SetServices(id string, services []models.SelectedService) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.SetServices(services) })
}

func (s *BookingSessionService) SetGuestInfo(id string, g models.GuestInfo) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.SetGuestInfo(g) })
}

func (s *BookingSessionService) SetMemberDiscount(id string, percent float64) (SessionView, error) {
	return s.update(id, func(f *Flow) error {
		f.SetMemberDiscount(percent)
		return nil
	})
}

func (s *BookingSessionService) Next(id string) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.Next() })
}

func (s *BookingSessionService) Back(id string) (SessionView, error) {
	return s.update(id, func(f *Flow) error { return f.Back() })
}

// Submit validates the payment step, stores the booking draft under a fresh
// transaction reference and returns the checkout configuration.
func (s *BookingSessionService) Submit(ctx context.Context, id string, secure bool) (SubmitResult, error) {
	if !secure {
		return SubmitResult{}, ErrInsecureTransport
	}
	sess, err := s.lookup(id)
	if err != nil {
		return SubmitResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.flow.ValidateForSubmit(); err != nil {
		return SubmitResult{}, err
	}
	summary, _ := sess.flow.Summary()
	draft := sess.flow.Draft()
	payload, err := encodeDraft(draft)
	if err != nil {
		return SubmitResult{}, err
	}

	var txRef string
	for attempt := 0; attempt < 3; attempt++ {
		txRef = s.payments.GenerateTxRef()
		err = s.drafts.Create(ctx, &models.BookingDraft{
			TxRef:     txRef,
			SessionID: sess.id,
			Amount:    summary.Total,
			Currency:  summary.Currency,
			Status:    models.DraftPendingPayment,
			Payload:   payload,
		})
		if !errors.Is(err, ErrDuplicateTxRef) {
			break
		}
	}
	if err != nil {
		return SubmitResult{}, fmt.Errorf("store booking draft: %w", err)
	}

	guest := draft.GuestInfo
	checkout, err := s.payments.Initiate(ctx, models.PaymentIntent{
		TxRef:    txRef,
		Amount:   summary.Total,
		Currency: summary.Currency,
		Customer: models.PaymentCustomer{Email: guest.Email, PhoneNumber: guest.Phone, Name: guest.FullName},
	}, secure)
	if err != nil {
		if derr := s.drafts.Delete(ctx, txRef); derr != nil {
			log.Printf("⚠️  drop draft %s after failed initiation: %v", txRef, derr)
		}
		return SubmitResult{}, err
	}

	sess.txRef = txRef
	log.Printf("➡️  session %s: payment initiated %s for %d %s", sess.id, txRef, summary.Total, summary.Currency)
	return SubmitResult{Checkout: checkout, Draft: draft, Summary: summary}, nil
}
