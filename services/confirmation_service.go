package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"hotel-booking/models"
	"hotel-booking/utils"
)

var ErrMissingConfirmationParams = errors.New("tx_ref and transaction_id are required")

const (
	OutcomeConfirmed     = "confirmed"
	OutcomePaymentFailed = "payment_failed"
	OutcomePendingManual = "pending_manual_confirmation"
	OutcomeInProgress    = "confirmation_in_progress"
)

const (
	msgPaymentNotConfirmed = "Payment not confirmed. Please contact support with your booking reference."
	msgPendingManual       = "Payment succeeded, booking pending manual confirmation. Our team will contact you shortly."
	msgInProgress          = "Your booking is being confirmed. Please check back shortly."
)

type ReservationCreator interface {
	CreateReservation(ctx context.Context, r Reservation) (string, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, transactionID string) VerificationResult
}

type ConfirmationResult struct {
	Outcome       string               `json:"outcome"`
	TxRef         string               `json:"txRef"`
	TransactionID string               `json:"transactionId"`
	Message       string               `json:"message"`
	Booking       *models.DraftPayload `json:"booking,omitempty"`
}

// ConfirmationService turns a payment redirect into a reservation. A failed
// payment keeps the draft for support; a paid booking the PMS rejected is
// kept as pending manual confirmation; a confirmed one is deleted.
type ConfirmationService struct {
	verifier     PaymentVerifier
	reservations ReservationCreator
	drafts       DraftStore
	events       EventPublisher

	// OnConfirmed runs after a booking is confirmed, with the session that
	// created it.
	OnConfirmed func(sessionID string)

	// Notify mails the guest about a confirmed or pending booking. It runs
	// in its own goroutine.
	Notify func(email utils.BookingEmail) error
}

func NewConfirmationService(verifier PaymentVerifier, reservations ReservationCreator, drafts DraftStore, events EventPublisher) *ConfirmationService {
	return &ConfirmationService{verifier: verifier, reservations: reservations, drafts: drafts, events: events}
}

func (s *ConfirmationService) publish(ctx context.Context, action string, draft *models.BookingDraft, reason string) {
	meta := map[string]string{"sessionId": draft.SessionID}
	if reason != "" {
		meta["reason"] = reason
	}
	if err := s.events.Publish(ctx, NewBookingEvent(action, draft.TxRef, meta, json.RawMessage(draft.Payload))); err != nil {
		log.Printf("⚠️  publish %s event for %s: %v", action, draft.TxRef, err)
	}
}

func (s *ConfirmationService) notify(draft *models.BookingDraft, p models.DraftPayload, pending bool) {
	if s.Notify == nil {
		return
	}
	email := bookingEmail(draft, p, pending)
	go func() {
		if err := s.Notify(email); err != nil {
			log.Printf("⚠️  booking email for %s: %v", email.TxRef, err)
		}
	}()
}

func (s *ConfirmationService) fail(ctx context.Context, draft *models.BookingDraft, transactionID, reason string) ConfirmationResult {
	log.Printf("❌ payment not confirmed for %s (transaction %s): %s", draft.TxRef, transactionID, reason)
	if err := s.drafts.UpdateStatus(ctx, draft.TxRef, models.DraftPaymentFailed, transactionID, reason); err != nil {
		log.Printf("⚠️  mark draft %s failed: %v", draft.TxRef, err)
	}
	s.publish(ctx, EventPaymentFailed, draft, reason)
	return ConfirmationResult{
		Outcome:       OutcomePaymentFailed,
		TxRef:         draft.TxRef,
		TransactionID: transactionID,
		Message:       msgPaymentNotConfirmed,
	}
}

// Confirm handles the redirect back from the checkout. redirectStatus is the
// status query parameter the gateway appended; it is advisory only, the
// server-side verification decides.
func (s *ConfirmationService) Confirm(ctx context.Context, txRef, transactionID, redirectStatus string) (ConfirmationResult, error) {
	txRef = strings.TrimSpace(txRef)
	transactionID = strings.TrimSpace(transactionID)
	if txRef == "" || transactionID == "" {
		return ConfirmationResult{}, ErrMissingConfirmationParams
	}

	draft, err := s.drafts.FindByTxRef(ctx, txRef)
	if err != nil {
		return ConfirmationResult{}, err
	}
	var payload models.DraftPayload
	if err := json.Unmarshal(draft.Payload, &payload); err != nil {
		return ConfirmationResult{}, fmt.Errorf("decode draft %s: %w", txRef, err)
	}

	if draft.Status == models.DraftPendingManualConfirmation {
		return settledResult(draft, payload), nil
	}

	// Only one caller may act on a charge; the rest report where it stands.
	if err := s.drafts.Claim(ctx, txRef, models.DraftConfirming, models.DraftPendingPayment, models.DraftPaymentFailed); err != nil {
		if errors.Is(err, ErrDraftClaimed) || errors.Is(err, ErrDraftNotFound) {
			log.Printf("⚠️  booking %s is already being confirmed", txRef)
			return s.currentOutcome(ctx, txRef, payload), nil
		}
		return ConfirmationResult{}, err
	}

	switch strings.ToLower(strings.TrimSpace(redirectStatus)) {
	case "", PaymentSuccessful, "completed":
	default:
		return s.fail(ctx, draft, transactionID, fmt.Sprintf("checkout reported %q", redirectStatus)), nil
	}

	result := s.verifier.Verify(ctx, transactionID)
	if !result.Successful() {
		return s.fail(ctx, draft, transactionID, result.Reason), nil
	}
	if reason := mismatch(draft, result); reason != "" {
		return s.fail(ctx, draft, transactionID, reason), nil
	}

	reservation, err := reservationFromDraft(txRef, payload)
	if err == nil {
		_, err = s.reservations.CreateReservation(ctx, reservation)
	}
	if err != nil {
		reason := err.Error()
		log.Printf("❌ paid booking %s not reserved in PMS: %v", txRef, err)
		if uerr := s.drafts.UpdateStatus(ctx, txRef, models.DraftPendingManualConfirmation, transactionID, truncate(reason, 255)); uerr != nil {
			log.Printf("⚠️  mark draft %s pending: %v", txRef, uerr)
		}
		s.publish(ctx, EventBookingPendingManual, draft, reason)
		s.notify(draft, payload, true)
		return ConfirmationResult{
			Outcome:       OutcomePendingManual,
			TxRef:         txRef,
			TransactionID: transactionID,
			Message:       msgPendingManual,
			Booking:       &payload,
		}, nil
	}

	if err := s.drafts.Delete(ctx, txRef); err != nil {
		log.Printf("⚠️  delete confirmed draft %s: %v", txRef, err)
	}
	s.publish(ctx, EventBookingConfirmed, draft, "")
	s.notify(draft, payload, false)
	if s.OnConfirmed != nil && draft.SessionID != "" {
		s.OnConfirmed(draft.SessionID)
	}
	log.Printf("✅ booking %s confirmed (transaction %s)", txRef, transactionID)
	return ConfirmationResult{
		Outcome:       OutcomeConfirmed,
		TxRef:         txRef,
		TransactionID: transactionID,
		Message:       "Booking confirmed",
		Booking:       &payload,
	}, nil
}

// currentOutcome reports a draft another confirmation has claimed. A deleted
// draft was confirmed.
func (s *ConfirmationService) currentOutcome(ctx context.Context, txRef string, payload models.DraftPayload) ConfirmationResult {
	draft, err := s.drafts.FindByTxRef(ctx, txRef)
	if errors.Is(err, ErrDraftNotFound) {
		return ConfirmationResult{
			Outcome: OutcomeConfirmed,
			TxRef:   txRef,
			Message: "Booking confirmed",
			Booking: &payload,
		}
	}
	if err != nil {
		log.Printf("⚠️  reload draft %s: %v", txRef, err)
		return ConfirmationResult{Outcome: OutcomeInProgress, TxRef: txRef, Message: msgInProgress, Booking: &payload}
	}
	return settledResult(draft, payload)
}

func settledResult(draft *models.BookingDraft, payload models.DraftPayload) ConfirmationResult {
	res := ConfirmationResult{TxRef: draft.TxRef, TransactionID: draft.TransactionID, Booking: &payload}
	switch draft.Status {
	case models.DraftPendingManualConfirmation:
		res.Outcome, res.Message = OutcomePendingManual, msgPendingManual
	case models.DraftPaymentFailed:
		res.Outcome, res.Message, res.Booking = OutcomePaymentFailed, msgPaymentNotConfirmed, nil
	default:
		res.Outcome, res.Message = OutcomeInProgress, msgInProgress
	}
	return res
}

// mismatch compares what the gateway charged with what the draft asked for.
func mismatch(draft *models.BookingDraft, result VerificationResult) string {
	if result.TxRef != "" && result.TxRef != draft.TxRef {
		return fmt.Sprintf("gateway tx_ref %q does not match", result.TxRef)
	}
	if result.Currency != "" && draft.Currency != "" && !strings.EqualFold(result.Currency, draft.Currency) {
		return fmt.Sprintf("currency %s, expected %s", result.Currency, draft.Currency)
	}
	if int64(math.Round(result.Amount)) < draft.Amount {
		return fmt.Sprintf("amount %.2f below expected %d", result.Amount, draft.Amount)
	}
	return ""
}

func reservationFromDraft(txRef string, p models.DraftPayload) (Reservation, error) {
	checkIn, err := time.Parse(ezeeDateLayout, p.CheckIn)
	if err != nil {
		return Reservation{}, fmt.Errorf("draft check-in: %w", err)
	}
	checkOut, err := time.Parse(ezeeDateLayout, p.CheckOut)
	if err != nil {
		return Reservation{}, fmt.Errorf("draft check-out: %w", err)
	}
	return Reservation{
		BookingID:        txRef,
		VendorRoomTypeID: p.Room.VendorRoomTypeID,
		RatePlanID:       p.Room.RatePlanID,
		RoomName:         p.Room.Name,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Adults:           p.Adults,
		Children:         p.Children,
		Guest:            p.GuestInfo,
		Amount:           p.Amount,
		Comment:          servicesComment(p.Services),
	}, nil
}

// servicesComment flattens the extras into the reservation comment so the
// front desk sees them in the PMS.
func servicesComment(services []models.SelectedService) string {
	parts := make([]string, 0, len(services))
	for _, svc := range services {
		d := svc.Details
		switch svc.ID {
		case models.ServiceAirportTransfer:
			parts = append(parts, fmt.Sprintf("Airport transfer (%s): flight %s at %s", d.TransferType, d.FlightNumber, d.Time))
		case models.ServiceFridgeFill:
			parts = append(parts, "Fridge fill: "+strings.Join(d.Items, ", "))
		case models.ServiceSpecialRequests:
			parts = append(parts, "Special requests")
		}
		if r := strings.TrimSpace(d.Requests); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, "; ")
}

func bookingEmail(draft *models.BookingDraft, p models.DraftPayload, pending bool) utils.BookingEmail {
	extras := make([]string, 0, len(p.Services))
	for _, svc := range p.Services {
		extras = append(extras, strings.ReplaceAll(svc.ID, "-", " "))
	}
	currency := draft.Currency
	if currency == "" {
		currency = "KES"
	}
	return utils.BookingEmail{
		To:        p.GuestInfo.Email,
		GuestName: p.GuestInfo.FullName,
		TxRef:     draft.TxRef,
		RoomName:  p.Room.Name,
		CheckIn:   p.CheckIn,
		CheckOut:  p.CheckOut,
		Adults:    p.Adults,
		Children:  p.Children,
		Total:     utils.FormatMoney(float64(p.Amount), currency, "en-KE"),
		Extras:    extras,
		Pending:   pending,
	}
}
