package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-booking/models"
	"hotel-booking/services"
)

type staticRooms []models.MappedRoom

func (s staticRooms) FetchRooms(ctx context.Context, checkIn, checkOut time.Time) ([]models.MappedRoom, error) {
	return s, nil
}

type stubReservations struct{ calls int }

func (s *stubReservations) CreateReservation(ctx context.Context, r services.Reservation) (string, error) {
	s.calls++
	return "RES-1", nil
}

type bookingHarness struct {
	router       *gin.Engine
	sessions     *services.BookingSessionService
	auth         *services.AuthService
	drafts       *services.MemoryDraftStore
	reservations *stubReservations
}

// newBookingHarness wires the session, payment and confirmation handlers
// against fake gateway endpoints. verified is the amount the gateway reports.
func newBookingHarness(t *testing.T, verified func() (string, int64)) *bookingHarness {
	t.Helper()
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3.js" {
			_, _ = w.Write([]byte("window.FlutterwaveCheckout=function(){};"))
			return
		}
		txRef, amount := verified()
		_, _ = fmt.Fprintf(w, `{"status":"success","data":{"id":77,"tx_ref":%q,"amount":%d,"currency":"KES","status":"successful"}}`, txRef, amount)
	}))
	t.Cleanup(gateway.Close)

	rooms := staticRooms{{
		ID: "studio", VendorRoomTypeID: "1", Name: "Studio", Availability: 3,
		Rates: []models.Rate{{RatePlanID: "BAR", BaseRate: 10000}},
	}}
	payments := services.NewPaymentService(services.PaymentConfig{
		PublicKey: "FLWPUBK_TEST-x",
		SecretKey: "FLWSECK_TEST-x",
		APIURL:    gateway.URL,
		ScriptURL: gateway.URL + "/v3.js",
		Currency:  "KES",
	})
	drafts := services.NewMemoryDraftStore()
	rules := services.PricingRules{ExtraAdultThreshold: 2, ServiceFlatFee: 50, Currency: "KES"}
	sessions := services.NewBookingSessionService(rooms, payments, drafts, rules, time.Minute)
	t.Cleanup(sessions.Stop)

	auth, err := services.NewAuthService("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	reservations := &stubReservations{}
	confirmations := services.NewConfirmationService(payments, reservations, drafts, services.LogPublisher{})
	confirmations.OnConfirmed = sessions.Complete

	sc := NewBookingSessionController(sessions, auth)
	pc := NewPaymentController(payments, confirmations)
	r := gin.New()
	g := r.Group("/api/booking-sessions")
	g.POST("", sc.CreateSession)
	g.GET("/:id", sc.GetSession)
	g.DELETE("/:id", sc.DeleteSession)
	g.PUT("/:id/dates", sc.UpdateDates)
	g.PUT("/:id/guests", sc.UpdateGuests)
	g.PUT("/:id/room", sc.SelectRoom)
	g.PUT("/:id/guest", sc.UpdateGuestInfo)
	g.POST("/:id/member", sc.ApplyMember)
	g.POST("/:id/next", sc.Next)
	g.POST("/:id/back", sc.Back)
	g.POST("/:id/submit", sc.Submit)
	r.POST("/api/bookings/confirm", pc.ConfirmBooking)
	r.GET("/api/payments/checkout.js", pc.CheckoutScript)

	return &bookingHarness{router: r, sessions: sessions, auth: auth, drafts: drafts, reservations: reservations}
}

func (h *bookingHarness) call(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, services.SessionView, map[string]interface{}) {
	t.Helper()
	w := doJSON(t, h.router, method, path, body, headers)
	var view services.SessionView
	var raw map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &view)
		_ = json.Unmarshal(w.Body.Bytes(), &raw)
	}
	return w.Code, view, raw
}

func TestBookingWizardOverHTTP(t *testing.T) {
	var paidRef atomic.Value
	paidRef.Store("")
	h := newBookingHarness(t, func() (string, int64) { return paidRef.Load().(string), 18600 })

	code, view, _ := h.call(t, http.MethodPost, "/api/booking-sessions", nil, nil)
	if code != http.StatusCreated || view.ID == "" {
		t.Fatalf("create: %d %+v", code, view)
	}
	base := "/api/booking-sessions/" + view.ID

	code, _, raw := h.call(t, http.MethodPut, base+"/dates", map[string]string{"checkIn": "01/06/2030"}, nil)
	if code != http.StatusBadRequest || raw["error"] != "validation_failed" {
		t.Fatalf("bad date: %d %v", code, raw)
	}
	code, _, _ = h.call(t, http.MethodPut, base+"/dates", map[string]string{"checkIn": "2030-06-01", "checkOut": "2030-06-03"}, nil)
	if code != http.StatusOK {
		t.Fatalf("dates: %d", code)
	}
	h.sessions.WaitForFetches()

	code, _, raw = h.call(t, http.MethodPut, base+"/room", map[string]string{"roomId": "studio"}, nil)
	if code != http.StatusConflict || raw["error"] != "invalid_step" {
		t.Fatalf("room before next: %d %v", code, raw)
	}
	if code, view, _ = h.call(t, http.MethodPost, base+"/next", nil, nil); code != http.StatusOK || view.Step != 2 {
		t.Fatalf("next: %d step %d", code, view.Step)
	}
	code, view, _ = h.call(t, http.MethodPut, base+"/room", map[string]string{"roomId": "studio"}, nil)
	if code != http.StatusOK || view.Summary == nil || view.Summary.Total != 20000 {
		t.Fatalf("room: %d %+v", code, view.Summary)
	}

	if code, _, _ = h.call(t, http.MethodPost, base+"/member", nil, map[string]string{"Authorization": "Bearer nope"}); code != http.StatusUnauthorized {
		t.Fatalf("member with bad token: %d", code)
	}
	_, token, err := h.auth.SignIn("test@test.com", "test123")
	if err != nil {
		t.Fatal(err)
	}
	code, view, _ = h.call(t, http.MethodPost, base+"/member", nil, map[string]string{"Authorization": "Bearer " + token})
	if code != http.StatusOK || view.Summary.Total != 18600 {
		t.Fatalf("member discount: %d %+v", code, view.Summary)
	}

	h.call(t, http.MethodPost, base+"/next", nil, nil)
	if code, view, _ = h.call(t, http.MethodPost, base+"/next", nil, nil); view.Step != 4 {
		t.Fatalf("expected payment step, got %d (%d)", view.Step, code)
	}
	guest := map[string]string{
		"fullName": "Jane Doe", "email": "jane@example.com", "phone": "0712345678",
		"address": "1 Moi Avenue", "city": "Nairobi", "country": "Kenya",
	}
	if code, _, _ = h.call(t, http.MethodPut, base+"/guest", guest, nil); code != http.StatusOK {
		t.Fatalf("guest: %d", code)
	}

	code, _, raw = h.call(t, http.MethodPost, base+"/submit", nil, nil)
	if code != http.StatusBadRequest || raw["error"] != "insecure_transport" {
		t.Fatalf("plain http submit: %d %v", code, raw)
	}
	code, _, raw = h.call(t, http.MethodPost, base+"/submit", nil, map[string]string{"X-Forwarded-Proto": "https"})
	if code != http.StatusOK {
		t.Fatalf("submit: %d %v", code, raw)
	}
	checkout, _ := raw["checkout"].(map[string]interface{})
	txRef, _ := checkout["tx_ref"].(string)
	paidRef.Store(txRef)
	if txRef == "" || checkout["amount"] != float64(18600) || checkout["public_key"] != "FLWPUBK_TEST-x" {
		t.Fatalf("unexpected checkout %v", checkout)
	}

	code, _, raw = h.call(t, http.MethodPost, "/api/bookings/confirm?tx_ref="+txRef+"&transaction_id=77&status=successful", nil, nil)
	if code != http.StatusOK || raw["outcome"] != services.OutcomeConfirmed || h.reservations.calls != 1 {
		t.Fatalf("confirm: %d %v", code, raw)
	}
	if code, _, _ = h.call(t, http.MethodGet, base, nil, nil); code != http.StatusNotFound {
		t.Fatalf("confirmed session should be gone, got %d", code)
	}
}

func TestConfirmBookingStatuses(t *testing.T) {
	h := newBookingHarness(t, func() (string, int64) { return "", 0 })

	code, _, raw := h.call(t, http.MethodPost, "/api/bookings/confirm", map[string]string{"txRef": "TRF-1"}, nil)
	if code != http.StatusBadRequest || raw["error"] != "bad_request" {
		t.Fatalf("missing transaction id: %d %v", code, raw)
	}
	code, _, raw = h.call(t, http.MethodPost, "/api/bookings/confirm", map[string]string{"txRef": "TRF-1", "transactionId": "77"}, nil)
	if code != http.StatusNotFound || raw["error"] != "booking_not_found" {
		t.Fatalf("unknown booking: %d %v", code, raw)
	}
}

func TestConfirmBookingInProgress(t *testing.T) {
	h := newBookingHarness(t, func() (string, int64) { return "TRF-busy", 100 })
	ctx := context.Background()
	draft := &models.BookingDraft{TxRef: "TRF-busy", Amount: 100, Currency: "KES", Status: models.DraftPendingPayment, Payload: []byte("{}")}
	if err := h.drafts.Create(ctx, draft); err != nil {
		t.Fatal(err)
	}
	if err := h.drafts.Claim(ctx, "TRF-busy", models.DraftConfirming, models.DraftPendingPayment); err != nil {
		t.Fatal(err)
	}

	code, _, raw := h.call(t, http.MethodPost, "/api/bookings/confirm?tx_ref=TRF-busy&transaction_id=77&status=successful", nil, nil)
	if code != http.StatusAccepted || raw["outcome"] != services.OutcomeInProgress || h.reservations.calls != 0 {
		t.Fatalf("claimed booking: %d %v (reservations %d)", code, raw, h.reservations.calls)
	}
}

func TestSessionNotFoundOverHTTP(t *testing.T) {
	h := newBookingHarness(t, func() (string, int64) { return "", 0 })
	code, _, raw := h.call(t, http.MethodPost, "/api/booking-sessions/missing/next", nil, nil)
	if code != http.StatusNotFound || raw["error"] != "session_not_found" {
		t.Fatalf("expected 404, got %d %v", code, raw)
	}
	if code, _, _ = h.call(t, http.MethodDelete, "/api/booking-sessions/missing", nil, nil); code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", code)
	}
}

func TestCheckoutScriptHandler(t *testing.T) {
	h := newBookingHarness(t, func() (string, int64) { return "", 0 })
	w := doJSON(t, h.router, http.MethodGet, "/api/payments/checkout.js", nil, nil)
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Fatalf("unexpected response %d %v", w.Code, w.Header())
	}
	if w.Body.String() != "window.FlutterwaveCheckout=function(){};" {
		t.Fatalf("unexpected script %q", w.Body.String())
	}
}
