package services

import (
	"errors"
	"testing"
	"time"

	"hotel-booking/models"
)

var testRules = PricingRules{
	ExtraAdultThreshold: 2,
	ServiceFlatFee:      50,
	LongStay:            LongStayDiscounts{Weekly: 10, Monthly: 20, Quarterly: 30},
	Currency:            "KES",
}

func testRooms() []models.MappedRoom {
	return []models.MappedRoom{
		{
			ID: "studio", VendorRoomTypeID: "1", Name: "Studio", Availability: 2,
			Rates: []models.Rate{{RatePlanID: "BAR", BaseRate: 10000, ExtraAdultRate: 2000}, {RatePlanID: "NRF", BaseRate: 9000}},
		},
		{ID: "suite", VendorRoomTypeID: "5", Name: "Suite", Availability: 0, Rates: []models.Rate{{RatePlanID: "BAR", BaseRate: 20000}}},
	}
}

func validGuest() models.GuestInfo {
	return models.GuestInfo{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "0712345678",
		Address:  "1 Moi Avenue",
		City:     "Nairobi",
		Country:  "Kenya",
	}
}

// flowOnRoomStep returns a flow for June 1 to June 3 with rooms loaded.
func flowOnRoomStep(t *testing.T) *Flow {
	t.Helper()
	f := NewFlow(testRules, day("2024-05-20"))
	gen, err := f.SetDates(day("2024-06-01"), day("2024-06-03"))
	if err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if !f.ApplyRooms(gen, testRooms(), nil) {
		t.Fatal("current generation rejected")
	}
	if err := f.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	return f
}

func TestNewFlowDefaults(t *testing.T) {
	f := NewFlow(testRules, day("2024-06-01").Add(15*time.Hour))
	sel := f.Selection()
	if f.Step() != StepDates || sel.Adults != 1 || sel.Children != 0 {
		t.Fatalf("unexpected initial state %+v", sel)
	}
	if !sel.CheckIn.Equal(day("2024-06-01")) || !sel.CheckOut.Equal(day("2024-06-02")) {
		t.Fatalf("expected a one night stay from today, got %s..%s", sel.CheckIn, sel.CheckOut)
	}
	if _, ok := f.Summary(); ok {
		t.Fatal("no summary before a room is picked")
	}
}

func TestSetCheckOutRejectsSameDay(t *testing.T) {
	f := NewFlow(testRules, day("2024-06-01"))
	var verr *ValidationError
	if _, err := f.SetCheckOut(day("2024-06-01")); !errors.As(err, &verr) || verr.Fields[0] != "checkOut" {
		t.Fatalf("checkout == checkin should fail validation, got %v", err)
	}
	if _, err := f.SetCheckOut(day("2024-06-02")); err != nil {
		t.Fatalf("checkin+1 should be valid: %v", err)
	}
	if _, err := f.SetDates(day("2024-06-05"), day("2024-06-04")); !errors.As(err, &verr) {
		t.Fatalf("reversed range should fail, got %v", err)
	}
}

func TestSetCheckInPushesCheckOut(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	if _, err := f.SetDates(day("2024-06-01"), day("2024-06-03")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SetCheckIn(day("2024-06-05")); err != nil {
		t.Fatal(err)
	}
	sel := f.Selection()
	if !sel.CheckOut.Equal(day("2024-06-06")) {
		t.Fatalf("checkout should move to June 6, got %s", sel.CheckOut.Format("2006-01-02"))
	}

	// moving check-in earlier keeps a still valid check-out
	if _, err := f.SetCheckIn(day("2024-06-02")); err != nil {
		t.Fatal(err)
	}
	if sel := f.Selection(); !sel.CheckOut.Equal(day("2024-06-06")) {
		t.Fatalf("checkout should stay June 6, got %s", sel.CheckOut.Format("2006-01-02"))
	}
}

func TestStaleRoomResultsAreDiscarded(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	first, _ := f.SetDates(day("2024-06-01"), day("2024-06-03"))
	second, _ := f.SetDates(day("2024-06-05"), day("2024-06-07"))

	june5 := []models.MappedRoom{{ID: "suite", Availability: 1, Rates: []models.Rate{{RatePlanID: "BAR", BaseRate: 1}}}}
	if !f.ApplyRooms(second, june5, nil) {
		t.Fatal("latest generation rejected")
	}
	if f.ApplyRooms(first, testRooms(), nil) {
		t.Fatal("stale generation applied")
	}
	rooms, loading, err := f.Rooms()
	if loading || err != nil || len(rooms) != 1 || rooms[0].ID != "suite" {
		t.Fatalf("room list should reflect June 5-7 only, got %+v loading=%v err=%v", rooms, loading, err)
	}
}

func TestDateChangeClearsRoomSelection(t *testing.T) {
	f := flowOnRoomStep(t)
	if err := f.SelectRoom("studio", ""); err != nil {
		t.Fatal(err)
	}
	if err := f.Back(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SetCheckIn(day("2024-06-10")); err != nil {
		t.Fatal(err)
	}
	if sel := f.Selection(); sel.Room != nil || sel.RatePlanID != "" {
		t.Fatalf("date change should clear the room, got %+v", sel.Room)
	}
	if _, loading, _ := f.Rooms(); !loading {
		t.Fatal("a date change should start loading")
	}
}

func TestSelectRoom(t *testing.T) {
	f := flowOnRoomStep(t)

	if err := f.SelectRoom("penthouse", ""); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}
	if err := f.SelectRoom("suite", ""); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("sold out room should not be selectable, got %v", err)
	}
	if err := f.SelectRoom("studio", "XYZ"); !errors.Is(err, ErrUnknownRatePlan) {
		t.Fatalf("expected ErrUnknownRatePlan, got %v", err)
	}
	if err := f.SelectRoom("studio", "NRF"); err != nil {
		t.Fatalf("SelectRoom: %v", err)
	}
	if sel := f.Selection(); sel.RatePlanID != "NRF" || sel.Total != 18000 {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestNextGuards(t *testing.T) {
	f := flowOnRoomStep(t)
	var verr *ValidationError
	if err := f.Next(); !errors.As(err, &verr) || verr.Step != StepRoomSelection {
		t.Fatalf("room step should require a room, got %v", err)
	}
	if err := f.SelectRoom("studio", ""); err != nil {
		t.Fatal(err)
	}
	if err := f.Next(); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepExtraServices {
		t.Fatalf("step = %s", f.Step())
	}
	if err := f.Next(); err != nil {
		t.Fatalf("extras are optional: %v", err)
	}
	if err := f.Next(); !errors.Is(err, ErrNoNextStep) {
		t.Fatalf("expected ErrNoNextStep, got %v", err)
	}
}

func TestBackKeepsSelections(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	if err := f.Back(); !errors.Is(err, ErrNoPreviousStep) {
		t.Fatalf("expected ErrNoPreviousStep, got %v", err)
	}

	f = flowOnRoomStep(t)
	_ = f.SelectRoom("studio", "")
	_ = f.Next()
	if err := f.Back(); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepRoomSelection || f.Selection().Room == nil {
		t.Fatal("back should keep the chosen room")
	}
}

func TestSettersAreBoundToTheirStep(t *testing.T) {
	f := flowOnRoomStep(t)
	if _, err := f.SetCheckIn(day("2024-07-01")); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("dates may only change on the dates step, got %v", err)
	}
	if err := f.SetGuests(2, 0); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("guests may only change on the dates step, got %v", err)
	}
	if err := f.SetServices(nil); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("services belong to step 3, got %v", err)
	}
	if err := f.SetGuestInfo(validGuest()); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("guest info belongs to step 4, got %v", err)
	}
}

func TestSetGuestsValidation(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	var verr *ValidationError
	if err := f.SetGuests(0, -1); !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected adults and children errors, got %v", err)
	}
	if err := f.SetGuests(3, 1); err != nil {
		t.Fatal(err)
	}
}

func TestSetServices(t *testing.T) {
	f := flowOnRoomStep(t)
	_ = f.SelectRoom("studio", "")
	_ = f.Next()

	var verr *ValidationError
	err := f.SetServices([]models.SelectedService{
		{ID: models.ServiceAirportTransfer},
		{ID: models.ServiceFridgeFill, Details: models.ServiceDetails{Items: []string{"water"}}},
		{ID: models.ServiceFridgeFill, Details: models.ServiceDetails{Items: []string{"juice"}}},
		{ID: "spa"},
	})
	if !errors.As(err, &verr) || len(verr.Fields) != 3 {
		t.Fatalf("expected 3 invalid services, got %v", err)
	}

	err = f.SetServices([]models.SelectedService{
		{ID: models.ServiceAirportTransfer, Details: models.ServiceDetails{FlightNumber: "KQ101", Time: "14:30"}},
		{ID: models.ServiceSpecialRequests, Details: models.ServiceDetails{Requests: "Late check-in"}},
	})
	if err != nil {
		t.Fatalf("SetServices: %v", err)
	}
	sel := f.Selection()
	if len(sel.Services) != 2 || sel.Services[0].Details.TransferType != models.TransferPickup {
		t.Fatalf("unexpected services %+v", sel.Services)
	}
	// 10000*2 + 2 services * 50
	if sel.Total != 20100 {
		t.Fatalf("Total = %d", sel.Total)
	}
}

func TestSummaryWorkedExample(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	gen, _ := f.SetDates(day("2024-06-01"), day("2024-06-03"))
	if err := f.SetGuests(3, 0); err != nil {
		t.Fatal(err)
	}
	f.ApplyRooms(gen, testRooms(), nil)
	_ = f.Next()
	_ = f.SelectRoom("studio", "BAR")
	_ = f.Next()
	_ = f.SetServices([]models.SelectedService{{ID: models.ServiceSpecialRequests, Details: models.ServiceDetails{Requests: "Extra pillows"}}})

	s, ok := f.Summary()
	if !ok || s.Total != 24050 || s.Currency != "KES" {
		t.Fatalf("unexpected summary %+v ok=%v", s, ok)
	}
}

func TestDiscountTakesTheLarger(t *testing.T) {
	f := NewFlow(testRules, day("2024-05-01"))
	gen, _ := f.SetDates(day("2024-06-01"), day("2024-06-08"))
	f.ApplyRooms(gen, testRooms(), nil)
	_ = f.Next()
	_ = f.SelectRoom("studio", "NRF")

	s, _ := f.Summary()
	if s.DiscountPercent != 10 || s.Total != 56700 {
		t.Fatalf("weekly discount expected, got %+v", s)
	}

	f.SetMemberDiscount(15)
	s, _ = f.Summary()
	if s.DiscountPercent != 15 || s.Total != 53550 {
		t.Fatalf("member discount should win, got %+v", s)
	}
}

func TestValidateForSubmitAndDraft(t *testing.T) {
	f := flowOnRoomStep(t)
	_ = f.SelectRoom("studio", "")
	_ = f.Next()
	_ = f.Next()

	if err := f.SetGuestInfo(models.GuestInfo{FullName: "  ", Email: "nope", Phone: "12"}); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if err := f.ValidateForSubmit(); !errors.As(err, &verr) || len(verr.Fields) < 3 {
		t.Fatalf("expected invalid guest fields, got %v", err)
	}

	if err := f.SetGuestInfo(validGuest()); err != nil {
		t.Fatal(err)
	}
	if err := f.ValidateForSubmit(); err != nil {
		t.Fatalf("ValidateForSubmit: %v", err)
	}

	d := f.Draft()
	if d.CheckIn != "2024-06-01" || d.CheckOut != "2024-06-03" || d.Room.ID != "studio" || d.Room.RatePlanID != "BAR" || d.Amount != 20000 {
		t.Fatalf("unexpected draft %+v", d)
	}
}
