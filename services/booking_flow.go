package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-booking/models"
	"hotel-booking/utils"
)

type Step int

const (
	StepDates          Step = 1
	StepRoomSelection  Step = 2
	StepExtraServices  Step = 3
	StepPaymentDetails Step = 4
)

func (s Step) String() string {
	switch s {
	case StepDates:
		return "dates"
	case StepRoomSelection:
		return "room_selection"
	case StepExtraServices:
		return "extra_services"
	case StepPaymentDetails:
		return "payment_details"
	}
	return fmt.Sprintf("step_%d", int(s))
}

var (
	ErrNoPreviousStep  = errors.New("already on the first step")
	ErrNoNextStep      = errors.New("already on the last step, submit instead")
	ErrWrongStep       = errors.New("action not allowed on the current step")
	ErrUnknownRoom     = errors.New("room is not in the current availability list")
	ErrRoomUnavailable = errors.New("room has no availability for the selected dates")
	ErrUnknownRatePlan = errors.New("rate plan not offered for this room")
	ErrNoRoomSelected  = errors.New("no room selected")
)

// ValidationError blocks a transition. Fields names the offending inputs.
type ValidationError struct {
	Step    Step
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

// PricingRules are the house rules a flow prices with.
type PricingRules struct {
	ExtraAdultThreshold int
	ServiceFlatFee      int64
	LongStay            LongStayDiscounts
	Currency            string
}

// Flow is the booking wizard: Dates → RoomSelection → ExtraServices →
// PaymentDetails. Flow is not safe for concurrent use; its owner serializes
// access.
type Flow struct {
	sel   models.BookingSelection
	rules PricingRules

	rooms      []models.MappedRoom
	roomsErr   error
	loading    bool
	generation uint64
}

// DateOnly drops the clock part, keeping the calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewFlow starts on the dates step with a one night stay from today.
func NewFlow(rules PricingRules, today time.Time) *Flow {
	checkIn := DateOnly(today)
	return &Flow{
		rules: rules,
		sel: models.BookingSelection{
			CheckIn:  checkIn,
			CheckOut: checkIn.AddDate(0, 0, 1),
			Adults:   1,
			Step:     int(StepDates),
			Services: []models.SelectedService{},
		},
	}
}

func (f *Flow) Step() Step {
	return Step(f.sel.Step)
}

// Selection returns a copy of the wizard state with the total refreshed.
func (f *Flow) Selection() models.BookingSelection {
	sel := f.sel
	sel.Services = append([]models.SelectedService(nil), f.sel.Services...)
	if sel.Room != nil {
		room := *sel.Room
		sel.Room = &room
	}
	if summary, ok := f.Summary(); ok {
		sel.Total = summary.Total
	}
	return sel
}

// Generation identifies the latest room fetch. Results for older
// generations are stale.
func (f *Flow) Generation() uint64 {
	return f.generation
}

func (f *Flow) requireStep(step Step) error {
	if f.Step() != step {
		return fmt.Errorf("%w: on %s, need %s", ErrWrongStep, f.Step(), step)
	}
	return nil
}

// datesChanged invalidates the room list and selection and starts a new
// fetch generation.
func (f *Flow) datesChanged() uint64 {
	f.generation++
	f.rooms = nil
	f.roomsErr = nil
	f.loading = true
	f.sel.Room = nil
	f.sel.RatePlanID = ""
	return f.generation
}

// SetCheckIn moves check-in. When it lands on or after check-out, check-out
// follows to the next day. Returns the fetch generation to load rooms for.
func (f *Flow) SetCheckIn(d time.Time) (uint64, error) {
	if err := f.requireStep(StepDates); err != nil {
		return 0, err
	}
	f.sel.CheckIn = DateOnly(d)
	if !f.sel.CheckOut.After(f.sel.CheckIn) {
		f.sel.CheckOut = f.sel.CheckIn.AddDate(0, 0, 1)
	}
	return f.datesChanged(), nil
}

// SetCheckOut rejects a check-out that is not after check-in.
func (f *Flow) SetCheckOut(d time.Time) (uint64, error) {
	if err := f.requireStep(StepDates); err != nil {
		return 0, err
	}
	d = DateOnly(d)
	if !d.After(f.sel.CheckIn) {
		return 0, &ValidationError{Step: StepDates, Fields: []string{"checkOut"}, Message: ErrInvalidDateRange.Error()}
	}
	f.sel.CheckOut = d
	return f.datesChanged(), nil
}

// SetDates sets both dates at once. The pair must be a valid range.
func (f *Flow) SetDates(checkIn, checkOut time.Time) (uint64, error) {
	if err := f.requireStep(StepDates); err != nil {
		return 0, err
	}
	checkIn, checkOut = DateOnly(checkIn), DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return 0, &ValidationError{Step: StepDates, Fields: []string{"checkOut"}, Message: ErrInvalidDateRange.Error()}
	}
	f.sel.CheckIn = checkIn
	f.sel.CheckOut = checkOut
	return f.datesChanged(), nil
}

func (f *Flow) SetGuests(adults, children int) error {
	if err := f.requireStep(StepDates); err != nil {
		return err
	}
	var fields []string
	if adults < 1 {
		fields = append(fields, "adults")
	}
	if children < 0 {
		fields = append(fields, "children")
	}
	if len(fields) > 0 {
		return &ValidationError{Step: StepDates, Fields: fields, Message: "at least one adult and no negative children"}
	}
	f.sel.Adults = adults
	f.sel.Children = children
	return nil
}

// ApplyRooms stores the result of fetch generation gen. It returns false and
// changes nothing when gen is stale.
func (f *Flow) ApplyRooms(gen uint64, rooms []models.MappedRoom, err error) bool {
	if gen != f.generation {
		return false
	}
	f.loading = false
	f.roomsErr = err
	if err != nil {
		f.rooms = nil
		return true
	}
	f.rooms = rooms
	return true
}

// Rooms returns the room list of the current generation, whether it is still
// loading and the error the fetch ended with.
func (f *Flow) Rooms() ([]models.MappedRoom, bool, error) {
	return f.rooms, f.loading, f.roomsErr
}

// SelectRoom picks a room from the current list. Rooms without availability
// stay listed but cannot be picked. An empty ratePlanID means the first rate.
func (f *Flow) SelectRoom(roomID, ratePlanID string) error {
	if err := f.requireStep(StepRoomSelection); err != nil {
		return err
	}
	for _, room := range f.rooms {
		if room.ID != roomID {
			continue
		}
		if !room.Selectable() {
			return ErrRoomUnavailable
		}
		rate, ok := room.FindRate(strings.TrimSpace(ratePlanID))
		if !ok {
			return ErrUnknownRatePlan
		}
		picked := room
		f.sel.Room = &picked
		f.sel.RatePlanID = rate.RatePlanID
		return nil
	}
	return ErrUnknownRoom
}

// SetServices replaces the chosen extras. Each id may appear once.
func (f *Flow) SetServices(services []models.SelectedService) error {
	if err := f.requireStep(StepExtraServices); err != nil {
		return err
	}
	seen := make(map[string]bool, len(services))
	out := make([]models.SelectedService, 0, len(services))
	var fields []string
	for i, svc := range services {
		if seen[svc.ID] {
			fields = append(fields, fmt.Sprintf("services[%d].id", i))
			continue
		}
		seen[svc.ID] = true
		if bad := validateServiceDetails(svc); bad != "" {
			fields = append(fields, fmt.Sprintf("services[%d].%s", i, bad))
			continue
		}
		if svc.ID == models.ServiceAirportTransfer && svc.Details.TransferType == "" {
			svc.Details.TransferType = models.TransferPickup
		}
		out = append(out, svc)
	}
	if len(fields) > 0 {
		return &ValidationError{Step: StepExtraServices, Fields: fields, Message: "invalid service selection"}
	}
	f.sel.Services = out
	return nil
}

func validateServiceDetails(svc models.SelectedService) string {
	d := svc.Details
	switch svc.ID {
	case models.ServiceAirportTransfer:
		if strings.TrimSpace(d.FlightNumber) == "" {
			return "details.flightNumber"
		}
		if strings.TrimSpace(d.Time) == "" {
			return "details.time"
		}
		if d.TransferType != "" && d.TransferType != models.TransferPickup && d.TransferType != models.TransferDropoff {
			return "details.type"
		}
	case models.ServiceFridgeFill:
		if len(d.Items) == 0 {
			return "details.items"
		}
	case models.ServiceSpecialRequests:
		if strings.TrimSpace(d.Requests) == "" {
			return "details.requests"
		}
	default:
		return "id"
	}
	return ""
}

func (f *Flow) SetGuestInfo(g models.GuestInfo) error {
	if err := f.requireStep(StepPaymentDetails); err != nil {
		return err
	}
	f.sel.GuestInfo = g
	return nil
}

// SetMemberDiscount records a signed-in member's percentage discount.
func (f *Flow) SetMemberDiscount(percent float64) {
	f.sel.MemberDiscount = percent
}

// Next advances one step when the current step's guard passes.
func (f *Flow) Next() error {
	switch f.Step() {
	case StepDates:
		if !f.sel.CheckOut.After(f.sel.CheckIn) {
			return &ValidationError{Step: StepDates, Fields: []string{"checkOut"}, Message: ErrInvalidDateRange.Error()}
		}
		if f.sel.Adults < 1 {
			return &ValidationError{Step: StepDates, Fields: []string{"adults"}, Message: "at least one adult is required"}
		}
	case StepRoomSelection:
		if f.sel.Room == nil {
			return &ValidationError{Step: StepRoomSelection, Fields: []string{"room"}, Message: ErrNoRoomSelected.Error()}
		}
		if !f.sel.Room.Selectable() {
			return &ValidationError{Step: StepRoomSelection, Fields: []string{"room"}, Message: ErrRoomUnavailable.Error()}
		}
	case StepExtraServices:
	case StepPaymentDetails:
		return ErrNoNextStep
	}
	f.sel.Step++
	return nil
}

// Back returns to the previous step. Selections are kept.
func (f *Flow) Back() error {
	if f.Step() <= StepDates {
		return ErrNoPreviousStep
	}
	f.sel.Step--
	return nil
}

func (f *Flow) discountPercent(nights int) float64 {
	return max(f.rules.LongStay.For(nights), f.sel.MemberDiscount)
}

// Summary prices the current selection. It is false until a room is picked.
func (f *Flow) Summary() (models.BookingSummary, bool) {
	if f.sel.Room == nil {
		return models.BookingSummary{}, false
	}
	rate, ok := f.sel.Room.FindRate(f.sel.RatePlanID)
	if !ok {
		return models.BookingSummary{}, false
	}
	nights := Nights(f.sel.CheckIn, f.sel.CheckOut)
	s := PriceStay(StayInput{
		Rate:                rate,
		Nights:              nights,
		Adults:              f.sel.Adults,
		Children:            f.sel.Children,
		ExtraAdultThreshold: f.rules.ExtraAdultThreshold,
		Services:            f.sel.Services,
		FlatServiceFee:      f.rules.ServiceFlatFee,
		DiscountPercent:     f.discountPercent(nights),
	})
	s.Currency = f.rules.Currency
	return s, true
}

// ValidateForSubmit checks everything a payment needs: the last step, a
// bookable room and complete guest contact details.
func (f *Flow) ValidateForSubmit() error {
	if err := f.requireStep(StepPaymentDetails); err != nil {
		return err
	}
	if f.sel.Room == nil || !f.sel.Room.Selectable() {
		return &ValidationError{Step: StepPaymentDetails, Fields: []string{"room"}, Message: ErrNoRoomSelected.Error()}
	}
	if err := utils.Validator().Struct(f.sel.GuestInfo); err != nil {
		return &ValidationError{Step: StepPaymentDetails, Fields: utils.InvalidFields(err), Message: "guest details are incomplete"}
	}
	return nil
}

// Draft captures the booking for the payment round trip.
func (f *Flow) Draft() models.DraftPayload {
	summary, _ := f.Summary()
	draft := models.DraftPayload{
		CheckIn:   f.sel.CheckIn.Format(ezeeDateLayout),
		CheckOut:  f.sel.CheckOut.Format(ezeeDateLayout),
		Adults:    f.sel.Adults,
		Children:  f.sel.Children,
		Services:  append([]models.SelectedService(nil), f.sel.Services...),
		GuestInfo: f.sel.GuestInfo,
		Amount:    summary.Total,
	}
	if f.sel.Room != nil {
		draft.Room = models.DraftRoom{
			ID:               f.sel.Room.ID,
			VendorRoomTypeID: f.sel.Room.VendorRoomTypeID,
			Name:             f.sel.Room.Name,
			RatePlanID:       f.sel.RatePlanID,
		}
	}
	return draft
}
