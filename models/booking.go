package models

import "time"

const (
	ServiceAirportTransfer = "airport-transfer"
	ServiceFridgeFill      = "fridge-fill"
	ServiceSpecialRequests = "special-requests"
)

const (
	TransferPickup  = "pickup"
	TransferDropoff = "dropoff"
)

// ServiceDetails carries the structured answers for an ancillary service.
// Only the fields relevant to the service id are filled.
type ServiceDetails struct {
	FlightNumber string   `json:"flightNumber,omitempty"`
	Time         string   `json:"time,omitempty"`
	TransferType string   `json:"type,omitempty"`
	Items        []string `json:"items,omitempty"`
	Requests     string   `json:"requests,omitempty"`
}

type SelectedService struct {
	ID      string         `json:"id" binding:"required,oneof=airport-transfer fridge-fill special-requests"`
	Details ServiceDetails `json:"details"`
}

// GuestInfo is collected on the payment step. Zip code is optional.
type GuestInfo struct {
	FullName string `json:"fullName" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,phone"`
	Address  string `json:"address" binding:"required,notblank"`
	City     string `json:"city" binding:"required,notblank"`
	Country  string `json:"country" binding:"required,notblank"`
	ZipCode  string `json:"zipCode,omitempty"`
}

// BookingSelection is the wizard state of one booking session.
type BookingSelection struct {
	CheckIn        time.Time         `json:"checkIn"`
	CheckOut       time.Time         `json:"checkOut"`
	Adults         int               `json:"adults"`
	Children       int               `json:"children"`
	Room           *MappedRoom       `json:"room,omitempty"`
	RatePlanID     string            `json:"ratePlanId,omitempty"`
	Services       []SelectedService `json:"services"`
	Step           int               `json:"step"`
	GuestInfo      GuestInfo         `json:"guestInfo"`
	Total          int64             `json:"total"`
	MemberDiscount float64           `json:"memberDiscount,omitempty"`
}

// BookingSummary is the derived price breakdown shown next to the wizard.
type BookingSummary struct {
	Nights             int     `json:"nights"`
	RoomTotal          int64   `json:"roomTotal"`
	ExtraAdults        int     `json:"extraAdults"`
	ExtraAdultsTotal   int64   `json:"extraAdultsTotal"`
	ExtraChildrenTotal int64   `json:"extraChildrenTotal"`
	ServicesTotal      int64   `json:"servicesTotal"`
	Subtotal           int64   `json:"subtotal"`
	DiscountPercent    float64 `json:"discountPercent,omitempty"`
	Discount           int64   `json:"discount"`
	Total              int64   `json:"total"`
	Currency           string  `json:"currency"`
}

type PaymentCustomer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

// PaymentIntent is built right before the checkout widget is opened. Amount is
// whole currency units.
type PaymentIntent struct {
	TxRef       string          `json:"txRef"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Customer    PaymentCustomer `json:"customer"`
	RedirectURL string          `json:"redirectUrl"`
}
