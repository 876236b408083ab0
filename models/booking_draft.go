package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DraftPendingPayment            = "pending_payment"
	DraftConfirming                = "confirming"
	DraftPaymentFailed             = "payment_failed"
	DraftPendingManualConfirmation = "pending_manual_confirmation"
)

// DraftRoom is the slice of the selected room a reservation needs.
type DraftRoom struct {
	ID               string `json:"id"`
	VendorRoomTypeID string `json:"vendorRoomTypeId"`
	Name             string `json:"name"`
	RatePlanID       string `json:"ratePlanId"`
}

// DraftPayload is the JSON body stored with a draft between payment
// initiation and confirmation.
type DraftPayload struct {
	CheckIn   string            `json:"checkIn"`
	CheckOut  string            `json:"checkOut"`
	Room      DraftRoom         `json:"room"`
	Adults    int               `json:"adults"`
	Children  int               `json:"children"`
	Services  []SelectedService `json:"services"`
	GuestInfo GuestInfo         `json:"guestInfo"`
	Amount    int64             `json:"amount"`
}

// BookingDraft keeps an in-flight booking keyed by its transaction reference
// until the payment is confirmed. Confirmed drafts are deleted.
type BookingDraft struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TxRef         string         `gorm:"column:tx_ref;size:64;uniqueIndex" json:"txRef"`
	SessionID     string         `gorm:"column:session_id;size:64;index" json:"sessionId"`
	Amount        int64          `gorm:"column:amount" json:"amount"`
	Currency      string         `gorm:"column:currency;size:8" json:"currency"`
	Status        string         `gorm:"column:status;size:64;index" json:"status"`
	TransactionID string         `gorm:"column:transaction_id;size:64" json:"transactionId,omitempty"`
	FailureReason string         `gorm:"column:failure_reason;size:255" json:"failureReason,omitempty"`
	Payload       datatypes.JSON `gorm:"column:payload" json:"payload"`
}
