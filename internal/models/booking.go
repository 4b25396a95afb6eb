package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus tracks the lifecycle of a gown booking.
type BookingStatus string

// Booking statuses. PENDING/PAID are derived at creation from the payment
// reference; FINE_PENDING/CLEARED are derived from fine state on update;
// ISSUED/RETURNED are set explicitly by gown-store staff.
const (
	BookingPending     BookingStatus = "PENDING"
	BookingPaid        BookingStatus = "PAID"
	BookingIssued      BookingStatus = "ISSUED"
	BookingReturned    BookingStatus = "RETURNED"
	BookingFinePending BookingStatus = "FINE_PENDING"
	BookingCleared     BookingStatus = "CLEARED"
)

// Valid reports whether the status is one of the recognised values.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingPaid, BookingIssued, BookingReturned, BookingFinePending, BookingCleared:
		return true
	}
	return false
}

// Fine records a damage or late-return charge on a booking.
type Fine struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
	IsPaid bool    `json:"isPaid"`
}

// Value implements driver.Valuer.
func (f *Fine) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *Fine) Scan(src interface{}) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("fine: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, f)
}

// GownBooking reserves graduation regalia against a clearance request.
type GownBooking struct {
	ID         string        `db:"id" json:"id"`
	RequestID  string        `db:"request_id" json:"requestId"`
	StudentID  string        `db:"student_id" json:"studentId"`
	GownType   string        `db:"gown_type" json:"gownType"`
	GownSize   string        `db:"gown_size" json:"gownSize"`
	Amount     float64       `db:"amount" json:"amount"`
	Currency   string        `db:"currency" json:"currency"`
	PaymentRef *string       `db:"payment_ref" json:"paymentRef,omitempty"`
	Status     BookingStatus `db:"status" json:"status"`
	Fine       *Fine         `db:"fine" json:"fine"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

// BookingFilter constrains booking listings.
type BookingFilter struct {
	StudentID string
	RequestID string
}
