package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Reservation statuses.  Only pending is produced by the booking flow;
// the other values exist for manual administrative correction.
const (
    StatusPending   = "pending"
    StatusConfirmed = "confirmed"
    StatusCancelled = "cancelled"
)

// Reservation records a customer's booking request for a villa.  The
// total price is computed by the pricing engine when the reservation is
// created and is never recomputed afterwards.  CheckIn and CheckOut are
// calendar dates stored at midnight UTC.
//
// Fields:
//  ID            – generated UUID.
//  VillaID       – catalog id of the booked villa.
//  VillaName     – villa name at booking time, for admin listings.
//  CustomerName  – name given on the booking form.
//  CustomerEmail – contact email.
//  CustomerPhone – contact phone.
//  CheckIn       – arrival date.
//  CheckOut      – departure date (after CheckIn).
//  GuestsCount   – number of guests, at most the villa capacity.
//  IsEvent       – the stay is an event or party.
//  HighSeason    – the high-season rate was requested.
//  Message       – optional free text.
//  TotalPrice    – stored quote total.
//  Status        – pending, confirmed or cancelled.
//  CreatedAt     – creation timestamp (UTC).
type Reservation struct {
    ID            string          `json:"id"`
    VillaID       string          `json:"villa_id"`
    VillaName     string          `json:"villa_name"`
    CustomerName  string          `json:"customer_name"`
    CustomerEmail string          `json:"customer_email"`
    CustomerPhone string          `json:"customer_phone"`
    CheckIn       time.Time       `json:"checkin_date"`
    CheckOut      time.Time       `json:"checkout_date"`
    GuestsCount   int             `json:"guests_count"`
    IsEvent       bool            `json:"is_event"`
    HighSeason    bool            `json:"high_season"`
    Message       string          `json:"message,omitempty"`
    TotalPrice    decimal.Decimal `json:"total_price"`
    Status        string          `json:"status"`
    CreatedAt     time.Time       `json:"created_at"`
}

// ReservationStats aggregates the reservation table for the admin
// dashboard.
type ReservationStats struct {
    TotalReservations   int             `json:"total_reservations"`
    PendingReservations int             `json:"pending_reservations"`
    TotalRevenue        decimal.Decimal `json:"total_revenue"`
}
