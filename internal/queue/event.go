// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ReservationCreatedEvent is published after a reservation has been
// persisted.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
// Dates use the YYYY-MM-DD layout and the total is a decimal string.
type ReservationCreatedEvent struct {
    ReservationID string `json:"reservation_id"`
    VillaID       string `json:"villa_id"`
    VillaName     string `json:"villa_name"`
    CustomerName  string `json:"customer_name"`
    CustomerEmail string `json:"customer_email"`
    CheckIn       string `json:"checkin_date"`
    CheckOut      string `json:"checkout_date"`
    GuestsCount   int    `json:"guests_count"`
    IsEvent       bool   `json:"is_event"`
    TotalPrice    string `json:"total_price"`
    Status        string `json:"status"`
    CreatedAt     string `json:"created_at"`
}
