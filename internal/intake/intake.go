// Package intake turns free-text reservation messages ("Casal pro chalé 5,
// sexta a domingo, pagou 300 de sinal") into pending bookings. An LLM does
// the extraction; the normalization rules here are the source of truth for
// defaults and pricing, never the model.
package intake

import "context"

// Parsed is the raw extraction for one reservation found in a message.
// Everything is optional; Normalize fills the gaps or rejects the item.
type Parsed struct {
	ChaletID       int     `json:"chalet_id"`
	GuestName      string  `json:"guest_name"`
	ContactInfo    string  `json:"contact_info"`
	CheckinDate    string  `json:"checkin_date"`
	CheckoutDate   string  `json:"checkout_date"`
	TotalPrice     float64 `json:"total_price"`
	AdvancePayment float64 `json:"advance_payment"`
	ArrivalTime    string  `json:"arrival_time"`
	Adults         int     `json:"adults"`
	Children57     int     `json:"children_5_7"`
	Notes          string  `json:"notes"`
}

// Extractor pulls reservation details out of an operator message.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Parsed, error)
}
