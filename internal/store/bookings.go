package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	// BookingStatusCancelled never enters through this service; the public
	// read path still filters it defensively because legacy rows carry it.
	BookingStatusCancelled = "cancelled"
)

// Booking is a reservation of one chalet for a date range. checkin_date is
// inclusive; checkout_date is the departure day (guest leaves that morning).
type Booking struct {
	ID              int64   `json:"id"`
	Ref             string  `json:"ref,omitempty"`
	ChaletID        int     `json:"chalet_id"`
	CheckinDate     Date    `json:"checkin_date"`
	CheckoutDate    Date    `json:"checkout_date"`
	GuestName       string  `json:"guest_name"`
	ContactInfo     string  `json:"contact_info"`
	Status          string  `json:"status"`
	TotalPrice      float64 `json:"total_price"`
	AdvancePayment  float64 `json:"advance_payment"`
	ArrivalTime     string  `json:"arrival_time"`
	IsLateArrival   bool    `json:"is_late_arrival"`
	LateFee         float64 `json:"late_fee"`
	Adults          int     `json:"adults"`
	PaymentProofURL *string `json:"payment_proof_url"`
	// RawMessage is an open-ended side channel (notes, source channel,
	// vehicle plate, intake transcript). It never participates in the
	// availability logic.
	RawMessage *string `json:"raw_message,omitempty"`

	// Audit trail, captured at creation/edit time and never validated.
	MadeBy   string `json:"made_by"`
	Device   string `json:"device"`
	Location string `json:"location"`

	AutoAssigned bool   `json:"auto_assigned"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// PublicBooking is the guest-facing projection: occupancy only, no names,
// no money, no contact details.
type PublicBooking struct {
	ChaletID     int    `json:"chalet_id"`
	CheckinDate  Date   `json:"checkin_date"`
	CheckoutDate Date   `json:"checkout_date"`
	Status       string `json:"status"`
}

type BookingStore struct {
	db *pgxpool.Pool
}

const bookingColumns = `
	id, chalet_id, checkin_date, checkout_date, guest_name, contact_info,
	status, total_price, advance_payment, arrival_time, is_late_arrival,
	late_fee, adults, payment_proof_url, raw_message, made_by, device,
	location, auto_assigned, created_at::text, updated_at::text`

func scanBooking(row pgx.Row, b *Booking) error {
	return row.Scan(
		&b.ID,
		&b.ChaletID,
		&b.CheckinDate.Time,
		&b.CheckoutDate.Time,
		&b.GuestName,
		&b.ContactInfo,
		&b.Status,
		&b.TotalPrice,
		&b.AdvancePayment,
		&b.ArrivalTime,
		&b.IsLateArrival,
		&b.LateFee,
		&b.Adults,
		&b.PaymentProofURL,
		&b.RawMessage,
		&b.MadeBy,
		&b.Device,
		&b.Location,
		&b.AutoAssigned,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (s *BookingStore) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var b Booking
	if err := scanBooking(s.db.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetForWindow retrieves every booking whose stay intersects the inclusive
// [windowStart, windowEnd] range. A booking touches the window when it
// checks in on or before the window end and checks out on or after the
// window start.
func (s *BookingStore) GetForWindow(ctx context.Context, windowStart, windowEnd Date) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE checkin_date <= $2 AND checkout_date >= $1
		ORDER BY chalet_id, checkin_date`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, windowStart.Time, windowEnd.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetPublicForWindow is the stricter guest-facing variant: it excludes
// cancelled rows and projects only non-sensitive columns.
func (s *BookingStore) GetPublicForWindow(ctx context.Context, windowStart, windowEnd Date) ([]PublicBooking, error) {
	query := `
		SELECT chalet_id, checkin_date, checkout_date, status
		FROM bookings
		WHERE checkin_date <= $2
		  AND checkout_date >= $1
		  AND status <> $3
		ORDER BY chalet_id, checkin_date`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, windowStart.Time, windowEnd.Time, BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PublicBooking
	for rows.Next() {
		var pb PublicBooking
		if err := rows.Scan(&pb.ChaletID, &pb.CheckinDate.Time, &pb.CheckoutDate.Time, &pb.Status); err != nil {
			return nil, err
		}
		out = append(out, pb)
	}
	return out, rows.Err()
}

const insertBookingQuery = `
	INSERT INTO bookings (
		chalet_id, checkin_date, checkout_date, guest_name, contact_info,
		status, total_price, advance_payment, arrival_time, is_late_arrival,
		late_fee, adults, payment_proof_url, raw_message, made_by, device,
		location, auto_assigned
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	RETURNING id, created_at::text, updated_at::text`

func insertArgs(b *Booking) []any {
	return []any{
		b.ChaletID,
		b.CheckinDate.Time,
		b.CheckoutDate.Time,
		b.GuestName,
		b.ContactInfo,
		b.Status,
		b.TotalPrice,
		b.AdvancePayment,
		b.ArrivalTime,
		b.IsLateArrival,
		b.LateFee,
		b.Adults,
		b.PaymentProofURL,
		b.RawMessage,
		b.MadeBy,
		b.Device,
		b.Location,
		b.AutoAssigned,
	}
}

func (s *BookingStore) Create(ctx context.Context, b *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, insertBookingQuery, insertArgs(b)...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// CreateBatch inserts several bookings in one transaction. The automated
// intake can extract multiple reservations from a single message; either
// all of them land or none do.
func (s *BookingStore) CreateBatch(ctx context.Context, bookings []*Booking) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, b := range bookings {
		if err := tx.QueryRow(ctx, insertBookingQuery, insertArgs(b)...).
			Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update rewrites every mutable field of the booking in place. Chalet
// reassignment deliberately goes through Reassign instead so it can succeed
// or fail on its own.
func (s *BookingStore) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET checkin_date = $1, checkout_date = $2, guest_name = $3,
		    contact_info = $4, total_price = $5, advance_payment = $6,
		    arrival_time = $7, is_late_arrival = $8, late_fee = $9,
		    adults = $10, payment_proof_url = $11, raw_message = $12,
		    made_by = $13, device = $14, location = $15,
		    updated_at = NOW()
		WHERE id = $16`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query,
		b.CheckinDate.Time, b.CheckoutDate.Time, b.GuestName,
		b.ContactInfo, b.TotalPrice, b.AdvancePayment,
		b.ArrivalTime, b.IsLateArrival, b.LateFee,
		b.Adults, b.PaymentProofURL, b.RawMessage,
		b.MadeBy, b.Device, b.Location,
		b.ID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingStore) Reassign(ctx context.Context, bookingID int64, chaletID int) error {
	query := `UPDATE bookings SET chalet_id = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, chaletID, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingStore) UpdateStatus(ctx context.Context, bookingID int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, status, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
