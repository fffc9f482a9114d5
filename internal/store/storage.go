package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Bookings interface {
		GetByID(context.Context, int64) (*Booking, error)
		GetForWindow(context.Context, Date, Date) ([]Booking, error)
		GetPublicForWindow(context.Context, Date, Date) ([]PublicBooking, error)
		Create(context.Context, *Booking) error
		CreateBatch(context.Context, []*Booking) error
		Update(context.Context, *Booking) error
		Reassign(ctx context.Context, bookingID int64, chaletID int) error
		UpdateStatus(ctx context.Context, bookingID int64, status string) error
		Delete(context.Context, int64) error
	}
	Blocked interface {
		List(context.Context) ([]int, error)
		Block(ctx context.Context, chaletID int, reason string) error
		Unblock(ctx context.Context, chaletID int) error
	}
	BlogPosts interface {
		GetBySlug(context.Context, string) (*BlogPost, error)
		ListPublished(ctx context.Context, limit int) ([]BlogPost, error)
		ListRelated(ctx context.Context, excludeSlug string, limit int) ([]BlogPost, error)
	}
	Leads interface {
		Create(context.Context, *Lead) error
	}
	PushTokens interface {
		Save(ctx context.Context, token string) error
		List(context.Context) ([]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Bookings:   &BookingStore{db},
		Blocked:    &BlockedChaletStore{db},
		BlogPosts:  &BlogPostStore{db},
		Leads:      &LeadStore{db},
		PushTokens: &PushTokenStore{db},
	}
}
