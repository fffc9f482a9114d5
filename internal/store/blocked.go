package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BlockedChaletStore tracks units taken out of service for maintenance.
// The blocklist is independent of bookings: a blocked chalet stays blocked
// no matter what reservations exist for it.
type BlockedChaletStore struct {
	db *pgxpool.Pool
}

func (s *BlockedChaletStore) List(ctx context.Context) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT chalet_id FROM blocked_chalets ORDER BY chalet_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *BlockedChaletStore) Block(ctx context.Context, chaletID int, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx,
		`INSERT INTO blocked_chalets (chalet_id, reason) VALUES ($1, $2)`,
		chaletID, reason,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *BlockedChaletStore) Unblock(ctx context.Context, chaletID int) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `DELETE FROM blocked_chalets WHERE chalet_id = $1`, chaletID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
