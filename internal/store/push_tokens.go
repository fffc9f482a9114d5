package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PushTokenStore keeps the Expo push tokens of the operators' phones so the
// automated intake can alert them about fresh pending reservations.
type PushTokenStore struct {
	db *pgxpool.Pool
}

func (s *PushTokenStore) Save(ctx context.Context, token string) error {
	query := `
		INSERT INTO push_tokens (token)
		VALUES ($1)
		ON CONFLICT (token) DO UPDATE SET updated_at = NOW()`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, token)
	return err
}

func (s *PushTokenStore) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT token FROM push_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
