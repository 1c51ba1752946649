package repository

import (
	"context"
	"errors"
	"fmt"

	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgUniqueViolation = "23505"

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT username, password, name
		FROM users
		WHERE username = $1
	`

	var u model.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.PasswordHash, &u.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("username", username).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("username", username).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, password, name)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, user.Username, user.PasswordHash, user.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.ErrUserExists
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info().Str("username", user.Username).Msg("user created")
	return nil
}
