package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSubscribersTable = `
CREATE TABLE IF NOT EXISTS newsletter_subscribers (
	id          UUID PRIMARY KEY,
	email       TEXT NOT NULL UNIQUE,
	source      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// execer - часть pgxpool.Pool, нужная репозиторию
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSubscriberRepository хранит подписчиков рассылки
type PostgresSubscriberRepository struct {
	db execer
}

func NewPostgresSubscriberRepository(pool *pgxpool.Pool) (*PostgresSubscriberRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresSubscriberRepository{db: pool}, nil
}

// EnsureSchema создает таблицу, если ее еще нет
func (r *PostgresSubscriberRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSubscribersTable); err != nil {
		return fmt.Errorf("failed to create newsletter_subscribers table: %w", err)
	}
	return nil
}

// Save добавляет подписчика. Повторный email не считается ошибкой: created=false.
func (r *PostgresSubscriberRepository) Save(ctx context.Context, sub domain.Subscriber) (bool, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":     "PostgresSubscriberRepository",
		"method":        "Save",
		"subscriber_id": sub.ID,
	})

	query := `INSERT INTO newsletter_subscribers (id, email, source, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, sub.ID, sub.Email, sub.Source, sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			repoLogger.Debug("Subscriber already exists", nil)
			return false, nil
		}
		repoLogger.Error("Failed to insert subscriber", err, nil)
		return false, fmt.Errorf("failed to insert subscriber: %w", err)
	}

	repoLogger.Debug("Subscriber inserted", nil)
	return true, nil
}
