package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by every repository when a row does not exist.
var ErrNotFound = pgx.ErrNoRows

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories and scopes them to a unit of work.
type Store interface {
	Users() UserRepository
	Locations() LocationRepository
	Tickets() TicketRepository
	History() TicketHistoryRepository
	KitchenLogs() KitchenLogRepository
	Photos() OrderPhotoRepository
	Payroll() PayrollRepository
	Notifications() NotificationRepository

	// InTx runs fn against a transaction-bound Store. The transaction commits
	// when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *pgStore) Locations() LocationRepository         { return NewLocationRepository(s.db) }
func (s *pgStore) Tickets() TicketRepository             { return NewTicketRepository(s.db) }
func (s *pgStore) History() TicketHistoryRepository      { return NewTicketHistoryRepository(s.db) }
func (s *pgStore) KitchenLogs() KitchenLogRepository     { return NewKitchenLogRepository(s.db) }
func (s *pgStore) Photos() OrderPhotoRepository          { return NewOrderPhotoRepository(s.db) }
func (s *pgStore) Payroll() PayrollRepository            { return NewPayrollRepository(s.db) }
func (s *pgStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

func (s *pgStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op after a successful commit
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UniqueViolation builds the error a unique constraint failure produces, for
// stores that enforce constraints themselves.
func UniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}
