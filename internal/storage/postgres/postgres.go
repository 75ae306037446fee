package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pribylovaa/paleta/internal/storage"
	"github.com/pribylovaa/paleta/migrations"
)

// querier — общее подмножество pgxpool.Pool и pgx.Tx, которым пользуются репозитории.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage — хранилище поверх пула PostgreSQL.
// Экземпляр, полученный внутри InTx, работает в рамках транзакции.
type Storage struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

// New создаёт новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{pool: pool, db: pool}, nil
}

// Migrate применяет встроенные миграции goose.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InTx открывает транзакцию, выполняет fn и фиксирует её при успехе.
// Ошибка или panic в fn откатывают транзакцию; panic пробрасывается дальше.
func (s *Storage) InTx(ctx context.Context, fn storage.TxFunc) (err error) {
	const op = "storage.postgres.InTx"

	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return
		}

		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("%s: commit: %w", op, cerr)
		}
	}()

	return fn(ctx, &Storage{pool: s.pool, db: tx, inTx: true})
}

// Ping проверяет соединение с БД.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close закрывает пул соединений. Внутри транзакции — no-op.
func (s *Storage) Close() {
	if s.inTx {
		return
	}

	s.pool.Close()
}

// isUniqueViolation распознаёт нарушение уникального индекса.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
