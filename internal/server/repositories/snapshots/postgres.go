package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/dbx"
	"github.com/dmitrijs2005/litmgmt/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// keepSnapshots is how many rows survive a write; older ones are pruned.
const keepSnapshots = 10

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// PostgresRepository keeps every snapshot as a row and reads the newest one.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects through the pgx stdlib driver and checks the
// connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, r.db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Read(ctx context.Context) ([]byte, error) {
	query :=
		`SELECT data FROM snapshots
		 ORDER BY id DESC
		 LIMIT 1
		 `

	var data []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshots table: %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrIOFailure, err)
	}
	return data, nil
}

func (r *PostgresRepository) Write(ctx context.Context, data []byte) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshots (data) VALUES ($1)`, data); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`DELETE FROM snapshots
			 WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT $1)
			 `, keepSnapshots)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrIOFailure, err)
	}
	return nil
}
