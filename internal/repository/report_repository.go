package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stocksync/internal/model"
)

const createSyncRuns = `
CREATE TABLE IF NOT EXISTS sync_runs (
	run_id      uuid        NOT NULL,
	marketplace text        NOT NULL,
	account     text        NOT NULL,
	started_at  timestamptz NOT NULL,
	finished_at timestamptz NOT NULL,
	stocks      integer     NOT NULL,
	non_empty   integer     NOT NULL,
	prices      integer     NOT NULL,
	error_kind  text        NOT NULL DEFAULT '',
	error       text        NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, marketplace, account)
)`

// ReportRepository appends run reports to the sync_runs table.
type ReportRepository struct {
	DB *pgxpool.Pool
}

func (r *ReportRepository) Migrate(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, createSyncRuns)
	return err
}

func (r *ReportRepository) Record(ctx context.Context, rep model.RunReport) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sync_runs
		(run_id, marketplace, account, started_at, finished_at, stocks, non_empty, prices, error_kind, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rep.RunID, rep.Marketplace, rep.Account, rep.StartedAt, rep.FinishedAt,
		rep.Stocks, rep.NonEmpty, rep.Prices, rep.ErrorKind, rep.Error)
	return err
}

// Last returns the most recent report of an account, or false when the
// account never ran.
func (r *ReportRepository) Last(ctx context.Context, marketplace, account string) (model.RunReport, bool, error) {
	var rep model.RunReport
	err := r.DB.QueryRow(ctx, `
		SELECT run_id::text, marketplace, account, started_at, finished_at, stocks, non_empty, prices, error_kind, error
		FROM sync_runs
		WHERE marketplace = $1 AND account = $2
		ORDER BY started_at DESC
		LIMIT 1
	`, marketplace, account).Scan(&rep.RunID, &rep.Marketplace, &rep.Account, &rep.StartedAt, &rep.FinishedAt,
		&rep.Stocks, &rep.NonEmpty, &rep.Prices, &rep.ErrorKind, &rep.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return rep, false, nil
	}
	if err != nil {
		return rep, false, err
	}
	return rep, true, nil
}
