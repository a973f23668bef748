package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertSubmission = `
INSERT INTO submissions (game_id, submitter, moves, submitted_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (game_id, submitter) DO UPDATE
SET moves = excluded.moves, submitted_at = excluded.submitted_at
`

type UpsertSubmissionParams struct {
	GameID      int64
	Submitter   string
	Moves       int64
	SubmittedAt int64
}

func (q *Queries) UpsertSubmission(ctx context.Context, arg UpsertSubmissionParams) error {
	_, err := q.db.ExecContext(ctx, upsertSubmission,
		arg.GameID, arg.Submitter, arg.Moves, arg.SubmittedAt)
	return err
}

const upsertSnapshot = `
INSERT INTO snapshots (game_id, fetched_at)
VALUES (?, ?)
ON CONFLICT (game_id) DO UPDATE SET fetched_at = excluded.fetched_at
`

type UpsertSnapshotParams struct {
	GameID    int64
	FetchedAt int64
}

func (q *Queries) UpsertSnapshot(ctx context.Context, arg UpsertSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshot, arg.GameID, arg.FetchedAt)
	return err
}

const listGames = `
SELECT game_id FROM submissions
UNION
SELECT game_id FROM snapshots
ORDER BY game_id
`

func (q *Queries) ListGames(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var gameID int64
		if err := rows.Scan(&gameID); err != nil {
			return nil, err
		}
		items = append(items, gameID)
	}
	return items, rows.Err()
}

const listSubmitters = `
SELECT submitter FROM submissions
WHERE game_id = ?
ORDER BY submitter
`

func (q *Queries) ListSubmitters(ctx context.Context, gameID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listSubmitters, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var submitter string
		if err := rows.Scan(&submitter); err != nil {
			return nil, err
		}
		items = append(items, submitter)
	}
	return items, rows.Err()
}

const getSubmission = `
SELECT moves, submitted_at FROM submissions
WHERE game_id = ? AND submitter = ?
`

type GetSubmissionRow struct {
	Moves       int64
	SubmittedAt int64
}

func (q *Queries) GetSubmission(ctx context.Context, gameID int64, submitter string) (GetSubmissionRow, error) {
	row := q.db.QueryRowContext(ctx, getSubmission, gameID, submitter)
	var out GetSubmissionRow
	err := row.Scan(&out.Moves, &out.SubmittedAt)
	return out, err
}

const hasSnapshot = `
SELECT COUNT(*) FROM snapshots WHERE game_id = ?
`

func (q *Queries) HasSnapshot(ctx context.Context, gameID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, hasSnapshot, gameID)
	var count int64
	err := row.Scan(&count)
	return count > 0, err
}
