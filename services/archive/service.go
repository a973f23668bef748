// Package archive accepts normalized history submissions and board/rule
// snapshots for warfish games and answers the query surface over what has
// been stored: known games, submitters per game, stored snapshots and
// history completeness.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"warfish-archive/lib/warfish"
	"warfish-archive/services/archive/db"
	"warfish-archive/services/archive/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/archive")

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSubmitter = errors.New("invalid submitter id")
)

type Service struct {
	files  store.Store
	db     *sql.DB
	qry    *db.Queries
	client *warfish.Client
}

func NewService(database *sql.DB, files store.Store, client *warfish.Client) Service {
	return Service{
		files:  files,
		db:     database,
		qry:    db.New(database),
		client: client,
	}
}

// submitter ids become file names, so they must not traverse directories
func checkSubmitter(submitter string) error {
	if submitter == "" ||
		strings.ContainsAny(submitter, `/\`) ||
		strings.Contains(submitter, "..") {
		return ErrInvalidSubmitter
	}
	return nil
}

// SubmitHistory stores one submitter's raw history rows for a game and
// records the submission in the ledger. Re-submission overwrites; last
// write wins.
func (s Service) SubmitHistory(ctx context.Context, gameID int, submitter string, rows []warfish.RawHistoryRow) error {
	ctx, span := tracer.Start(ctx, "SubmitHistory")
	defer span.End()
	span.SetAttributes(
		attribute.Int("game_id", gameID),
		attribute.String("submitter", submitter),
		attribute.Int("rows", len(rows)),
	)

	err := checkSubmitter(submitter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = s.files.WriteHistory(gameID, submitter, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = s.qry.UpsertSubmission(ctx, db.UpsertSubmissionParams{
		GameID:      int64(gameID),
		Submitter:   submitter,
		Moves:       int64(len(rows)),
		SubmittedAt: time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// HasHistory reports whether a submitter has already archived a history for
// the game.
func (s Service) HasHistory(ctx context.Context, gameID int, submitter string) (bool, error) {
	ctx, span := tracer.Start(ctx, "HasHistory")
	defer span.End()

	err := checkSubmitter(submitter)
	if err != nil {
		return false, err
	}

	_, err = s.qry.GetSubmission(ctx, int64(gameID), submitter)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	return true, nil
}

// GetHistory returns one submitter's stored raw history rows.
func (s Service) GetHistory(ctx context.Context, gameID int, submitter string) ([]warfish.RawHistoryRow, error) {
	ctx, span := tracer.Start(ctx, "GetHistory")
	defer span.End()

	err := checkSubmitter(submitter)
	if err != nil {
		return nil, err
	}

	ok, err := s.HasHistory(ctx, gameID, submitter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	rows, err := s.files.ReadHistory(gameID, submitter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}

// ListGames returns every game id known to the archive, from either a
// snapshot or a history submission.
func (s Service) ListGames(ctx context.Context) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "ListGames")
	defer span.End()

	games, err := s.qry.ListGames(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return games, nil
}

// ListSubmitters returns who has archived a history for the game.
func (s Service) ListSubmitters(ctx context.Context, gameID int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ListSubmitters")
	defer span.End()

	submitters, err := s.qry.ListSubmitters(ctx, int64(gameID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return submitters, nil
}

// GetSnapshot returns the stored snapshot of a game.
func (s Service) GetSnapshot(ctx context.Context, gameID int) (*warfish.GameData, error) {
	ctx, span := tracer.Start(ctx, "GetSnapshot")
	defer span.End()

	ok, err := s.qry.HasSnapshot(ctx, int64(gameID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	data, err := s.files.ReadSnapshot(gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

// StoreSnapshot persists an already-assembled snapshot, replacing any
// previous one whole, and records it in the ledger.
func (s Service) StoreSnapshot(ctx context.Context, gameID int, data *warfish.GameData) error {
	ctx, span := tracer.Start(ctx, "StoreSnapshot")
	defer span.End()
	span.SetAttributes(attribute.Int("game_id", gameID))

	err := s.files.WriteSnapshot(gameID, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err = s.qry.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		GameID:    int64(gameID),
		FetchedAt: time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// TriggerSnapshot fetches a fresh snapshot from warfish and stores it.
// Nothing is stored when the fetch or assembly fails.
func (s Service) TriggerSnapshot(ctx context.Context, gameID, minUnits, territoriesPerUnit int) (*warfish.GameData, error) {
	ctx, span := tracer.Start(ctx, "TriggerSnapshot")
	defer span.End()
	span.SetAttributes(attribute.Int("game_id", gameID))

	data, err := s.client.GameData(ctx, gameID, minUnits, territoriesPerUnit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	err = s.StoreSnapshot(ctx, gameID, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
