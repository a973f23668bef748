package archive

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
	"warfish-archive/lib/testutil"
	"warfish-archive/lib/warfish"
	"warfish-archive/services/archive/db"
	"warfish-archive/services/archive/store"

	"github.com/stretchr/testify/require"
)

const testDetails = `{
	"stat": "ok",
	"_content": {
		"board": {
			"boardid": "8",
			"_content": {
				"border": [
					{"a": "1", "b": "2"},
					{"a": "2", "b": "1"}
				]
			}
		},
		"rules": {
			"fog": "0",
			"cardscale": "0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0",
			"baoplay": "0",
			"allowabandon": "0",
			"teamgame": "0",
			"returntoplace": "1",
			"returntoattack": "0",
			"numattacks": "-1",
			"numtransfers": "-1",
			"adie": "6",
			"ddie": "6",
			"numreserves": "0"
		},
		"map": {
			"numterritories": "2",
			"fillednumbers": "0",
			"fillmode": "1",
			"dispcnames": "1",
			"circlemode": "0",
			"width": "100",
			"height": "100",
			"_content": {
				"territory": [
					{"id": "1", "name": "Alpha", "x": "1", "y": "1", "textx": "1", "texty": "1"},
					{"id": "2", "name": "Beta", "x": "2", "y": "2", "textx": "2", "texty": "2"}
				],
				"color": [
					{"id": "1", "red": "255", "green": "0", "blue": "0", "name": "Red"}
				]
			}
		},
		"continents": {
			"_content": {
				"continent": [
					{"id": "1", "name": "Core", "units": "2", "cids": "1,2"}
				]
			}
		}
	}
}`

const testState = `{
	"stat": "ok",
	"_content": {
		"cards": {
			"cardsetstraded": "0",
			"numdiscard": "0",
			"nextcardsworth": "4,6,8",
			"_content": {"player": []}
		},
		"players": {
			"_content": {
				"player": [
					{"id": "0", "name": "alice", "profileid": "100", "colorid": "1", "teamid": "-1", "isturn": "1", "active": "1", "units": "3"}
				]
			}
		}
	}
}`

func setupArchive(t *testing.T, upstream http.Handler) Service {
	t.Helper()

	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "archive",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	var client *warfish.Client
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)
		client = warfish.NewClient(server.URL)
	}

	return NewService(result.DB, store.New(t.TempDir()), client)
}

func warfishStub(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/rest", func(w http.ResponseWriter, r *http.Request) {
		switch method := r.URL.Query().Get("_method"); method {
		case "warfish.tables.getDetails":
			w.Write([]byte(testDetails))
		case "warfish.tables.getState":
			w.Write([]byte(testState))
		default:
			t.Errorf("unexpected REST method %q", method)
			http.NotFound(w, r)
		}
	})
	return mux
}

func sampleRows() []warfish.RawHistoryRow {
	seat := 0
	return []warfish.RawHistoryRow{
		{HistoryID: 1, TS: 1577934245000, Player: "alice", SeatID: &seat, Action: "places", Rest: " 3 units on Alpha"},
		{HistoryID: 2, TS: 1577934246000},
	}
}

func TestSubmitAndQueryHistory(t *testing.T) {
	ctx := context.Background()
	svc := setupArchive(t, nil)

	err := svc.SubmitHistory(ctx, 42, "alice", sampleRows())
	require.NoError(t, err)

	ok, err := svc.HasHistory(ctx, 42, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.HasHistory(ctx, 42, "bob")
	require.NoError(t, err)
	require.False(t, ok)

	rows, err := svc.GetHistory(ctx, 42, "alice")
	require.NoError(t, err)
	require.Equal(t, sampleRows(), rows)

	_, err = svc.GetHistory(ctx, 42, "bob")
	require.ErrorIs(t, err, ErrNotFound)

	games, err := svc.ListGames(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{42}, games)

	submitters, err := svc.ListSubmitters(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, submitters)

	// resubmission replaces the stored history whole
	err = svc.SubmitHistory(ctx, 42, "alice", sampleRows()[:1])
	require.NoError(t, err)
	rows, err = svc.GetHistory(ctx, 42, "alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	submitters, err = svc.ListSubmitters(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, submitters)
}

func TestSubmitterValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupArchive(t, nil)

	for _, submitter := range []string{"", "a/b", `a\b`, "..", "a..b"} {
		err := svc.SubmitHistory(ctx, 42, submitter, sampleRows())
		require.ErrorIs(t, err, ErrInvalidSubmitter, "submitter %q", submitter)

		_, err = svc.GetHistory(ctx, 42, submitter)
		require.ErrorIs(t, err, ErrInvalidSubmitter, "submitter %q", submitter)
	}
}

func TestTriggerAndGetSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := setupArchive(t, warfishStub(t))

	_, err := svc.GetSnapshot(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	data, err := svc.TriggerSnapshot(ctx, 42, 3, 3)
	require.NoError(t, err)
	require.Equal(t, 42, data.GameID)
	require.Len(t, data.Players, 1)
	require.Equal(t, "alice", data.Players[0].Name)

	stored, err := svc.GetSnapshot(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, data, stored)

	games, err := svc.ListGames(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{42}, games)

	// a snapshot alone means no submitters yet
	submitters, err := svc.ListSubmitters(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, submitters)
}

func TestStoreSnapshotDirectly(t *testing.T) {
	ctx := context.Background()
	svc := setupArchive(t, nil)

	err := svc.StoreSnapshot(ctx, 7, &warfish.GameData{GameID: 7})
	require.NoError(t, err)

	stored, err := svc.GetSnapshot(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 7, stored.GameID)

	games, err := svc.ListGames(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{7}, games)
}

func TestTriggerSnapshotStoresNothingOnFailure(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/rest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	svc := setupArchive(t, mux)

	_, err := svc.TriggerSnapshot(ctx, 42, 3, 3)
	require.Error(t, err)

	_, err = svc.GetSnapshot(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	games, err := svc.ListGames(ctx)
	require.NoError(t, err)
	require.Empty(t, games)
}

func TestHistoryFilesOnDisk(t *testing.T) {
	ctx := context.Background()

	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "archive",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	root := t.TempDir()
	svc := NewService(result.DB, store.New(root), nil)

	rndm := rand.New(rand.NewSource(time.Now().UnixNano()))
	submitter := testutil.RandomString(rndm, 8)

	err := svc.SubmitHistory(ctx, 42, submitter, sampleRows())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "42", submitter+".json"))
	require.NoError(t, err)
}
