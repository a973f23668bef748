package warfish

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const stateFixture = `{
	"stat": "ok",
	"_content": {
		"cards": {
			"cardsetstraded": "2",
			"numdiscard": "4",
			"nextcardsworth": "10,12,15",
			"_content": {
				"player": [
					{"id": "0", "num": "3"}
				]
			}
		},
		"players": {
			"_content": {
				"player": [
					{"id": "0", "name": "alice", "profileid": "100", "colorid": "1", "teamid": "-1", "isturn": "1", "active": "1", "units": "4"},
					{"id": "1", "name": "bob", "profileid": "101", "colorid": "2", "teamid": "2", "isturn": "0", "active": "0", "units": "0"}
				]
			}
		}
	}
}`

func decodeStateFixture(t *testing.T) rawState {
	t.Helper()
	var state rawState
	err := json.Unmarshal([]byte(stateFixture), &state)
	require.NoError(t, err)
	return state
}

func TestBuildRosterJoin(t *testing.T) {
	details := decodeDetailsFixture(t)
	state := decodeStateFixture(t)

	colors, err := buildColors(details.Content.Map.Content.Color)
	require.NoError(t, err)

	players, err := buildRoster(
		state.Content.Players.Content.Player,
		colors,
		state.Content.Cards.Content.Player,
	)
	require.NoError(t, err)
	require.Len(t, players, 2)

	alice := players[0]
	require.Equal(t, "alice", alice.Name)
	require.Equal(t, "100", alice.ProfileID)
	require.Equal(t, 0, alice.SeatID)
	require.Equal(t, "Red", alice.Color.Name)
	require.True(t, alice.IsTurn)
	require.True(t, alice.IsAlive)
	require.Equal(t, 4, alice.ReserveUnits)
	// teamid "-1" means no team
	require.Nil(t, alice.TeamID)
	require.Equal(t, intPtr(3), alice.NumberOfCards)

	bob := players[1]
	require.Equal(t, "bob", bob.Name)
	require.Equal(t, "Blue", bob.Color.Name)
	require.False(t, bob.IsAlive)
	require.Equal(t, intPtr(2), bob.TeamID)
	// no card record for seat 1
	require.Nil(t, bob.NumberOfCards)
}

func TestBuildRosterRejectsOutOfRangeColor(t *testing.T) {
	state := decodeStateFixture(t)
	state.Content.Players.Content.Player[0]["colorid"] = "5"

	_, err := buildRoster(
		state.Content.Players.Content.Player,
		[]Color{{ColorID: 0, Name: "Grey"}},
		nil,
	)
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestBuildCards(t *testing.T) {
	state := decodeStateFixture(t)

	cards, err := buildCards(state.Content.Cards)
	require.NoError(t, err)
	require.Equal(t, Cards{
		SetsTraded:         2,
		CardsInDiscardPile: 4,
		NextSets:           []int{10, 12, 15},
	}, cards)
}

func TestGameDataSnapshot(t *testing.T) {
	client := newTestClient(t, restHandler(t, map[string]http.HandlerFunc{
		"warfish.tables.getDetails": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "42", r.URL.Query().Get("gid"))
			w.Write([]byte(detailsFixture))
		},
		"warfish.tables.getState": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "42", r.URL.Query().Get("gid"))
			w.Write([]byte(stateFixture))
		},
	}))

	data, err := client.GameData(context.Background(), 42, 3, 4)
	require.NoError(t, err)

	require.Equal(t, 42, data.GameID)
	require.Equal(t, 2, data.Cards.SetsTraded)
	require.Len(t, data.Players, 2)
	require.Len(t, data.Map.Territories, 3)
	require.Equal(t, 3, data.Rules.MinUnits)
	require.Equal(t, 4, data.Rules.TerritoriesPerUnit)

	alice := data.Seat(0)
	require.NotNil(t, alice)
	require.Equal(t, "alice", alice.Name)
	require.Nil(t, data.Seat(9))

	// the snapshot round-trips through JSON unchanged
	serialized, err := json.Marshal(data)
	require.NoError(t, err)
	var restored GameData
	require.NoError(t, json.Unmarshal(serialized, &restored))
	require.Empty(t, cmp.Diff(*data, restored))

	// conditionally absent fields are omitted, never null
	var generic map[string]any
	require.NoError(t, json.Unmarshal(serialized, &generic))
	rules := generic["rules"].(map[string]any)
	for _, key := range []string{"attacker_die_goal", "defender_die_goal", "allow_pretransfer", "can_team_transfer"} {
		_, present := rules[key]
		require.False(t, present, "rules key %q should be omitted", key)
	}
	playersJSON := generic["players"].([]any)
	_, present := playersJSON[0].(map[string]any)["team_id"]
	require.False(t, present, "team_id should be omitted for an unteamed seat")
}

func TestGameDataAtomicFailure(t *testing.T) {
	client := newTestClient(t, restHandler(t, map[string]http.HandlerFunc{
		"warfish.tables.getDetails": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(detailsFixture))
		},
		"warfish.tables.getState": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"stat": "ok", "_content": {"cards": {"cardsetstraded": "oops"}}}`))
		},
	}))

	data, err := client.GameData(context.Background(), 42, 3, 3)
	require.ErrorIs(t, err, ErrUnexpectedShape)
	require.Nil(t, data)
}
