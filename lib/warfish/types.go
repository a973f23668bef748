// Package warfish scrapes warfish.net's REST and HTML endpoints and
// normalizes the string-typed, key-abbreviated documents they return into a
// typed domain model: a board graph, a player roster, a rule set and a move
// log.
package warfish

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Territory is a node in the board adjacency graph. CanAttackIDs holds the
// ids reachable via an outbound border edge, WillDefendIDs the ids with an
// inbound edge to this one. PlayerID is -1 while unowned; Units stays 0
// until a state feed supplies a garrison count.
type Territory struct {
	TerritoryID   int    `json:"territory_id"`
	Name          string `json:"name"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	TextX         int    `json:"text_x"`
	TextY         int    `json:"text_y"`
	CanAttackIDs  []int  `json:"can_attack_ids"`
	WillDefendIDs []int  `json:"will_defend_ids"`
	PlayerID      int    `json:"player_id"`
	Units         int    `json:"units"`
}

type Continent struct {
	ContinentID  int    `json:"continent_id"`
	Name         string `json:"name"`
	Units        int    `json:"units"`
	TerritoryIDs []int  `json:"territory_ids"`
}

// Color 0 is the synthetic "Grey" unassigned sentinel; source colors are
// keyed by their declared 1-based ids.
type Color struct {
	ColorID int    `json:"color_id"`
	Red     int    `json:"red"`
	Green   int    `json:"green"`
	Blue    int    `json:"blue"`
	Name    string `json:"name"`
}

type Player struct {
	Name          string `json:"name"`
	ProfileID     string `json:"profile_id"`
	Color         Color  `json:"color"`
	IsTurn        bool   `json:"is_turn"`
	IsAlive       bool   `json:"is_alive"`
	ReserveUnits  int    `json:"reserve_units"`
	SeatID        int    `json:"seat_id"`
	TerritoryIDs  []int  `json:"territory_ids"`
	TeamID        *int   `json:"team_id,omitempty"`
	NumberOfCards *int   `json:"number_of_cards,omitempty"`
}

type Cards struct {
	SetsTraded         int   `json:"sets_traded"`
	CardsInDiscardPile int   `json:"cards_in_discard_pile"`
	NextSets           []int `json:"next_sets"`
}

// Fog and dice variants, mapped from raw feed codes.
const (
	FogNone  = "no fog"
	FogLight = "light fog"
	FogHeavy = "heavy fog"

	DiceDamage = "damage dice"
	DiceVersus = "versus dice"
)

// UnitLimit is a per-turn attack/transfer limit. The feed's "-1" sentinel
// maps to Unbounded, which marshals as the JSON string "unbounded" since
// encoding/json cannot represent +Inf.
type UnitLimit float64

func Unbounded() UnitLimit { return UnitLimit(math.Inf(1)) }

func (l UnitLimit) IsUnbounded() bool { return math.IsInf(float64(l), 1) }

func (l UnitLimit) MarshalJSON() ([]byte, error) {
	if l.IsUnbounded() {
		return []byte(`"unbounded"`), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

func (l *UnitLimit) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"unbounded"`)) {
		*l = Unbounded()
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("unit limit: %w", err)
	}
	*l = UnitLimit(n)
	return nil
}

// RuleSet is the normalized rule configuration of a game. Pointer fields
// are conditionally present: their governing flag decides whether they are
// set, and serialization must omit them (never null-fill) when absent.
type RuleSet struct {
	MinUnits           int `json:"min_units"`
	TerritoriesPerUnit int `json:"territories_per_unit"`

	Fog       string `json:"fog"`
	CardScale string `json:"card_scale"`

	BlindAtOnce bool `json:"blind_at_once"`

	CanAbandonTerritories     bool  `json:"can_abandon_territories"`
	KeepPossessionOfAbandoned *bool `json:"keep_possession_of_abandoned,omitempty"`

	TeamGame          bool  `json:"team_game"`
	CanTeamTransfer   *bool `json:"can_team_transfer,omitempty"`
	CanTeamPlaceUnits *bool `json:"can_team_place_units,omitempty"`

	// damage dice (blind-at-once) or versus dice
	Dice             string `json:"dice"`
	AttackerDieGoal  *int   `json:"attacker_die_goal,omitempty"`
	DefenderDieGoal  *int   `json:"defender_die_goal,omitempty"`
	AllowPretransfer *bool  `json:"allow_pretransfer,omitempty"`

	AllowReturnToPlace   *bool      `json:"allow_return_to_place,omitempty"`
	AllowReturnToAttack  *bool      `json:"allow_return_to_attack,omitempty"`
	AttackLimitPerTurn   *UnitLimit `json:"attack_limit_per_turn,omitempty"`
	TransferLimitPerTurn *UnitLimit `json:"transfer_limit_per_turn,omitempty"`

	AttackerDieSides *int `json:"attacker_die_sides,omitempty"`
	DefenderDieSides *int `json:"defender_die_sides,omitempty"`

	CanKeepInReserve *int `json:"can_keep_in_reserve,omitempty"`
}

type BoardMap struct {
	NumberOfTerritories int          `json:"number_of_territories"`
	FilledNumbers       bool         `json:"filled_numbers"`
	FilledAreas         bool         `json:"filled_areas"`
	DisplayNames        bool         `json:"display_names"`
	CircleMode          bool         `json:"circle_mode"`
	Width               int          `json:"width"`
	Height              int          `json:"height"`
	BoardID             int          `json:"board_id"`
	Territories         []*Territory `json:"territories"`
	Continents          []Continent  `json:"continents"`
}

// Territory looks up a territory by id, or nil when the board has no such
// territory.
func (m *BoardMap) Territory(territoryID int) *Territory {
	for _, t := range m.Territories {
		if t.TerritoryID == territoryID {
			return t
		}
	}
	return nil
}

// GameData is the aggregate snapshot of one game, assembled once per fetch
// cycle from the details and state documents. It is never partially
// updated; a later fetch fully replaces it.
type GameData struct {
	GameID  int      `json:"game_id"`
	Cards   Cards    `json:"cards"`
	Players []Player `json:"players"`
	Rules   RuleSet  `json:"rules"`
	Map     BoardMap `json:"map"`
}

// Seat looks up a player by seat id, or nil when no player holds the seat.
func (d *GameData) Seat(seatID int) *Player {
	for i := range d.Players {
		if d.Players[i].SeatID == seatID {
			return &d.Players[i]
		}
	}
	return nil
}

// MoveEvent is one decoded entry of a game's move log. Every optional field
// is set iff the matching key exists on the raw record; the action kind
// never implies a field set on its own, since the feed varies which keys
// accompany which action in practice.
type MoveEvent struct {
	Action string    `json:"action"`
	MoveID int       `json:"move_id"`
	Time   time.Time `json:"time"`

	SeatID                 *int  `json:"seat_id,omitempty"`
	TerritoryID            *int  `json:"territory_id,omitempty"`
	Number                 *int  `json:"number,omitempty"`
	AttackDice             []int `json:"attack_dice,omitempty"`
	DefendDice             []int `json:"defend_dice,omitempty"`
	DefenderSeatID         *int  `json:"defender_seat_id,omitempty"`
	AttackerLoss           *int  `json:"attacker_loss,omitempty"`
	DefenderLoss           *int  `json:"defender_loss,omitempty"`
	BAOOrderNumber         *int  `json:"bao_order_number,omitempty"`
	ToTerritoryID          *int  `json:"to_territory_id,omitempty"`
	FromTerritoryID        *int  `json:"from_territory_id,omitempty"`
	EliminatedPlayerSeatID *int  `json:"eliminated_player_seat_id,omitempty"`
	TeamID                 *int  `json:"team_id,omitempty"`
	PlayerIDs              []int `json:"player_ids,omitempty"`
	CapturedCardIDs        []int `json:"captured_card_ids,omitempty"`
	CardID                 *int  `json:"card_id,omitempty"`
}

// RawHistoryRow is one row scraped from the interactive gamehistory HTML
// pages. It is what the browser extension submits to the archive; the
// server stores it as-is.
type RawHistoryRow struct {
	HistoryID      int    `json:"history_id"`
	TS             int64  `json:"ts"`
	Player         string `json:"player,omitempty"`
	SeatID         *int   `json:"seat_id,omitempty"`
	Action         string `json:"action,omitempty"`
	Opponent       string `json:"opponent,omitempty"`
	OpponentSeatID *int   `json:"opponent_seat_id,omitempty"`
	Rest           string `json:"rest,omitempty"`
}
