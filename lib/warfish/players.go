package warfish

import (
	"fmt"
)

// buildRoster converts raw per-seat records into Players, in source order
// (seat assignment order, not necessarily numeric seat-id order). Card
// counts are joined by raw seat-id string equality against the card state's
// per-seat records; a seat with no matching card record simply omits the
// field. The feed's "-1" team id means no team.
func buildRoster(rawPlayers []RawRecord, colors []Color, rawCardCounts []RawRecord) ([]Player, error) {
	players := make([]Player, 0, len(rawPlayers))
	for _, rec := range rawPlayers {
		d := &fieldDecoder{rec: rec}
		p := Player{
			Name:         d.str("name"),
			ProfileID:    d.str("profileid"),
			IsTurn:       d.flag("isturn"),
			IsAlive:      d.flag("active"),
			ReserveUnits: d.reqInt("units"),
			SeatID:       d.reqInt("id"),
			TerritoryIDs: []int{},
		}

		colorID := d.reqInt("colorid")
		if d.err != nil {
			return nil, d.err
		}
		if colorID < 0 || colorID >= len(colors) {
			return nil, fmt.Errorf("%w: seat %d references color %d of %d",
				ErrUnexpectedShape, p.SeatID, colorID, len(colors))
		}
		p.Color = colors[colorID]

		if rec["teamid"] != "-1" {
			p.TeamID = d.optInt("teamid")
		}

		for _, cardRec := range rawCardCounts {
			if cardRec["id"] != rec["id"] {
				continue
			}
			cd := &fieldDecoder{rec: cardRec}
			p.NumberOfCards = cd.optInt("num")
			if cd.err != nil {
				return nil, cd.err
			}
			break
		}

		if d.err != nil {
			return nil, d.err
		}
		players = append(players, p)
	}
	return players, nil
}

// buildCards normalizes the deck-state counters.
func buildCards(raw rawCards) (Cards, error) {
	d := &fieldDecoder{rec: RawRecord{
		"cardsetstraded": raw.CardSetsTraded,
		"numdiscard":     raw.NumDiscard,
		"nextcardsworth": raw.NextCardsWorth,
	}}
	c := Cards{
		SetsTraded:         d.reqInt("cardsetstraded"),
		CardsInDiscardPile: d.reqInt("numdiscard"),
		NextSets:           d.reqIntList("nextcardsworth"),
	}
	return c, d.err
}
