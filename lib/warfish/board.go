package warfish

import (
	"strconv"
)

// greyColor is the index-0 sentinel for unassigned seats; it never comes
// from the feed.
var greyColor = Color{ColorID: 0, Red: 138, Green: 138, Blue: 138, Name: "Grey"}

// buildColors normalizes the raw color list, prepending the Grey sentinel
// so source colors land at their declared 1-based ids.
func buildColors(raw []RawRecord) ([]Color, error) {
	colors := []Color{greyColor}
	for _, rec := range raw {
		d := &fieldDecoder{rec: rec}
		c := Color{
			ColorID: d.reqInt("id"),
			Red:     d.reqInt("red"),
			Green:   d.reqInt("green"),
			Blue:    d.reqInt("blue"),
			Name:    d.str("name"),
		}
		if d.err != nil {
			return nil, d.err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// buildBoard converts the raw map, board and continent documents into a
// BoardMap with derived adjacency. One pass over the border list fills
// CanAttackIDs on the attacking side and WillDefendIDs on the defending
// side of every edge; a border referencing an unknown territory id on
// either side is skipped without error, since the feed sometimes ships
// borders for trimmed territories.
func buildBoard(details rawDetailsContent) (BoardMap, error) {
	m := BoardMap{
		FilledNumbers: details.Map.FilledNumbers == "1",
		FilledAreas:   details.Map.FillMode == "1",
		DisplayNames:  details.Map.DispCNames == "1",
		CircleMode:    details.Map.CircleMode == "1",
	}

	var err error
	m.NumberOfTerritories, err = reqAtoi(details.Map.NumTerritories, "map.numterritories")
	if err != nil {
		return BoardMap{}, err
	}
	m.Width, err = reqAtoi(details.Map.Width, "map.width")
	if err != nil {
		return BoardMap{}, err
	}
	m.Height, err = reqAtoi(details.Map.Height, "map.height")
	if err != nil {
		return BoardMap{}, err
	}
	m.BoardID, err = reqAtoi(details.Board.BoardID, "board.boardid")
	if err != nil {
		return BoardMap{}, err
	}

	byID := make(map[int]*Territory, len(details.Map.Content.Territory))
	for _, rec := range details.Map.Content.Territory {
		d := &fieldDecoder{rec: rec}
		t := &Territory{
			TerritoryID:   d.reqInt("id"),
			Name:          d.str("name"),
			X:             d.reqInt("x"),
			Y:             d.reqInt("y"),
			TextX:         d.reqInt("textx"),
			TextY:         d.reqInt("texty"),
			CanAttackIDs:  []int{},
			WillDefendIDs: []int{},
			PlayerID:      -1,
			Units:         0,
		}
		if d.err != nil {
			return BoardMap{}, d.err
		}
		m.Territories = append(m.Territories, t)
		byID[t.TerritoryID] = t
	}

	for _, border := range details.Board.Content.Border {
		aID, err := strconv.Atoi(border.A)
		if err != nil {
			continue
		}
		bID, err := strconv.Atoi(border.B)
		if err != nil {
			continue
		}
		a := byID[aID]
		b := byID[bID]
		if a == nil || b == nil {
			continue
		}
		a.CanAttackIDs = append(a.CanAttackIDs, b.TerritoryID)
		b.WillDefendIDs = append(b.WillDefendIDs, a.TerritoryID)
	}

	for _, rec := range details.Continents.Content.Continent {
		d := &fieldDecoder{rec: rec}
		c := Continent{
			ContinentID:  d.reqInt("id"),
			Name:         d.str("name"),
			Units:        d.reqInt("units"),
			TerritoryIDs: d.reqIntList("cids"),
		}
		if d.err != nil {
			return BoardMap{}, d.err
		}
		m.Continents = append(m.Continents, c)
	}

	return m, nil
}
