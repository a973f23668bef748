package warfish

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GameData fetches the details and state documents of a game concurrently
// and assembles them into one immutable snapshot. Assembly is atomic: if
// either document is missing or malformed the whole call fails and nothing
// partial is returned.
func (c *Client) GameData(ctx context.Context, gameID, minUnits, territoriesPerUnit int) (*GameData, error) {
	ctx, span := tracer.Start(ctx, "GameData")
	defer span.End()
	span.SetAttributes(attribute.Int("game_id", gameID))

	var details rawDetails
	var state rawState
	var detailsErr, stateErr error

	// the two fetches have no ordering dependency
	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		query := url.Values{}
		query.Set("gid", fmt.Sprint(gameID))
		query.Set("sections", "board,rules,map,continents")
		detailsErr = c.getJSON(ctx, "warfish.tables.getDetails", query, &details)
	}()
	go func() {
		defer wg.Done()
		query := url.Values{}
		query.Set("gid", fmt.Sprint(gameID))
		query.Set("sections", "cards,board,details,players")
		stateErr = c.getJSON(ctx, "warfish.tables.getState", query, &state)
	}()
	wg.Wait()

	for _, err := range []error{detailsErr, stateErr} {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	data, err := assemble(gameID, minUnits, territoriesPerUnit, details, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

// assemble runs the board, rules and roster builders over the two raw
// documents and joins the results into the aggregate.
func assemble(gameID, minUnits, territoriesPerUnit int, details rawDetails, state rawState) (*GameData, error) {
	cards, err := buildCards(state.Content.Cards)
	if err != nil {
		return nil, err
	}

	colors, err := buildColors(details.Content.Map.Content.Color)
	if err != nil {
		return nil, err
	}

	players, err := buildRoster(
		state.Content.Players.Content.Player,
		colors,
		state.Content.Cards.Content.Player,
	)
	if err != nil {
		return nil, err
	}

	rules, err := NormalizeRules(details.Content.Rules, minUnits, territoriesPerUnit)
	if err != nil {
		return nil, err
	}

	board, err := buildBoard(details.Content)
	if err != nil {
		return nil, err
	}

	return &GameData{
		GameID:  gameID,
		Cards:   cards,
		Players: players,
		Rules:   rules,
		Map:     board,
	}, nil
}
