package warfish

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// bulkHistoryPageSize is the page size of the REST history feed.
const bulkHistoryPageSize = 1500

// DecodeMove turns one raw move record into a typed event. The action code
// must be known; every optional field is set iff its raw key exists on the
// record. Do not infer field sets from the action kind: the feed itself
// varies which keys accompany which action.
func DecodeMove(rec RawRecord) (MoveEvent, error) {
	code, ok := rec["a"]
	if !ok {
		return MoveEvent{}, fmt.Errorf("%w: move record missing %q", ErrUnexpectedShape, "a")
	}
	action, err := ActionName(code)
	if err != nil {
		return MoveEvent{}, err
	}

	d := &fieldDecoder{rec: rec}
	ev := MoveEvent{
		Action: action,
		MoveID: d.reqInt("id"),
		Time:   time.Unix(int64(d.reqInt("t")), 0).UTC(),
	}

	ev.SeatID = d.optInt("s")
	ev.TerritoryID = d.optInt("cid")
	ev.Number = d.optInt("num")
	ev.AttackDice = d.optIntList("ad")
	ev.DefendDice = d.optIntList("dd")
	ev.DefenderSeatID = d.optInt("ds")
	ev.AttackerLoss = d.optInt("al")
	ev.DefenderLoss = d.optInt("dl")
	ev.BAOOrderNumber = d.optInt("oid")
	ev.ToTerritoryID = d.optInt("tcid")
	ev.FromTerritoryID = d.optInt("fcid")
	ev.EliminatedPlayerSeatID = d.optInt("es")
	ev.TeamID = d.optInt("tid")
	ev.PlayerIDs = d.optIntList("slist")
	ev.CapturedCardIDs = d.optIntList("clist")
	ev.CardID = d.optInt("cardid")

	if d.err != nil {
		return MoveEvent{}, d.err
	}
	return ev, nil
}

// History fetches and decodes a game's full move log. The result is cached
// per game id: the first success is latched and concurrent calls for the
// same game share one upstream fetch chain.
func (c *Client) History(ctx context.Context, gameID int) ([]MoveEvent, error) {
	return c.histories.get(gameID, func() ([]MoveEvent, error) {
		return c.fetchHistory(ctx, gameID)
	})
}

// fetchHistory walks the paginated feed from offset 0 until the reported
// total is covered, accumulating in request order under the
// `start+num < total` continuation rule. Any page failure aborts the whole
// chain with no partial result.
func (c *Client) fetchHistory(ctx context.Context, gameID int) ([]MoveEvent, error) {
	ctx, span := tracer.Start(ctx, "fetchHistory")
	defer span.End()
	span.SetAttributes(attribute.Int("game_id", gameID))

	num := c.historyPageSize
	var events []MoveEvent
	for start := 0; ; start += num {
		page, total, err := c.historyPage(ctx, gameID, start, num)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		for _, rec := range page {
			ev, err := DecodeMove(rec)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			events = append(events, ev)
		}
		if start+num >= total {
			break
		}
	}

	span.SetAttributes(attribute.Int("moves", len(events)))
	return events, nil
}

// historyPage requests one page of the move log and returns its records
// plus the feed's declared total.
func (c *Client) historyPage(ctx context.Context, gameID, start, num int) ([]RawRecord, int, error) {
	query := url.Values{}
	query.Set("gid", fmt.Sprint(gameID))
	query.Set("start", fmt.Sprint(start))
	query.Set("num", fmt.Sprint(num))

	var doc rawHistory
	err := c.getJSON(ctx, "warfish.tables.getHistory", query, &doc)
	if err != nil {
		return nil, 0, err
	}

	total, err := reqAtoi(doc.Content.MoveLog.Total, "movelog.total")
	if err != nil {
		return nil, 0, err
	}
	return doc.Content.MoveLog.Content.M, total, nil
}
