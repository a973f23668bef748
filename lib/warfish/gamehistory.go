package warfish

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"warfish-archive/lib/htmlutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

// interactiveHistoryPageSize is the row count of one gamehistory HTML page.
const interactiveHistoryPageSize = 25

// Progress receives incremental (done, total) counts while an interactive
// history fetch runs, one call per decoded row plus a final (total, total).
type Progress func(done, total int)

// every row leads with "<id> <MM/DD hh:mm:ss>", optionally followed by a
// fog marker or the "Game ..." system prefix instead of a player anchor
var histRowRe = regexp.MustCompile(`^(\d+) (\d\d/\d\d \d\d:\d\d:\d\d) (--- fog ---|Game)?`)

// the page omits the year from row timestamps
const histRowYear = 2020

// RawHistory scrapes a game's interactive history pages in 25-row steps,
// reporting progress after each row. There is no cancellation beyond the
// context: once started the chain runs to completion or failure. Rows are
// returned in page order; a short page terminates the walk.
func (c *Client) RawHistory(ctx context.Context, gameID int, progress Progress) ([]RawHistoryRow, error) {
	ctx, span := tracer.Start(ctx, "RawHistory")
	defer span.End()
	span.SetAttributes(attribute.Int("game_id", gameID))

	if progress == nil {
		progress = func(done, total int) {}
	}

	var rows []RawHistoryRow
	total := 0
	for start := 0; ; start += interactiveHistoryPageSize {
		page, pageTotal, err := c.rawHistoryPage(ctx, gameID, start, progress)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		total = pageTotal
		rows = append(rows, page...)
		if len(page) < interactiveHistoryPageSize {
			break
		}
	}
	progress(total, total)

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

func (c *Client) rawHistoryPage(ctx context.Context, gameID, start int, progress Progress) ([]RawHistoryRow, int, error) {
	query := url.Values{}
	query.Set("gid", fmt.Sprint(gameID))
	query.Set("start", fmt.Sprint(start))
	query.Set("end", fmt.Sprint(start+interactiveHistoryPageSize))
	doc, err := c.getHTML(ctx, "/play/gamehistory", query)
	if err != nil {
		return nil, 0, err
	}

	counter := doc.Find("center center").First()
	if len(counter.Nodes) == 0 || counter.Nodes[0].FirstChild == nil {
		return nil, 0, fmt.Errorf("%w: gamehistory page has no move counter", ErrUnexpectedShape)
	}
	totalStr := regexp.MustCompile(`\d+`).FindString(htmlutil.GetText(counter.Nodes[0].FirstChild))
	total, err := strconv.Atoi(totalStr)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: gamehistory move counter %q", ErrUnexpectedShape, totalStr)
	}

	var rows []RawHistoryRow
	for _, node := range doc.Find("table table div nobr").Nodes {
		progress(start+len(rows), total)
		row, err := decodeHistoryRow(node)
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// decodeHistoryRow parses one `<nobr>` history row. The leading text node
// carries "<id> <timestamp>"; fog and system rows stop there. Player rows
// follow with the player anchor, the action text, and either plain trailing
// text or an opponent anchor for attack/eliminate/capture rows.
func decodeHistoryRow(node *html.Node) (RawHistoryRow, error) {
	kids := childNodes(node)
	if len(kids) == 0 || kids[0].Type != html.TextNode {
		return RawHistoryRow{}, fmt.Errorf("%w: history row has no leading text", ErrUnexpectedShape)
	}

	match := histRowRe.FindStringSubmatch(kids[0].Data)
	if match == nil {
		return RawHistoryRow{}, fmt.Errorf("%w: history row %q", ErrUnexpectedShape, kids[0].Data)
	}

	historyID, err := strconv.Atoi(match[1])
	if err != nil {
		return RawHistoryRow{}, fmt.Errorf("%w: history row id %q", ErrUnexpectedShape, match[1])
	}
	ts, err := time.Parse("01/02 15:04:05", match[2])
	if err != nil {
		return RawHistoryRow{}, fmt.Errorf("%w: history row timestamp %q", ErrUnexpectedShape, match[2])
	}
	ts = ts.AddDate(histRowYear, 0, 0)

	row := RawHistoryRow{
		HistoryID: historyID,
		TS:        ts.UnixMilli(),
	}
	// fog and "Game ..." rows carry no player or action
	if match[3] != "" {
		return row, nil
	}
	if len(kids) < 2 {
		return row, nil
	}

	row.Player = htmlutil.CleanText(htmlutil.GetText(kids[1]))
	if seat := anchorQueryParam(kids[1], "seat"); seat != "" {
		seatID, err := strconv.Atoi(seat)
		if err != nil {
			return RawHistoryRow{}, fmt.Errorf("%w: history row seat %q", ErrUnexpectedShape, seat)
		}
		row.SeatID = &seatID
		if len(kids) > 3 {
			row.Action = htmlutil.CleanText(htmlutil.GetText(kids[3]))
		}
	}

	restIndex := 4
	if row.Action == "attacks" || row.Action == "eliminates" || row.Action == "captures" {
		if len(kids) > 4 && kids[4].Type == html.TextNode && strings.HasPrefix(kids[4].Data, " Neutral") {
			row.Opponent = "Neutral"
			neutralSeat := -1
			row.OpponentSeatID = &neutralSeat
			kids[4].Data = kids[4].Data[9:]
		} else if len(kids) > 5 {
			row.Opponent = htmlutil.CleanText(htmlutil.GetText(kids[5]))
			if seat := anchorQueryParam(kids[5], "seat"); seat != "" {
				opponentSeat, err := strconv.Atoi(seat)
				if err != nil {
					return RawHistoryRow{}, fmt.Errorf("%w: history row opponent seat %q", ErrUnexpectedShape, seat)
				}
				row.OpponentSeatID = &opponentSeat
			}
			if row.Action == "attacks" && (row.OpponentSeatID == nil || *row.OpponentSeatID != -1) {
				restIndex = 6
			}
		}
	}

	if len(kids) > restIndex && kids[restIndex].Type == html.TextNode {
		row.Rest = kids[restIndex].Data
	}
	return row, nil
}

// anchorQueryParam reads a query parameter off an anchor node's href, or ""
// when the node is not an anchor or lacks the parameter.
func anchorQueryParam(n *html.Node, name string) string {
	if n.Type != html.ElementNode || n.Data != "a" {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return htmlutil.QueryParam(attr.Val, name)
		}
	}
	return ""
}
