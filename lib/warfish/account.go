package warfish

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"warfish-archive/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ProfileID scrapes the authenticated account page for the external profile
// identity of the session's user. The result is latched for the lifetime of
// the process. A page without the profile link usually means the SESSID is
// missing or expired.
func (c *Client) ProfileID(ctx context.Context) (string, error) {
	return c.profileIDs.get("account", func() (string, error) {
		doc, err := c.getHTML(ctx, "/settings/account", nil)
		if err != nil {
			return "", err
		}

		pid := ""
		doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if htmlutil.CleanText(a.Text()) != "View your profile" {
				return true
			}
			pid = htmlutil.QueryParam(a.AttrOr("href", ""), "pid")
			return false
		})
		if pid == "" {
			return "", fmt.Errorf("%w: profile link not found on account page", ErrUnexpectedShape)
		}
		return pid, nil
	})
}

// GameListing is one entry of the site's game list page.
type GameListing struct {
	GameID int    `json:"game_id"`
	Name   string `json:"name"`
}

// FinishedGames scrapes the first page of the finished-games list of the
// session's user. Anchors that don't point at a game page are ignored; a
// game id appearing twice keeps the last name seen, in first-seen order.
func (c *Client) FinishedGames(ctx context.Context) ([]GameListing, error) {
	query := url.Values{}
	query.Set("f", "2")
	query.Set("pp", "25")
	doc, err := c.getHTML(ctx, "/play/gamelist", query)
	if err != nil {
		return nil, err
	}

	var games []GameListing
	index := map[int]int{}
	for _, anchor := range htmlutil.GetAnchors(doc.Find("td nobr a")) {
		link, err := url.Parse(anchor.Href)
		if err != nil || link.Path != "/game" {
			continue
		}
		gid, err := strconv.Atoi(link.Query().Get("gid"))
		if err != nil {
			continue
		}
		if at, ok := index[gid]; ok {
			games[at].Name = anchor.Name
			continue
		}
		index[gid] = len(games)
		games = append(games, GameListing{GameID: gid, Name: anchor.Name})
	}

	return games, nil
}
