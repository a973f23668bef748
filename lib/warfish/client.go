package warfish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"warfish-archive/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/warfish")

// DefaultBaseURL is the warfish site root every endpoint hangs off of.
const DefaultBaseURL = "http://warfish.net/war"

// Client talks to warfish.net. All endpoints work anonymously for public
// games; fogged or private games additionally need the SESSID cookie of an
// authenticated browser session (see WithSessionID).
type Client struct {
	http *resty.Client

	histories  *cacheStore[int, []MoveEvent]
	rules      *cacheStore[int, RawRecord]
	profileIDs *cacheStore[string, string]

	historyPageSize int
}

type Option func(*Client)

// WithSessionID attaches the SESSID cookie of an authenticated session.
func WithSessionID(sessid string) Option {
	return func(c *Client) {
		if sessid == "" {
			return
		}
		c.http.SetCookie(&http.Cookie{Name: "SESSID", Value: sessid})
	}
}

// NewClient builds a Client against baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := resty.New()
	hc.SetBaseURL(baseURL)
	telemetry.InstrumentResty(hc, "lib/warfish/http")

	c := &Client{
		http:            hc,
		histories:       newCacheStore[int, []MoveEvent](),
		rules:           newCacheStore[int, RawRecord](),
		profileIDs:      newCacheStore[string, string](),
		historyPageSize: bulkHistoryPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON calls one `warfish.tables.*` method of the REST endpoint and
// unmarshals the response document.
func (c *Client) getJSON(ctx context.Context, method string, query url.Values, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("_method", method).
		SetQueryParam("_format", "json")
	for key := range query {
		req.SetQueryParam(key, query.Get(key))
	}

	res, err := req.Get("/services/rest")
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("warfish returned %s for %s", res.Status(), method)
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedShape, method, err)
	}
	return nil
}

// getHTML fetches one of the site's plain HTML pages.
func (c *Client) getHTML(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	req := c.http.R().SetContext(ctx)
	for key := range query {
		req.SetQueryParam(key, query.Get(key))
	}

	res, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("warfish returned %s for %s", res.Status(), path)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedShape, path, err)
	}
	return doc, nil
}

// Rules fetches just the rules section of a game's details document,
// cached per game id for the lifetime of the process.
func (c *Client) Rules(ctx context.Context, gameID int) (RawRecord, error) {
	return c.rules.get(gameID, func() (RawRecord, error) {
		var details rawDetails
		query := url.Values{}
		query.Set("gid", fmt.Sprint(gameID))
		query.Set("section", "rules")
		err := c.getJSON(ctx, "warfish.tables.getDetails", query, &details)
		if err != nil {
			return nil, err
		}
		if details.Content.Rules == nil {
			return nil, fmt.Errorf("%w: missing rules section", ErrUnexpectedShape)
		}
		return details.Content.Rules, nil
	})
}
