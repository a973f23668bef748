package warfish

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnexpectedShape marks a raw document missing a field or nested
// structure the feed is expected to carry. It is fatal for the pipeline
// run that hit it; nothing is coerced to a default.
var ErrUnexpectedShape = errors.New("unexpected document shape")

// RawRecord is one flat, string-typed key/value record as the feed returns
// it: abbreviated keys, numbers as strings, lists comma-joined.
type RawRecord map[string]string

// reqAtoi parses a required integer field, naming the structure on failure.
func reqAtoi(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrUnexpectedShape, name, value)
	}
	return n, nil
}

// fieldDecoder pulls typed fields out of a RawRecord, remembering the first
// failure so call sites can decode a full record and check the error once.
type fieldDecoder struct {
	rec RawRecord
	err error
}

func (d *fieldDecoder) fail(key, raw string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s=%q is not an integer", ErrUnexpectedShape, key, raw)
	}
}

// reqInt decodes an integer field that must be present.
func (d *fieldDecoder) reqInt(key string) int {
	if d.err != nil {
		return 0
	}
	raw, ok := d.rec[key]
	if !ok {
		d.err = fmt.Errorf("%w: missing %q", ErrUnexpectedShape, key)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		d.fail(key, raw)
		return 0
	}
	return n
}

// optInt decodes an integer field; an absent key yields nil, never zero.
func (d *fieldDecoder) optInt(key string) *int {
	return d.optIntFunc(key, nil)
}

// optIntFunc is optInt with a transform applied to the decoded value.
func (d *fieldDecoder) optIntFunc(key string, f func(int) int) *int {
	if d.err != nil {
		return nil
	}
	raw, ok := d.rec[key]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		d.fail(key, raw)
		return nil
	}
	if f != nil {
		n = f(n)
	}
	return &n
}

// optIntList decodes a comma-separated integer list field; an absent key
// yields nil.
func (d *fieldDecoder) optIntList(key string) []int {
	if d.err != nil {
		return nil
	}
	raw, ok := d.rec[key]
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			d.fail(key, raw)
			return nil
		}
		out[i] = n
	}
	return out
}

// reqIntList decodes a comma-separated integer list field that must be
// present.
func (d *fieldDecoder) reqIntList(key string) []int {
	if d.err != nil {
		return nil
	}
	if _, ok := d.rec[key]; !ok {
		d.err = fmt.Errorf("%w: missing %q", ErrUnexpectedShape, key)
		return nil
	}
	return d.optIntList(key)
}

// flag decodes the feed's "1"/"0" booleans; anything but "1" is false.
func (d *fieldDecoder) flag(key string) bool {
	return d.rec[key] == "1"
}

func (d *fieldDecoder) str(key string) string {
	return d.rec[key]
}

// Raw document shapes. The feed wraps every response in a `_content`
// envelope and nests child element lists under further `_content` keys.

type rawDetails struct {
	Content rawDetailsContent `json:"_content"`
}

type rawDetailsContent struct {
	Board      rawBoard      `json:"board"`
	Rules      RawRecord     `json:"rules"`
	Map        rawMap        `json:"map"`
	Continents rawContinents `json:"continents"`
}

type rawBoard struct {
	BoardID string `json:"boardid"`
	Content struct {
		Border []rawBorder `json:"border"`
	} `json:"_content"`
}

type rawBorder struct {
	A string `json:"a"`
	B string `json:"b"`
}

type rawMap struct {
	NumTerritories string `json:"numterritories"`
	FilledNumbers  string `json:"fillednumbers"`
	FillMode       string `json:"fillmode"`
	DispCNames     string `json:"dispcnames"`
	CircleMode     string `json:"circlemode"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	Content        struct {
		Territory []RawRecord `json:"territory"`
		Color     []RawRecord `json:"color"`
	} `json:"_content"`
}

type rawContinents struct {
	Content struct {
		Continent []RawRecord `json:"continent"`
	} `json:"_content"`
}

type rawState struct {
	Content rawStateContent `json:"_content"`
}

type rawStateContent struct {
	Cards   rawCards `json:"cards"`
	Players struct {
		Content struct {
			Player []RawRecord `json:"player"`
		} `json:"_content"`
	} `json:"players"`
}

type rawCards struct {
	CardSetsTraded string `json:"cardsetstraded"`
	NumDiscard     string `json:"numdiscard"`
	NextCardsWorth string `json:"nextcardsworth"`
	Content        struct {
		Player []RawRecord `json:"player"`
	} `json:"_content"`
}

type rawHistory struct {
	Content struct {
		MoveLog struct {
			Total   string `json:"total"`
			Content struct {
				M []RawRecord `json:"m"`
			} `json:"_content"`
		} `json:"movelog"`
	} `json:"_content"`
}
