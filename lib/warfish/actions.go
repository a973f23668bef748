package warfish

import (
	"errors"
	"fmt"
)

// ErrUnknownAction marks a move record whose action code is not in the
// registry. The feed's codes are a closed set; an unknown one means the
// record cannot be trusted and the whole decode must surface it.
var ErrUnknownAction = errors.New("unknown action code")

// actionNames maps the feed's one/two-letter move codes to readable action
// names.
var actionNames = map[string]string{
	"a":  "attack",
	"b":  "eliminate player bonus",
	"c":  "capture territory",
	"d":  "decline to join",
	"e":  "eliminate player",
	"f":  "transfer",
	"g":  "awarded card",
	"h":  "capture cards",
	"i":  "capture reserve units",
	"j":  "join game",
	"k":  "seat order for BAO round",
	"l":  "blind territory select",
	"m":  "message",
	"n":  "create new game",
	"o":  "assign seat position",
	"p":  "place unit(s)",
	"q":  "BAO transfer",
	"r":  "reshuffle cards",
	"s":  "start game",
	"t":  "territory select",
	"u":  "use cards",
	"v":  "BAO attack",
	"w":  "win",
	"y":  "neutral territory select",
	"z":  "turn units",
	"sr": "surrender",
	"bt": "booted",
	"tg": "game terminated",
	"tw": "team win",
}

// ActionName resolves a move code to its action name.
func ActionName(code string) (string, error) {
	name, ok := actionNames[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}
	return name, nil
}

// MoveActions lists every known action name.
func MoveActions() []string {
	out := make([]string, 0, len(actionNames))
	for _, name := range actionNames {
		out = append(out, name)
	}
	return out
}
