package warfish

// The four card-scale distributions the site is known to ship, matched by
// the exact comma-joined raw string. Anything else maps to "unknown: <raw>".
var cardScaleNames = map[string]string{
	"4,6,8,10,4,6,8,10,4,6,8,10,4,6,8,10,4,6,8,10,4,6,8,10,4":                  "4-6-8-10 repeating",
	"4,6,8,10,12,14,16,18,20,22,24,26,28,30,32,34,36,38,40,42,44,46,48,50,52": "4-6-8-10-12...",
	"0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0":                       "no cards",
	"4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24,25,26,27,28":    "4-5-6-7-8...",
}

func boolPtr(b bool) *bool { return &b }

// limit decodes a per-turn attack/transfer limit field. The feed's "-1"
// sentinel means no limit at all, represented as Unbounded.
func limit(d *fieldDecoder, key string) *UnitLimit {
	if raw, ok := d.rec[key]; ok && raw == "-1" {
		u := Unbounded()
		return &u
	}
	n := d.optInt(key)
	if n == nil {
		return nil
	}
	u := UnitLimit(*n)
	return &u
}

// NormalizeRules converts the raw rules record into a RuleSet. MinUnits and
// TerritoriesPerUnit are caller-supplied; the feed does not carry them.
//
// Conditional presence follows the governing flags exactly: blind-at-once
// games get damage dice, die goals and the pretransfer flag but no per-turn
// limits; versus games get the reverse. Abandon, team and reserve fields
// appear only when their gates are open. Absent numeric keys leave their
// field omitted, never zero.
func NormalizeRules(raw RawRecord, minUnits, territoriesPerUnit int) (RuleSet, error) {
	d := &fieldDecoder{rec: raw}
	r := RuleSet{
		MinUnits:           minUnits,
		TerritoriesPerUnit: territoriesPerUnit,
	}

	switch raw["fog"] {
	case "0":
		r.Fog = FogNone
	case "5":
		r.Fog = FogLight
	default:
		r.Fog = FogHeavy
	}

	if name, ok := cardScaleNames[raw["cardscale"]]; ok {
		r.CardScale = name
	} else {
		r.CardScale = "unknown: " + raw["cardscale"]
	}

	r.BlindAtOnce = d.flag("baoplay")

	r.CanAbandonTerritories = d.flag("allowabandon")
	if r.CanAbandonTerritories {
		r.KeepPossessionOfAbandoned = boolPtr(d.flag("keeppossession"))
	}

	r.TeamGame = d.flag("teamgame")
	if r.TeamGame {
		r.CanTeamTransfer = boolPtr(d.flag("teamtransfer"))
		r.CanTeamPlaceUnits = boolPtr(d.flag("teamplaceunits"))
	}

	if r.BlindAtOnce {
		r.Dice = DiceDamage
		r.AttackerDieGoal = d.optInt("afdie")
		r.DefenderDieGoal = d.optInt("dfdie")
		r.AllowPretransfer = boolPtr(d.flag("pretransfer"))
	} else {
		r.Dice = DiceVersus
		r.AllowReturnToPlace = boolPtr(d.flag("returntoplace"))
		r.AllowReturnToAttack = boolPtr(d.flag("returntoattack"))
		r.AttackLimitPerTurn = limit(d, "numattacks")
		r.TransferLimitPerTurn = limit(d, "numtransfers")
	}

	r.AttackerDieSides = d.optInt("adie")
	r.DefenderDieSides = d.optInt("ddie")

	if v, ok := raw["numreserves"]; ok && v != "0" {
		r.CanKeepInReserve = d.optInt("numreserves")
	}

	return r, d.err
}
