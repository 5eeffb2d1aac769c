package models

import "fmt"

// Format is the base game format of a session.
type Format string

const (
	FormatRoundRobin     Format = "round-robin"
	FormatPoolPlay       Format = "pool-play"
	FormatBlindDraw      Format = "blind-draw"
	FormatKingOfTheCourt Format = "king-of-the-court"
)

// Variant is a King-of-the-Court sub-mode. Variants only change the flavor
// rule attached at publish time, never the schedule.
type Variant string

const (
	VariantStandard     Variant = "standard"
	VariantMonarch      Variant = "monarch"
	VariantKingsRansom  Variant = "kings-ransom"
	VariantPowerUpRound Variant = "power-up-round"
)

var formats = []Format{FormatRoundRobin, FormatPoolPlay, FormatBlindDraw, FormatKingOfTheCourt}

// kotcVariants excludes standard: it serializes as the base format.
var kotcVariants = []Variant{VariantMonarch, VariantKingsRansom, VariantPowerUpRound}

func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

func ParseVariant(s string) (Variant, error) {
	if s == "" || s == string(VariantStandard) {
		return VariantStandard, nil
	}
	for _, v := range kotcVariants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// GameMode is the explicit format/variant pair. Variant is only meaningful
// for King-of-the-Court and is standard otherwise.
type GameMode struct {
	Format  Format  `json:"format"`
	Variant Variant `json:"variant"`
}

// Encode collapses the mode into the single tagged string stored on the
// snapshot: a non-standard KOTC variant is stored as its own name.
func (m GameMode) Encode() string {
	if m.Format == FormatKingOfTheCourt && m.Variant != "" && m.Variant != VariantStandard {
		return string(m.Variant)
	}
	return string(m.Format)
}

// DecodeGameMode reverses Encode. Variant names map back to KOTC.
func DecodeGameMode(s string) (GameMode, error) {
	for _, v := range kotcVariants {
		if string(v) == s {
			return GameMode{Format: FormatKingOfTheCourt, Variant: v}, nil
		}
	}
	f, err := ParseFormat(s)
	if err != nil {
		return GameMode{}, err
	}
	return GameMode{Format: f, Variant: VariantStandard}, nil
}

// RuleKindFor returns which kind of flavor text a variant attaches, or false
// when the mode carries no rule.
func (m GameMode) RuleKindFor() (RuleKind, bool) {
	if m.Format != FormatKingOfTheCourt {
		return "", false
	}
	switch m.Variant {
	case VariantMonarch, VariantKingsRansom:
		return RuleKindRule, true
	case VariantPowerUpRound:
		return RuleKindPowerUp, true
	}
	return "", false
}
