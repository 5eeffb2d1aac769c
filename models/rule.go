package models

// RuleText is a flavor rule or power-up produced by the external generator.
type RuleText struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RuleKind selects what the rule-text generator is asked for.
type RuleKind string

const (
	RuleKindRule    RuleKind = "rule"
	RuleKindPowerUp RuleKind = "power-up"
)
