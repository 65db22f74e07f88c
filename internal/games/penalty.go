package games

// PenaltyRule describes one "bak" threshold: a player whose total meets or
// exceeds Threshold is offered a deduction of Points.
type PenaltyRule struct {
	Threshold float64 `json:"threshold"`
	Points    float64 `json:"points"`
	Label     string  `json:"label"`
}

// penaltyRules is ordered highest threshold first; RuleFor picks the first
// rule that applies.
var penaltyRules = []PenaltyRule{
	{Threshold: 100, Points: 50, Label: "Dubbele bak"},
	{Threshold: 50, Points: 25, Label: "Bak"},
}

// PenaltyRules returns the configured rules, highest threshold first.
func PenaltyRules() []PenaltyRule {
	out := make([]PenaltyRule, len(penaltyRules))
	copy(out, penaltyRules)
	return out
}

// RuleFor returns the penalty rule offered at the given total. The boolean is
// false when the total sits below every threshold.
func RuleFor(total float64) (PenaltyRule, bool) {
	for _, rule := range penaltyRules {
		if total >= rule.Threshold {
			return rule, true
		}
	}
	return PenaltyRule{}, false
}
