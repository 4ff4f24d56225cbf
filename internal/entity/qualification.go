package entity

import "strings"

// Qualification is derived from a lead's answers and is never stored on its own.
type Qualification struct {
	IdealLoi bool `json:"idealLoi"`
	Score    int  `json:"score"`
}

const (
	idealLoiWeight       = 3
	organizationWeight   = 2
	desiredChangesWeight = 1

	// MaxScore is the highest score Qualify can produce.
	MaxScore = idealLoiWeight + organizationWeight + desiredChangesWeight

	minQualifyingTools = 2
)

// qualifyingTools are the stacks whose users we offer the paid design-partner pilot.
var qualifyingTools = map[string]struct{}{
	ToolSlack:   {},
	ToolHarvest: {},
	ToolAsana:   {},
}

// Qualify scores a lead. A lead is a design partner (idealLoi) when it uses
// at least two of the qualifying tools.
func Qualify(toolsUsed []string, organization, desiredChanges string) Qualification {
	matches := 0
	seen := make(map[string]struct{}, len(toolsUsed))
	for _, tool := range toolsUsed {
		if _, dup := seen[tool]; dup {
			continue
		}
		seen[tool] = struct{}{}
		if _, ok := qualifyingTools[tool]; ok {
			matches++
		}
	}

	q := Qualification{IdealLoi: matches >= minQualifyingTools}
	if q.IdealLoi {
		q.Score += idealLoiWeight
	}
	if strings.TrimSpace(organization) != "" {
		q.Score += organizationWeight
	}
	if strings.TrimSpace(desiredChanges) != "" {
		q.Score += desiredChangesWeight
	}
	return q
}
