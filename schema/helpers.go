package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// riskSeverity orders tiers from most to least urgent.
var riskSeverity = map[RiskLevel]int{
	HighRisk:    0,
	MediumRisk:  1,
	LowRisk:     2,
	UnknownRisk: 3,
}

// RiskSeverity returns the sort rank of a risk level; lower is more urgent.
// Unrecognized levels sort after every known tier.
func RiskSeverity(level RiskLevel) int {
	if s, ok := riskSeverity[level]; ok {
		return s
	}
	return len(riskSeverity)
}

// ParseSaleStatuses parses a comma-separated list of sale statuses.
// An empty string yields the default eligible statuses.
func ParseSaleStatuses(s string) ([]SaleStatus, error) {
	if strings.TrimSpace(s) == "" {
		return append([]SaleStatus(nil), DefaultSaleStatuses...), nil
	}
	seen := make(map[SaleStatus]struct{})
	var out []SaleStatus
	for part := range strings.SplitSeq(s, ",") {
		status := SaleStatus(strings.ToLower(strings.TrimSpace(part)))
		if status == "" {
			continue
		}
		if _, ok := ValidSaleStatuses[status]; !ok {
			return nil, fmt.Errorf("invalid sale status '%s'. must be successful, completed", status)
		}
		if _, dup := seen[status]; dup {
			continue
		}
		seen[status] = struct{}{}
		out = append(out, status)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one sale status is required")
	}
	return out, nil
}

// FormatSteps renders per-step predictions as "3 4 5".
func FormatSteps(steps []int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, " ")
}

// StatusStrings converts sale statuses into plain strings for store queries.
func StatusStrings(statuses []SaleStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
