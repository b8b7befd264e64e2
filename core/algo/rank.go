package algo

import (
	"sort"

	"github.com/huangsam/stockcast/schema"
)

// RankResults orders results by risk tier (high first) and then by days until
// stock-out ascending, keeping the input order for ties. It returns the top
// 'limit' results; a non-positive limit keeps all of them.
func RankResults(results []schema.ForecastResult, limit int) []schema.ForecastResult {
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := schema.RiskSeverity(results[i].RiskLevel), schema.RiskSeverity(results[j].RiskLevel)
		if si != sj {
			return si < sj
		}
		return results[i].DaysUntilStockout < results[j].DaysUntilStockout
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
