package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/schema"
)

func TestWriteForecastTable(t *testing.T) {
	tests := []struct {
		name     string
		detail   bool
		headers  []string
		contains []string
		excludes []string
	}{
		{
			name:     "basic columns",
			headers:  []string{"RANK", "DAYS LEFT", "RISK"},
			contains: []string{"Widget", "High", "never", "n/a", "insufficient_data", "↑"},
			excludes: []string{"MA14"},
		},
		{
			name:     "detail columns",
			detail:   true,
			headers:  []string{"MA7", "MA14", "SLOPE"},
			contains: []string{"10 10 10 10 10 10 10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Detail = tt.detail
			fmtFloat, intFmt := createFormatters(cfg.Precision)

			var buf bytes.Buffer
			require.NoError(t, writeForecastTable(&buf, sampleReport(), cfg, fmtFloat, intFmt, 2*time.Second))
			out := buf.String()
			for _, h := range tt.headers {
				assert.Contains(t, strings.ToUpper(out), h)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
			assert.Contains(t, out, "Showing 3 products (high: 1, medium: 0, low: 1, unknown: 1)")
			assert.Contains(t, out, "weekly blended forecast as of 2024-03-30T12:00:00Z over 2024-03-01..2024-03-30")
			assert.Contains(t, out, "with 2 workers. Cache backend: none")
		})
	}
}

func TestWriteForecastCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeForecastCSV(&buf, sampleReport(), fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}

	assert.Equal(t, "1", records[1][col("rank")])
	assert.Equal(t, "70", records[1][col("predicted_demand")])
	assert.Equal(t, "10 10 10 10 10 10 10", records[1][col("steps")])
	assert.Equal(t, "2.0", records[1][col("days_until_stockout")])
	assert.Equal(t, "High", records[1][col("risk_level")])

	assert.Equal(t, "Gadget, large", records[2][col("name")])
	assert.Equal(t, "never", records[2][col("days_until_stockout")])

	assert.Equal(t, "insufficient_data", records[3][col("prediction_status")])
	assert.Empty(t, records[3][col("predicted_demand")])
	assert.Equal(t, "n/a", records[3][col("days_until_stockout")])
	assert.Equal(t, "Unknown", records[3][col("risk_level")])
}

func TestRiskLabel(t *testing.T) {
	assert.Equal(t, "Medium", riskLabel(schema.MediumRisk, false))
	assert.Contains(t, riskLabel(schema.MediumRisk, true), "Medium")
}

func TestCountRiskLevels(t *testing.T) {
	counts := countRiskLevels(sampleReport().Results)
	assert.Equal(t, 1, counts[schema.HighRisk])
	assert.Equal(t, 0, counts[schema.MediumRisk])
	assert.Equal(t, 1, counts[schema.UnknownRisk])
}
