package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

func sampleReport() *schema.ForecastReport {
	asOf := time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	return &schema.ForecastReport{
		RunID:     "2f1c9a52-3b0a-4f61-9a43-0c1d2e3f4a5b",
		Period:    schema.WeeklyPeriod,
		Strategy:  schema.BlendedStrategy,
		RiskBasis: schema.PeriodRiskBasis,
		AsOf:      asOf,
		Window: schema.Window{
			Granularity: schema.DayGranularity,
			Start:       end.AddDate(0, 0, -30),
			End:         end,
			Size:        30,
		},
		Horizon:     7,
		GeneratedAt: asOf,
		Results: []schema.ForecastResult{
			{
				ProductID:            "p1",
				Name:                 "Widget",
				CurrentStock:         20,
				Trend:                schema.TrendModel{Slope: 0.5, Intercept: 8},
				DailyMovingAverage7:  10,
				DailyMovingAverage14: 9.5,
				Prediction:           schema.Prediction{Status: schema.PredictionOK, Steps: []int{10, 10, 10, 10, 10, 10, 10}, Total: 70},
				WeeklyDemand:         70,
				DaysUntilStockout:    2,
				RiskLevel:            schema.HighRisk,
				TrendDirection:       schema.TrendIncreasing,
			},
			{
				ProductID:         "p2",
				Name:              "Gadget, large",
				CurrentStock:      40,
				Prediction:        schema.Prediction{Status: schema.PredictionOK, Steps: []int{0, 0, 0, 0, 0, 0, 0}},
				DaysUntilStockout: math.Inf(1),
				RiskLevel:         schema.LowRisk,
				TrendDirection:    schema.TrendStable,
			},
			{
				ProductID:         "p3",
				Name:              "Gizmo",
				CurrentStock:      5,
				Prediction:        schema.Prediction{Status: schema.PredictionInsufficient, Reason: "need at least 2 periods with sales, have 1"},
				DaysUntilStockout: math.NaN(),
				RiskLevel:         schema.UnknownRisk,
				TrendDirection:    schema.TrendStable,
			},
		},
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Period:       schema.WeeklyPeriod,
		Strategy:     schema.BlendedStrategy,
		RiskBasis:    schema.PeriodRiskBasis,
		Precision:    1,
		Width:        120,
		Workers:      2,
		CacheBackend: schema.NoneBackend,
		Weights:      schema.DefaultBlendWeights(),
		Thresholds:   schema.DefaultRiskThresholds(),
	}
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		detail   bool
		expected int
	}{
		{"narrow terminal", 60, false, 12},
		{"medium terminal", 110, false, 30},
		{"wide terminal", 300, false, 50},
		{"detail columns", 140, true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Detail: tt.detail}
			assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg))
		})
	}
}

func TestOutWriterJSONToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.json")

	ow := NewOutWriter()
	require.NoError(t, ow.WriteForecast(sampleReport(), cfg, time.Second))

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded struct {
		RunID   string `json:"run_id"`
		Results []struct {
			ProductID         string   `json:"product_id"`
			DaysUntilStockout *float64 `json:"days_until_stockout"`
			Prediction        struct {
				Total *int `json:"total"`
			} `json:"prediction"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "p1", decoded.Results[0].ProductID)
	require.NotNil(t, decoded.Results[0].DaysUntilStockout)
	assert.Equal(t, 2.0, *decoded.Results[0].DaysUntilStockout)
	assert.Nil(t, decoded.Results[1].DaysUntilStockout, "infinite horizon renders as null")
	assert.Nil(t, decoded.Results[2].DaysUntilStockout, "unknown horizon renders as null")
	assert.Nil(t, decoded.Results[2].Prediction.Total)
}

func TestOutWriterParquet(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.parquet")

	require.NoError(t, NewOutWriter().WriteForecast(sampleReport(), cfg, time.Second))
	info, err := os.Stat(cfg.OutputFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOutWriterCSVToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, NewOutWriter().WriteForecast(sampleReport(), cfg, time.Second))

	f, err := os.Open(cfg.OutputFile)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "rank", records[0][0])
}

func TestOutWriterModelAndProduct(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Output = schema.JSONOut

	cfg.OutputFile = filepath.Join(dir, "model.json")
	require.NoError(t, NewOutWriter().WriteModel(cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"risk_basis": "period"`)

	cfg.OutputFile = filepath.Join(dir, "product.json")
	detail := &schema.ProductDetail{Result: sampleReport().Results[0], Labels: []string{"2024-03-29", "2024-03-30"}}
	require.NoError(t, NewOutWriter().WriteProduct(detail, cfg, time.Second))
	content, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"2024-03-30"`)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, detail))
	assert.Equal(t, buf.String(), string(content))
}
