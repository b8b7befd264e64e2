package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/iocache"
	"github.com/huangsam/stockcast/schema"
)

func sampleReport() *schema.ForecastReport {
	return &schema.ForecastReport{
		RunID:    "run-1",
		Period:   schema.WeeklyPeriod,
		Strategy: schema.BlendedStrategy,
		AsOf:     testAsOf,
		Horizon:  7,
		Results: []schema.ForecastResult{
			{ProductID: "p1", RiskLevel: schema.HighRisk, DaysUntilStockout: 2.5, Prediction: schema.Prediction{Status: schema.PredictionOK, Steps: []int{1}, Total: 1}},
			{ProductID: "p2", RiskLevel: schema.LowRisk, DaysUntilStockout: math.Inf(1), Prediction: schema.Prediction{Status: schema.PredictionOK}},
			{ProductID: "p3", RiskLevel: schema.UnknownRisk, DaysUntilStockout: math.NaN(), Prediction: schema.Prediction{Status: schema.PredictionInsufficient}},
		},
	}
}

func TestEncodeDecodeReport(t *testing.T) {
	data, err := encodeReport(sampleReport())
	require.NoError(t, err)

	report, err := decodeReport(data)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, "run-1", report.RunID)
	assert.True(t, testAsOf.Equal(report.AsOf))
	assert.Equal(t, 2.5, report.Results[0].DaysUntilStockout)
	assert.Equal(t, 1, report.Results[0].Prediction.Total)
	assert.True(t, report.Results[1].NeverStocksOut())
	assert.True(t, math.IsNaN(report.Results[2].DaysUntilStockout))
	assert.Equal(t, schema.PredictionInsufficient, report.Results[2].Prediction.Status)
}

func TestDecodeReportMismatch(t *testing.T) {
	_, err := decodeReport([]byte(`{"report":{"results":[{"product_id":"p1"}]},"days":[]}`))
	assert.Error(t, err)

	_, err = decodeReport([]byte(`not json`))
	assert.Error(t, err)
}

func TestCheckCacheHit(t *testing.T) {
	data, err := encodeReport(sampleReport())
	require.NoError(t, err)
	now := time.Now().Unix()

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"fresh entry", data, currentCacheVersion, now, nil, true},
		{"miss", nil, 0, 0, errors.New("not found"), false},
		{"old version", data, currentCacheVersion + 1, now, nil, false},
		{"stale", data, currentCacheVersion, now - int64((2 * time.Hour).Seconds()), nil, false},
		{"corrupt", []byte("{"), currentCacheVersion, now, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &iocache.MockReportCache{}
			cache.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)

			report := checkCacheHit(cache, "key", time.Hour)
			assert.Equal(t, tt.hit, report != nil)
			cache.AssertExpectations(t)
		})
	}
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig()
	window, _, err := buildWindows(cfg, testAsOf)
	require.NoError(t, err)
	base := generateCacheKey(cfg, testAsOf, window)

	assert.Len(t, base, 64)
	assert.Equal(t, base, generateCacheKey(cfg, testAsOf.Add(10*time.Minute), window), "same hour shares a key")
	assert.NotEqual(t, base, generateCacheKey(cfg, testAsOf.Add(time.Hour), window))

	tests := []struct {
		name   string
		modify func(*contract.Config)
	}{
		{"period", func(c *contract.Config) { c.Period = schema.MonthlyPeriod }},
		{"strategy", func(c *contract.Config) { c.Strategy = schema.RegressionStrategy }},
		{"risk basis", func(c *contract.Config) { c.RiskBasis = schema.WeeklyRiskBasis }},
		{"statuses", func(c *contract.Config) { c.Statuses = []schema.SaleStatus{schema.CompletedSale} }},
		{"weights", func(c *contract.Config) { c.Weights.Trend = 0.5 }},
		{"thresholds", func(c *contract.Config) { c.Thresholds.High = 3 }},
		{"detail", func(c *contract.Config) { c.Detail = true }},
		{"source", func(c *contract.Config) { c.SourceConnect = "other.json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			assert.NotEqual(t, base, generateCacheKey(cfg, testAsOf, window))
		})
	}
}

func TestGetForecastReportCacheHit(t *testing.T) {
	data, err := encodeReport(sampleReport())
	require.NoError(t, err)

	cache := &iocache.MockReportCache{}
	cache.On("Get", mock.AnythingOfType("string")).Return(data, currentCacheVersion, time.Now().Unix(), nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetReportCache").Return(cache)

	cfg := testConfig()
	cfg.ResultLimit = 2
	// The reader must not be touched on a hit
	reader := &contract.MockSalesReader{}

	report, err := GetForecastReport(WithSuppressHeader(context.Background()), cfg, reader, mgr)
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "p1", report.Results[0].ProductID)

	reader.AssertNotCalled(t, "ListProducts", mock.Anything)
	mgr.AssertNotCalled(t, "GetHistoryStore")
}

func TestGetForecastReportCacheMiss(t *testing.T) {
	cache := &iocache.MockReportCache{}
	cache.On("Get", mock.AnythingOfType("string")).Return(nil, 0, int64(0), errors.New("not found"))
	cache.On("Set", mock.AnythingOfType("string"), mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetReportCache").Return(cache)
	mgr.On("GetHistoryStore").Return(nil)

	cfg := testConfig()
	cfg.ResultLimit = 1
	report, err := GetForecastReport(WithSuppressHeader(context.Background()), cfg, newTestReader(testProducts(), testEvents()), mgr)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	cache.AssertExpectations(t)

	// The stored entry holds the whole ranking, not the truncated view
	stored := cache.Calls[1].Arguments.Get(1).([]byte)
	cached, err := decodeReport(stored)
	require.NoError(t, err)
	assert.Len(t, cached.Results, 3)
	assert.True(t, cached.Results[2].NeverStocksOut())
}

func TestGetForecastReportCacheWriteFailure(t *testing.T) {
	cache := &iocache.MockReportCache{}
	cache.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("not found"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetReportCache").Return(cache)
	mgr.On("GetHistoryStore").Return(nil)

	report, err := GetForecastReport(WithSuppressHeader(context.Background()), testConfig(), newTestReader(testProducts(), testEvents()), mgr)
	require.NoError(t, err)
	assert.Len(t, report.Results, 3)
}
