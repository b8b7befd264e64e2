package iocache

import (
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetReportCache implements the StoreManager interface.
func (m *MockStoreManager) GetReportCache() contract.ReportCache {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ReportCache)
	return store
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockReportCache is a mock implementation of ReportCache for testing.
type MockReportCache struct {
	mock.Mock
}

var _ contract.ReportCache = &MockReportCache{} // Compile-time check

// Get implements the ReportCache interface.
func (m *MockReportCache) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the ReportCache interface.
func (m *MockReportCache) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the ReportCache interface.
func (m *MockReportCache) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the ReportCache interface.
func (m *MockReportCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(run schema.ForecastRunRecord, configParams map[string]any) error {
	args := m.Called(run, configParams)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID string, endTime time.Time, totalProducts int) error {
	args := m.Called(runID, endTime, totalProducts)
	return args.Error(0)
}

// RecordResult implements the HistoryStore interface.
func (m *MockHistoryStore) RecordResult(runID string, result schema.ForecastResult) error {
	args := m.Called(runID, result)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.ForecastRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ForecastRunRecord)
	return runs, args.Error(1)
}

// GetAllProductForecasts implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllProductForecasts() ([]schema.ProductForecastRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ProductForecastRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
