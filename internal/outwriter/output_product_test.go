package outwriter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/schema"
)

func sampleDetail() *schema.ProductDetail {
	result := sampleReport().Results[0]
	result.Series = []float64{8, 12, 10}
	return &schema.ProductDetail{
		Result: result,
		Labels: []string{"2024-03-28", "2024-03-29", "2024-03-30"},
	}
}

func TestWriteProductText(t *testing.T) {
	tests := []struct {
		name      string
		useEmojis bool
		first     string
	}{
		{"plain header", false, "Widget (p1)"},
		{"emoji header", true, "📦 Widget (p1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.UseEmojis = tt.useEmojis
			fmtFloat, intFmt := createFormatters(cfg.Precision)

			var buf bytes.Buffer
			require.NoError(t, writeProductText(&buf, sampleDetail(), cfg, fmtFloat, intFmt, time.Second))
			out := buf.String()

			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(tt.first+"\n")), out)
			assert.Contains(t, out, "Prediction:      70")
			assert.Contains(t, out, "Days left:       2.0")
			assert.Contains(t, out, "10.0 (MA7), 9.5 (MA14)")
			assert.Contains(t, out, "2024-03-29")
			assert.Contains(t, out, "12.0")
			assert.Contains(t, out, "Forecast completed in 1s")
		})
	}
}

func TestWriteProductTextReason(t *testing.T) {
	detail := &schema.ProductDetail{Result: sampleReport().Results[2], Labels: []string{"2024-03-30"}}
	cfg := testConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeProductText(&buf, detail, cfg, fmtFloat, intFmt, time.Second))
	assert.Contains(t, buf.String(), "Reason:          need at least 2 periods with sales, have 1")
	assert.Contains(t, buf.String(), "Days left:       n/a")
}

func TestWriteProductSeriesCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeProductSeriesCSV(&buf, sampleDetail(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"product_id", "bucket", "units"},
		{"p1", "2024-03-28", "8.0"},
		{"p1", "2024-03-29", "12.0"},
		{"p1", "2024-03-30", "10.0"},
	}, records)
}

func TestPrintProductDetailParquetUnsupported(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = "unused.parquet"
	assert.Error(t, PrintProductDetail(sampleDetail(), cfg, time.Second))
}
