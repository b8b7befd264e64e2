// Package main provides a performance benchmarking tool for the Stockcast CLI.
// It generates synthetic inventories of different sizes, seeds each one into a
// SQLite sales source and times the forecast command, running each test multiple
// times, treating the first successful cached run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - stockcast binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated snapshots and databases
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	AsOf        time.Time
	Datasets    []Dataset
}

// Dataset describes one synthetic inventory.
type Dataset struct {
	Name          string
	Products      int
	SalesPerDay   int
	HistoryMonths int
}

// snapshot matches the JSON format accepted by 'stockcast source seed'.
type snapshot struct {
	Products []snapshotProduct `json:"products"`
	Sales    []snapshotSale    `json:"sales"`
}

type snapshotProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type snapshotSale struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Items     []snapshotItem `json:"items"`
}

type snapshotItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		AsOf:        time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC),
		Datasets: []Dataset{
			{Name: "small", Products: 50, SalesPerDay: 20, HistoryMonths: 14},
			{Name: "medium", Products: 1000, SalesPerDay: 300, HistoryMonths: 14},
			{Name: "large", Products: 10000, SalesPerDay: 3000, HistoryMonths: 14},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the stockcast binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("stockcast"); err != nil {
		return fmt.Errorf("stockcast binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateSnapshot builds a deterministic inventory with a random walk of daily demand.
func generateSnapshot(d Dataset, asOf time.Time) snapshot {
	rng := rand.New(rand.NewPCG(uint64(d.Products), uint64(d.SalesPerDay)))
	snap := snapshot{Products: make([]snapshotProduct, d.Products)}
	for i := range snap.Products {
		snap.Products[i] = snapshotProduct{
			ID:       fmt.Sprintf("sku-%05d", i),
			Name:     fmt.Sprintf("Product %d", i),
			Quantity: rng.IntN(500),
		}
	}

	start := asOf.AddDate(0, -d.HistoryMonths, 0)
	statuses := []string{"successful", "completed", "pending", "refunded"}
	for day := start; day.Before(asOf); day = day.AddDate(0, 0, 1) {
		for range d.SalesPerDay {
			item := snapshotItem{
				ProductID: snap.Products[rng.IntN(d.Products)].ID,
				Quantity:  1 + rng.IntN(5),
			}
			snap.Sales = append(snap.Sales, snapshotSale{
				ID:        fmt.Sprintf("s-%d", len(snap.Sales)),
				Status:    statuses[rng.IntN(len(statuses))],
				CreatedAt: day.Add(time.Duration(rng.IntN(86400)) * time.Second),
				Items:     []snapshotItem{item},
			})
		}
	}
	return snap
}

// prepareDataset writes the snapshot and seeds it into a fresh SQLite source.
func prepareDataset(config BenchmarkConfig, d Dataset) (string, error) {
	dir := filepath.Join(config.WorkDir, d.Name)
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	data, err := json.Marshal(generateSnapshot(d, config.AsOf))
	if err != nil {
		return "", err
	}
	snapPath := filepath.Join(dir, "inventory.json")
	if err := os.WriteFile(snapPath, data, 0o644); err != nil {
		return "", err
	}

	seedCmd := exec.Command("stockcast", "source", "seed", "--file", snapPath,
		"--source-backend", "sqlite", "--source-connect", filepath.Join(dir, "sales.db"))
	if output, err := seedCmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("seed failed: %w\nOutput: %s", err, string(output))
	}
	return dir, nil
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, d := range config.Datasets {
		fmt.Printf("Preparing %s (%d products, %d sales/day)\n", d.Name, d.Products, d.SalesPerDay)
		dir, err := prepareDataset(config, d)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", d.Name, err)
			continue
		}

		results = append(results,
			runBenchmarkSuite(config, d.Name, dir, "weekly blended", "--period weekly --strategy blended"),
			runBenchmarkSuite(config, d.Name, dir, "monthly regression", "--period monthly --strategy regression"),
		)
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, dir, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs on a fresh cache file
	_ = os.Remove(filepath.Join(dir, "cache.db"))
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     description,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a forecast multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"forecast",
		"--source-backend", "sqlite",
		"--source-connect", filepath.Join(dir, "sales.db"),
		"--cache-backend", cacheBackend,
		"--cache-db-connect", filepath.Join(dir, "cache.db"),
		"--as-of", config.AsOf.Format(time.RFC3339),
		"--workers", fmt.Sprint(config.Workers),
		"--limit", "20",
	}
	args = append(args, strings.Fields(extraArgs)...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("stockcast", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Forecast completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/stockcast_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "weekly blended", "Weekly Blended:")
	printCommandSummary(results, "monthly regression", "Monthly Regression:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
