// Package main provides a performance benchmarking tool for the Hotspot CLI.
// It measures execution times across different repository sizes, comparing a
// single aggregation worker against a worker pool, with and without run tracking,
// and writes a CSV for performance analysis and documentation.
//
// Prerequisites:
// - hotspot binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the average time of each phase for one repository.
type BenchmarkResult struct {
	Repository     string
	TimeWindow     int
	SequentialTime string
	ParallelTime   string
	TrackedTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	Runs        int
	TestRepos   []string
	TimeWindows map[string]int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	repoBase := os.Args[1]

	config := BenchmarkConfig{
		RepoBase:  repoBase,
		Timeout:   5 * time.Minute,
		Workers:   14,
		Runs:      3,
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		TimeWindows: map[string]int{
			"csv-parser": 3650,
			"fd":         3650,
			"git":        365,
			"kubernetes": 180,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Start the tracked phase from an empty store
	fmt.Printf("Clearing tracked runs...\n")
	clearCmd := exec.Command("hotspot", "runs", "clear", "--analysis-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear runs: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Runs cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that hotspot binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("hotspot"); err != nil {
		return fmt.Errorf("hotspot binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes all phases across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, %d runs per phase\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.Runs)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		window, ok := config.TimeWindows[repo]
		if !ok {
			window = 365
		}
		fmt.Printf("Benchmarking %s (%d day window)\n", repo, window)

		base := []string{"--repo", repoPath, "--time-window", strconv.Itoa(window), "--format", "json"}
		withArgs := func(extra ...string) []string {
			return append(append([]string{}, base...), extra...)
		}

		result := BenchmarkResult{Repository: repo, TimeWindow: window}
		result.SequentialTime = runPhase(config, "Sequential", withArgs("--workers", "1"))
		result.ParallelTime = runPhase(config, "Parallel", withArgs("--workers", strconv.Itoa(config.Workers)))
		result.TrackedTime = runPhase(config, "Tracked", withArgs("--workers", strconv.Itoa(config.Workers), "--analysis-backend", "sqlite"))

		fmt.Printf("  Sequential: %s, Parallel: %s, Tracked: %s\n", result.SequentialTime, result.ParallelTime, result.TrackedTime)
		results = append(results, result)
	}

	return results
}

// runPhase runs hotspot config.Runs times and formats the average duration
func runPhase(config BenchmarkConfig, phaseName string, args []string) string {
	fmt.Printf("  %s phase (%d runs)\n", phaseName, config.Runs)
	times := runBenchmark(config, args)
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// runBenchmark executes hotspot with args and returns the durations of successful runs
func runBenchmark(config BenchmarkConfig, args []string) []float64 {
	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("hotspot", args...)

		done := make(chan bool, 1)
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
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/hotspot_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"repo", "time_window", "sequential_avg", "parallel_avg", "tracked_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Repository, strconv.Itoa(result.TimeWindow), result.SequentialTime, result.ParallelTime, result.TrackedTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s: Sequential: %s, Parallel: %s, Tracked: %s\n",
			result.Repository, result.SequentialTime, result.ParallelTime, result.TrackedTime)
	}
}
