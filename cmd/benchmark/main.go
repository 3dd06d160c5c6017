// Command benchmark runs the apexsim pipeline benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results as a JSON report
//	-core        Run only the core benchmarks
//	-config      Machine configuration JSON file
//	-no-check    Skip the cross-check against the functional emulator
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/apexsim/benchmarks"
	"github.com/sarchlab/apexsim/timing/config"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	configPath := flag.String("config", "", "Path to machine configuration JSON file")
	noCheck := flag.Bool("no-check", false, "Skip the functional emulator cross-check")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Configure harness
	harnessConfig := benchmarks.DefaultConfig()
	harnessConfig.CrossCheck = !*noCheck
	harnessConfig.Verbose = *verbose
	harnessConfig.Output = os.Stdout

	if *configPath != "" {
		machine, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading machine config: %v\n", err)
			os.Exit(1)
		}
		harnessConfig.Machine = machine
	}

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(harnessConfig)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("APEX Pipeline Benchmark Harness")
		fmt.Println("===============================")
		fmt.Printf("Clock: %v\n", harnessConfig.Machine.ClockFrequency())
		fmt.Printf("Cross-check: %v\n", harnessConfig.CrossCheck)
		fmt.Println("")
	}

	// Run benchmarks
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed() {
			os.Exit(1)
		}
	}
}
