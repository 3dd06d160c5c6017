// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate simulator of the APEX 5-stage in-order
// pipeline.
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - APEX 5-Stage Pipeline Simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim [options] <program.asm> [simulate <n>]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -cycles      Cycle budget")
	fmt.Println("  -config      Path to machine configuration JSON file")
	fmt.Println("  -v           Log every stage of every cycle")
	fmt.Println("  -step        Single-step mode")
	fmt.Println("  -functional  Run the functional emulator")
	fmt.Println("  -dump        Pretty-print the final pipeline snapshot")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
