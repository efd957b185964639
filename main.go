// Package main provides the entry point for BOPSim.
// BOPSim is a best-offset cache-prefetch predictor model built on Akita.
//
// For the full CLI, use: go run ./cmd/bopsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("BOPSim - Best-Offset Prefetch Predictor")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: bopsim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config     Path to predictor configuration JSON file")
	fmt.Println("  -accesses   Number of accesses to drive")
	fmt.Println("  -stride     Block stride of the synthetic stream")
	fmt.Println("  -random     Use a uniform random stream instead")
	fmt.Println("  -v          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/bopsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/bopsim' instead.")
	}
}
