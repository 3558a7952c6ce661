// =============================================================================
// Sales Aggregator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the sales aggregator CLI. It initializes
// the Cobra CLI framework and delegates command execution to the cmd package.
//
// USAGE:
//   salesagg aggregate <dir>  - Total the sales records in <dir>
//   salesagg version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Validation and aggregation pipeline
//   - pkg/       : File management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-aggregator/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
