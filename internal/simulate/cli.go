package simulate

import "os"

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`courtside simulation
====================

Plays a session timeline with seeded random survey answers and writes a report.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of a running service (default: in-process session)
  -seed int
        Random seed for survey answers and manual readings (default 42)
  -checkpoints int
        Number of checkpoints to play, 1..7 (default 7)
  -biometric string
        Capture mode: manual or derived (default "manual")
  -minutes float
        Clock advancement per checkpoint, 1.0..3.5 (default 2.5)
  -timeout duration
        Per-phase wait and HTTP request timeout (default 30s)
  -output string
        Report file (default: stdout)
  -format string
        Report format: yaml or json (default "yaml")
  -verbose
        Log every checkpoint
  -help
        Show this help message

Examples:
  # Seven derived checkpoints, YAML to stdout
  go run ./cmd/simulate -biometric derived

  # Drive a running service and save JSON
  go run ./cmd/simulate -url http://localhost:9080 -format json -output report.json
`)
}
