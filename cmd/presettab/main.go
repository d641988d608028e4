// presettab manages slicer configuration presets from the command line.
//
// Presets live under the data directory (default ~/.presettab), one TOML file
// per user preset in a directory per preset type. Vendor bundles in
// <data-dir>/vendor/*.yaml supply the system presets.
//
// Build:
//
//	go build -o presettab ./cmd/presettab
//
// Examples:
//
//	presettab list print
//	presettab select printer "Original Prusa MK3"
//	presettab status print --set layer_height=0.15
//	presettab save print "0.15mm fast" --set layer_height=0.15 --set perimeters=2
//	presettab export xlsx filament filaments.xlsx
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
