// Package buildinfo carries the version stamped in by the linker.
package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return shortCommit(Commit)
	}
	return "dev"
}

// String is the full identifier printed by -version and logged at startup.
func String() string {
	return fmt.Sprintf("sparkcalc %s (commit %s, built %s)", Version, shortCommit(Commit), Date)
}

func shortCommit(c string) string {
	if len(c) > 7 && c != "unknown" {
		return c[:7]
	}
	return c
}
