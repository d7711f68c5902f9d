package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"gofileio/pkg/cmd"
	"gofileio/pkg/errors"
)

// Exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

func main() {
	// Set version information from build info
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if cmd.Version == "" {
					cmd.Version = s.Value
				}
			case "vcs.time":
				if cmd.BuildDate == "" {
					cmd.BuildDate = s.Value
				}
			}
		}
		if cmd.GoVersion == "" {
			cmd.GoVersion = bi.GoVersion
		}
	}

	if cmd.Version == "" {
		cmd.Version = "unknown"
	}
	if cmd.BuildDate == "" {
		cmd.BuildDate = "unknown"
	}
	if cmd.Stream == "" {
		cmd.Stream = "dev"
	}

	os.Exit(run())
}

func run() int {
	err := cmd.NewRootCmd().Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.IsFileNotFound(err):
		fmt.Fprintln(os.Stderr, err.Error())
		return exitNotFound
	default:
		fmt.Fprintln(os.Stderr, err.Error())
		return exitFailure
	}
}
