package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jrossi/lintgate"
	"github.com/jrossi/lintgate/report"
)

// Build variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		venvPath    = flag.String("venv", "", "Virtual environment path, relative to the target (default \"venv\")")
		gate        = flag.String("gate", "", "Comma-separated checkers to run (flake8, ruff, docs)")
		configFile  = flag.String("config", "", "Path to a configuration file (disables the implicit search)")
		timeout     = flag.Duration("timeout", 0, "Overall run timeout (0 disables)")
		reportPath  = flag.String("report", "", "Write a JSON run report to this file")
		summary     = flag.Bool("summary", false, "Print a run summary to stderr")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lintgate - lint gate runner for Python backend projects\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [target-dir]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs the configured lint checkers inside the project's virtual\n")
		fmt.Fprintf(os.Stderr, "environment and passes their output through unmodified.\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExit codes:\n")
		fmt.Fprintf(os.Stderr, "  0 - gate passed\n")
		fmt.Fprintf(os.Stderr, "  1 - lint failure (tool exit codes are collapsed to 1)\n")
		fmt.Fprintf(os.Stderr, "  2 - usage or configuration error\n")
		fmt.Fprintf(os.Stderr, "  3 - environment error (target or venv missing, tool unavailable)\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("lintgate version %s\n", version)
		if commit != "none" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Printf("  built at: %s\n", date)
		}
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one target directory, got %d\n", len(args))
		flag.Usage()
		os.Exit(int(lintgate.ExitUsageError))
	}
	loaderDir := "."
	if len(args) == 1 {
		loaderDir = args[0]
	}

	loader, err := lintgate.NewConfigLoader(loaderDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(lintgate.ExitUsageError))
	}

	var config *lintgate.AppConfig
	if *configFile != "" {
		config, err = loader.LoadConfigWithPaths([]string{*configFile})
	} else {
		config, err = loader.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(lintgate.ExitUsageError))
	}

	// Flags and the positional argument override every config source; a
	// target configured in a file stands when no argument was given.
	applyTargetArg(config, args)
	if *venvPath != "" {
		config.VenvPath = venvPath
	}
	if *gate != "" {
		checkerNames := strings.Split(*gate, ",")
		for i := range checkerNames {
			checkerNames[i] = strings.TrimSpace(checkerNames[i])
		}
		config.Gate = checkerNames
	}
	if *timeout > 0 {
		config.Timeout = &lintgate.Duration{Duration: *timeout}
	}

	runner := lintgate.NewRunner(config)

	rep, runErr := runner.Run(context.Background())

	if rep != nil && *reportPath != "" {
		if err := writeReport(rep, *reportPath); err != nil {
			log.WithError(err).Warn("failed to write run report")
		}
	}
	if rep != nil && *summary {
		_ = rep.WriteText(os.Stderr)
	}

	code := lintgate.ExitCodeFor(rep, runErr)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}

	os.Stdout.Sync()
	os.Stderr.Sync()
	os.Exit(int(code))
}

// applyTargetArg sets the target from the positional argument when one was
// given. Without one, the merged config's target is left in place.
func applyTargetArg(config *lintgate.AppConfig, args []string) {
	if len(args) == 1 {
		config.Target = &args[0]
	}
}

func writeReport(rep *report.Report, path string) error {
	f, err := os.Create(path) // #nosec G304 -- path comes from the -report flag
	if err != nil {
		return err
	}
	defer f.Close()
	return rep.WriteJSON(f)
}
