// lintgate-doctor inspects whether a project is ready for a gate run:
// target directory, configuration sources, virtual environment, and the
// lint tools installed inside it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrossi/lintgate"
	"github.com/jrossi/lintgate/toolcache"
	"github.com/jrossi/lintgate/venv"
)

var version = "dev"

func main() {
	var (
		venvPath    = flag.String("venv", "", "Virtual environment path, relative to the target (default \"venv\")")
		showVersion = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lintgate-doctor - check a project's readiness for lintgate\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [target-dir]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExit codes:\n")
		fmt.Fprintf(os.Stderr, "  0 - ready to run\n")
		fmt.Fprintf(os.Stderr, "  3 - environment problems found\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("lintgate-doctor version %s\n", version)
		os.Exit(0)
	}

	target := "."
	if args := flag.Args(); len(args) == 1 {
		target = args[0]
	} else if len(args) > 1 {
		flag.Usage()
		os.Exit(int(lintgate.ExitUsageError))
	}

	healthy := true

	abs, err := filepath.Abs(target)
	if err == nil {
		if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		fmt.Printf("target      %s: MISSING (%v)\n", target, err)
		os.Exit(int(lintgate.ExitEnvironmentError))
	}
	fmt.Printf("target      %s\n", abs)

	if loader, err := lintgate.NewConfigLoader(abs); err == nil {
		config, cfgErr := loader.LoadConfig()
		if cfgErr != nil {
			fmt.Printf("config      INVALID: %v\n", cfgErr)
			healthy = false
		} else {
			fmt.Printf("config      gate=%v\n", config.Gate)
			for _, path := range loader.ConfigPaths() {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("            found %s\n", path)
				}
			}
		}
		if config != nil && *venvPath == "" && config.VenvPath != nil {
			*venvPath = *config.VenvPath
		}
	}

	if *venvPath == "" {
		*venvPath = "venv"
	}

	env, err := venv.Resolve(abs, *venvPath)
	if err != nil {
		fmt.Printf("venv        %s: %v\n", *venvPath, err)
		os.Exit(int(lintgate.ExitEnvironmentError))
	}
	fmt.Printf("venv        %s\n", env.Root)

	cache, cacheErr := toolcache.Open(abs)
	for _, tool := range []string{"python", "flake8", "ruff"} {
		var path string
		var lookErr error
		if cacheErr == nil {
			info, err := cache.Lookup(tool, env.Look)
			if err == nil && info.Available {
				path = info.Path
				if info.Version != "" {
					path += " (" + info.Version + ")"
				}
			} else {
				lookErr = fmt.Errorf("not installed in venv")
			}
		} else {
			path, lookErr = env.Look(tool)
		}

		if lookErr != nil {
			fmt.Printf("tool        %-8s MISSING\n", tool)
			if tool == "flake8" {
				healthy = false
			}
			continue
		}
		fmt.Printf("tool        %-8s %s\n", tool, path)
	}

	if !healthy {
		os.Exit(int(lintgate.ExitEnvironmentError))
	}
}
