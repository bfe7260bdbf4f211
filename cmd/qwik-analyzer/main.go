package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
	mcpserver "github.com/thejackshelton/qwik-analyzer/pkg/mcp"
	"github.com/thejackshelton/qwik-analyzer/pkg/runner"
	"github.com/thejackshelton/qwik-analyzer/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadProjectConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load project config: %v\n", err)
		os.Exit(1)
	}

	logCfg := util.DefaultLoggerConfig()
	logCfg.Level = util.LogLevel(resolveLogLevel(flagValue("--log-level"), cfg))
	if cfg != nil && cfg.LogFormat != "" {
		logCfg.Format = util.LogFormat(cfg.LogFormat)
	}
	logger := util.NewLogger(logCfg)
	util.SetDefault(logger)

	maxDepth := 0
	if cfg != nil {
		maxDepth = cfg.MaxDepth
	}
	an := analyzer.New(analyzer.Config{Logger: logger, MaxDepth: maxDepth})
	defer an.Close()

	command := os.Args[1]
	switch command {
	case "analyze":
		file := firstPositional()
		if file == "" {
			fmt.Fprintln(os.Stderr, "usage: qwik-analyzer analyze <file>")
			os.Exit(1)
		}
		result, err := an.Analyze(file, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))

	case "apply":
		file := firstPositional()
		if file == "" {
			fmt.Fprintln(os.Stderr, "usage: qwik-analyzer apply [--write] <file>")
			os.Exit(1)
		}
		patched, err := an.AnalyzeAndApply(file, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "transformation failed: %v\n", err)
			os.Exit(1)
		}
		if hasFlag("--write") {
			if err := os.WriteFile(file, []byte(patched), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", file, err)
				os.Exit(1)
			}
		} else {
			fmt.Print(patched)
		}

	case "scan":
		root := firstPositional()
		if root == "" {
			root = "."
		}
		report, err := runner.RunBatch(an, root, resolveScanConfig(cfg), hasFlag("--write"), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
			os.Exit(1)
		}
		for _, res := range report.Results {
			if hasFlag("--write") && res.Patched != "" {
				if err := os.WriteFile(res.FilePath, []byte(res.Patched), 0o644); err != nil {
					fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", res.FilePath, err)
				}
				continue
			}
			if res.Result != nil && res.Result.HasComponent {
				fmt.Printf("%s: %d patches\n", res.FilePath, len(res.Result.Transformations))
			}
		}
		for _, ferr := range report.Errors {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ferr.FilePath, ferr.Error)
		}
		if len(report.Errors) > 0 {
			os.Exit(1)
		}

	case "watch":
		root := firstPositional()
		if root == "" {
			root = "."
		}
		opts := runner.DefaultWatchOptions()
		opts.Apply = hasFlag("--write")
		if cfg != nil && cfg.Debounce > 0 {
			opts.DebounceMs = cfg.Debounce
		}
		fw, err := runner.NewFileWatcher(an, opts, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start watcher: %v\n", err)
			os.Exit(1)
		}
		if err := fw.Start(root); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start watcher: %v\n", err)
			os.Exit(1)
		}
		defer fw.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		for {
			select {
			case res := <-fw.Results():
				if res.Err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", res.FilePath, res.Err)
				} else if res.Result != nil && res.Result.HasComponent {
					fmt.Printf("%s: %d patches\n", res.FilePath, len(res.Result.Transformations))
				}
			case <-sigCh:
				return
			}
		}

	case "serve":
		srv := mcpserver.NewServer(an, logger)
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("qwik-analyzer %s\n", version)

	case "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// firstPositional returns the first non-flag argument after the command.
func firstPositional() string {
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		if args[i] == "--log-level" {
			i++
			continue
		}
		if len(args[i]) > 2 && args[i][:2] == "--" {
			continue
		}
		return args[i]
	}
	return ""
}

func hasFlag(name string) bool {
	for _, arg := range os.Args[2:] {
		if arg == name {
			return true
		}
	}
	return false
}

// flagValue returns the value following a --flag argument, or "".
func flagValue(name string) string {
	args := os.Args[2:]
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func printUsage() {
	fmt.Println("Usage: qwik-analyzer <command> [flags] [path]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze <file>          Report presence verdicts and patches for one file")
	fmt.Println("  apply [--write] <file>  Print (or write) the patched source for one file")
	fmt.Println("  scan [--write] [dir]    Analyze every source file under a directory")
	fmt.Println("  watch [--write] [dir]   Re-analyze files as they change")
	fmt.Println("  serve                   Start the MCP server on stdin/stdout")
	fmt.Println("  version                 Print version")
	fmt.Println("  help                    Show this help message")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --log-level <level>     debug, info, warn, or error")
	fmt.Println("  --write                 Write patched source back to disk")
}
