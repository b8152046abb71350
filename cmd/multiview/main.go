package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/multiview/internal/config"
	"github.com/1broseidon/multiview/internal/daemon"
	"github.com/1broseidon/multiview/internal/ipc"
	"github.com/1broseidon/multiview/internal/logging"
	"github.com/1broseidon/multiview/internal/platform"
	"github.com/1broseidon/multiview/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: multiview daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: multiview daemon")
			os.Exit(2)
		}
		runDaemon()
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "show":
		os.Exit(runSetActive("show", true, os.Args[2:]))
	case "hide":
		os.Exit(runSetActive("hide", false, os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "desktop":
		os.Exit(runDesktop(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "sim":
		os.Exit(runSim(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: multiview <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the multiview daemon (foreground)")
	fmt.Fprintln(w, "  toggle              Open or close the overview")
	fmt.Fprintln(w, "  show                Open the overview")
	fmt.Fprintln(w, "  hide                Close the overview")
	fmt.Fprintln(w, "  status              Show daemon and overview status")
	fmt.Fprintln(w, "  reload              Ask the daemon to reload its config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  desktop append      Add a desktop at the end")
	fmt.Fprintln(w, "  desktop remove N    Remove desktop N")
	fmt.Fprintln(w, "  desktop switch N    Make desktop N current")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout              Run the placement solver on aspect ratios")
	fmt.Fprintln(w, "  sim                 Run the overview in a simulated desktop")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'multiview <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set that accepts no positional arguments.
// ok is false when the caller should return code.
func parseNoArgs(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multiview toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the overview when closed, close it otherwise.")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().Toggle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("phase: %s\n", data.Phase)
	return 0
}

func runSetActive(name string, active bool, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: multiview %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		if active {
			fmt.Fprintln(os.Stderr, "Open the overview. No-op when it is already open or opening.")
		} else {
			fmt.Fprintln(os.Stderr, "Close the overview. No-op when it is already closed or closing.")
		}
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().SetActive(active)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !data.Changed {
		fmt.Printf("phase: %s (unchanged)\n", data.Phase)
		return 0
	}
	fmt.Printf("phase: %s\n", data.Phase)
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multiview status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("phase:           %s\n", status.Phase)
	if status.Phase == "opening" || status.Phase == "closing" {
		fmt.Printf("progress:        %.2f\n", status.Progress)
	}
	fmt.Printf("desktop_count:   %d\n", status.DesktopCount)
	fmt.Printf("current_desktop: %d\n", status.CurrentDesktop)
	fmt.Printf("target_desktop:  %d\n", status.TargetDesktop)
	fmt.Printf("windows:         %d\n", status.Windows)
	fmt.Printf("displayed:       %d\n", status.Displayed)
	if status.Highlighted != 0 {
		fmt.Printf("highlighted:     0x%x\n", uint32(status.Highlighted))
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multiview reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Re-read the config file in the running daemon.")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := logging.Init(cfg.Logging, "")
	if err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}
	defer closeLog()

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	d := daemon.New(backend, daemon.Options{
		Config:     cfg,
		LoadConfig: config.Load,
		Logger:     logger,
	})

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Fatalf("Failed to resolve IPC socket: %v", err)
	}
	ipcServer := ipc.NewServer(socketPath, d, logger)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hupCh:
				logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}
