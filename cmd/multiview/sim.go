package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/multiview/internal/tui"
)

func runSim(args []string) int {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/multiview/config.yaml)")
	windows := fs.Int("windows", 6, "Windows to start with, spread across desktops")
	desktops := fs.Int("desktops", 2, "Desktops to start with")
	seed := fs.Uint64("seed", 1, "Seed for window placement and sizes")
	screen := fs.String("screen", "1920x1080", "Virtual screen size as WxH")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multiview sim [--windows N] [--desktops N] [--seed N] [--screen WxH] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the overview against a simulated window manager in the terminal.")
		fmt.Fprintln(os.Stderr, "No X server is needed. Press ? inside for key bindings.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}
	if *windows < 0 || *desktops < 1 {
		fmt.Fprintln(os.Stderr, "--windows must be >= 0 and --desktops >= 1")
		return 2
	}
	w, h, err := parseSize(*screen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --screen: %v\n", err)
		return 2
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts := tui.Options{
		Config:   res.Config,
		Windows:  *windows,
		Desktops: *desktops,
		Seed:     *seed,
	}
	opts.Screen.Width, opts.Screen.Height = w, h
	if err := tui.Run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
