package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/multiview/internal/ipc"
)

func printDesktopUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: multiview desktop <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  append      Add a desktop at the end")
	fmt.Fprintln(w, "  remove N    Remove desktop N; its windows move to the previous desktop")
	fmt.Fprintln(w, "  switch N    Make desktop N current (clamped to the desktop count)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Desktops are numbered from 1.")
}

func runDesktop(args []string) int {
	if len(args) == 0 {
		printDesktopUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "append", "add":
		return runDesktopAppend(args[1:])
	case "remove", "rm":
		return runDesktopIndexed("remove", args[1:], func(c *ipc.Client, n int) (*ipc.DesktopData, error) {
			return c.RemoveDesktop(n)
		})
	case "switch":
		return runDesktopIndexed("switch", args[1:], func(c *ipc.Client, n int) (*ipc.DesktopData, error) {
			return c.ChangeCurrentDesktop(n)
		})
	case "help", "-h", "--help":
		printDesktopUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown desktop command: %s\n\n", args[0])
		printDesktopUsage(os.Stderr)
		return 2
	}
}

func runDesktopAppend(args []string) int {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multiview desktop append")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().AppendDesktop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printDesktopData(data)
	return 0
}

func runDesktopIndexed(name string, args []string, call func(*ipc.Client, int) (*ipc.DesktopData, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: multiview desktop %s N\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	n, err := parseDesktopIndex(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := call(ipc.NewClient(), n)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if name == "remove" && !data.Removed {
		fmt.Fprintf(os.Stderr, "desktop %d was not removed\n", n)
		printDesktopData(data)
		return 1
	}
	printDesktopData(data)
	return 0
}

func parseDesktopIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid desktop %q: must be a number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid desktop %d: desktops are numbered from 1", n)
	}
	return n, nil
}

func printDesktopData(data *ipc.DesktopData) {
	fmt.Printf("desktop_count:   %d\n", data.DesktopCount)
	fmt.Printf("current_desktop: %d\n", data.CurrentDesktop)
}
