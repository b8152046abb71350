package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/multiview/internal/config"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/placement"
)

func printLayoutUsage() {
	fmt.Fprintln(os.Stderr, "Usage: multiview layout [--area WxH] [--border N] [--iterations N] [--json] ASPECT...")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run the natural placement solver and print one rectangle per aspect.")
	fmt.Fprintln(os.Stderr, "An aspect is width/height, given as 1.78, 16:9 or 1920x1080.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Example:")
	fmt.Fprintln(os.Stderr, "  multiview layout --area 1920x930 16:9 4:3 0.5")
}

type layoutEntry struct {
	Index  int     `json:"index"`
	Aspect float64 `json:"aspect"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

type layoutResult struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Border   int           `json:"border"`
	Rects    []layoutEntry `json:"rects"`
	Coverage float64       `json:"coverage"`
}

func runLayout(args []string) int {
	defaults := config.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		defaults = cfg
	}

	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = printLayoutUsage
	areaFlag := fs.String("area", "1920x930", "Layout area as WxH")
	border := fs.Int("border", defaults.BorderMargin, "Minimum gap between windows in pixels")
	iterations := fs.Int("iterations", defaults.SolverMaxIterations, "Solver growth rounds")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "layout requires at least one aspect")
		fs.Usage()
		return 2
	}
	if *border < 0 {
		fmt.Fprintln(os.Stderr, "--border must be >= 0")
		return 2
	}

	w, h, err := parseSize(*areaFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --area: %v\n", err)
		return 2
	}
	aspects := make([]float64, 0, fs.NArg())
	for _, arg := range fs.Args() {
		a, err := parseAspect(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		aspects = append(aspects, a)
	}

	area := geom.Rect{Width: w, Height: h}
	res, err := solveLayout(aspects, area, placement.Options{BorderMargin: *border, MaxIterations: *iterations})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		return printJSON(res)
	}
	fmt.Printf("area: %dx%d  border: %d  coverage: %.1f%%\n", w, h, *border, res.Coverage*100)
	for _, e := range res.Rects {
		fmt.Printf("%3d  aspect %-6.3f  %5d,%-5d %5dx%-5d\n", e.Index, e.Aspect, e.X, e.Y, e.Width, e.Height)
	}
	return 0
}

func solveLayout(aspects []float64, area geom.Rect, opts placement.Options) (layoutResult, error) {
	rects, err := placement.SolveAspects(aspects, area, opts)
	if err != nil {
		return layoutResult{}, err
	}
	res := layoutResult{Width: area.Width, Height: area.Height, Border: opts.BorderMargin, Rects: make([]layoutEntry, 0, len(rects))}
	covered := 0
	for i, r := range rects {
		res.Rects = append(res.Rects, layoutEntry{
			Index:  i,
			Aspect: aspects[i],
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
		})
		covered += r.Area()
	}
	if area.Area() > 0 {
		res.Coverage = float64(covered) / float64(area.Area())
	}
	return res, nil
}

// parseSize parses "WxH" with both sides positive.
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: bad width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: bad height", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New("width and height must be > 0")
	}
	return w, h, nil
}

// parseAspect accepts "1.5", "16:9" and "1920x1080".
func parseAspect(s string) (float64, error) {
	for _, sep := range []string{":", "x", "/"} {
		num, den, ok := strings.Cut(strings.ToLower(s), sep)
		if !ok {
			continue
		}
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return 0, fmt.Errorf("invalid aspect %q", s)
		}
		return n / d, nil
	}
	a, err := strconv.ParseFloat(s, 64)
	if err != nil || a <= 0 {
		return 0, fmt.Errorf("invalid aspect %q", s)
	}
	return a, nil
}
