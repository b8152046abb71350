package motion

import "strings"

// Easing maps linear progress in [0,1] to eased progress in [0,1].
type Easing func(t float64) float64

var (
	EaseLinear Easing = func(t float64) float64 { return t }

	EaseSmoothstep Easing = func(t float64) float64 {
		return t * t * (3.0 - 2.0*t)
	}

	// EaseSmootherstep has zero first and second derivatives at both ends.
	EaseSmootherstep Easing = func(t float64) float64 {
		return t * t * t * (t*(t*6.0-15.0) + 10.0)
	}

	EaseOutQuad Easing = func(t float64) float64 {
		return t * (2.0 - t)
	}

	EaseOutCubic Easing = func(t float64) float64 {
		t1 := t - 1.0
		return t1*t1*t1 + 1.0
	}

	EaseInOutCubic Easing = func(t float64) float64 {
		if t < 0.5 {
			return 4.0 * t * t * t
		}
		t1 := 2.0*t - 2.0
		return 1.0 + t1*t1*t1*0.5
	}
)

var easingsByName = map[string]Easing{
	"linear":       EaseLinear,
	"smoothstep":   EaseSmoothstep,
	"smootherstep": EaseSmootherstep,
	"out-quad":     EaseOutQuad,
	"out-cubic":    EaseOutCubic,
	"in-out-cubic": EaseInOutCubic,
}

// EasingByName looks up an easing curve by its config name.
func EasingByName(name string) (Easing, bool) {
	e, ok := easingsByName[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// EasingNames lists the accepted config names.
func EasingNames() []string {
	return []string{"linear", "smoothstep", "smootherstep", "out-quad", "out-cubic", "in-out-cubic"}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
