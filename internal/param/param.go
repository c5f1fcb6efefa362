package param

import (
	"errors"
	"fmt"
	"math"
)

// Taper selects the curve relating a relative position to a raw value.
type Taper int

const (
	Linear Taper = iota
	// Logarithmic is octave-proportional: equal relative steps multiply the
	// value by equal ratios.
	Logarithmic
)

func (t Taper) String() string {
	switch t {
	case Linear:
		return "lin"
	case Logarithmic:
		return "log"
	default:
		return fmt.Sprintf("Taper(%d)", int(t))
	}
}

// ErrConfiguration is returned for bounds a Parameter cannot be built with.
var ErrConfiguration = errors.New("param: invalid configuration")

// Parameter holds a raw value with bounds and a fixed taper.
// It is not safe for concurrent use.
type Parameter struct {
	value    float64
	min      float64
	max      float64
	taper    Taper
	onChange func(float64)
}

// New returns a Parameter. Bounds must satisfy min < max, both must be
// strictly positive under Logarithmic, and initial must lie in [min, max].
// Out-of-range initial values are rejected, not clamped.
func New(initial, max, min float64, taper Taper) (*Parameter, error) {
	if err := validate(initial, max, min, taper); err != nil {
		return nil, err
	}
	return &Parameter{value: initial, min: min, max: max, taper: taper}, nil
}

func validate(initial, max, min float64, taper Taper) error {
	for _, v := range []float64{initial, max, min} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %v", ErrConfiguration, v)
		}
	}
	if taper != Linear && taper != Logarithmic {
		return fmt.Errorf("%w: unknown taper %v", ErrConfiguration, taper)
	}
	if min >= max {
		return fmt.Errorf("%w: min %v must be below max %v", ErrConfiguration, min, max)
	}
	if taper == Logarithmic && min <= 0 {
		return fmt.Errorf("%w: logarithmic taper needs positive bounds, got min %v", ErrConfiguration, min)
	}
	if initial < min || initial > max {
		return fmt.Errorf("%w: initial %v outside [%v, %v]", ErrConfiguration, initial, min, max)
	}
	return nil
}

// Must unwraps a constructor result and panics on error. Use it for fixed defaults only.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func (p *Parameter) Value() float64 { return p.value }
func (p *Parameter) Min() float64 { return p.min }
func (p *Parameter) Max() float64 { return p.max }
func (p *Parameter) Taper() Taper { return p.taper }

// SetValue writes the raw value and notifies the change callback.
func (p *Parameter) SetValue(v float64) {
	p.value = v
	if p.onChange != nil {
		p.onChange(v)
	}
}

// OnChange installs the change callback, replacing any previous one.
// A nil fn removes it.
func (p *Parameter) OnChange(fn func(float64)) {
	p.onChange = fn
}

// Relative returns the value as a position between the bounds under the
// parameter's taper. It is NaN for non-positive values under Logarithmic.
func (p *Parameter) Relative() float64 {
	return Normalize(p.value, p.min, p.max, p.taper)
}

// SetRelative maps r back onto the raw range and writes it through SetValue.
// r is not clamped: values outside [0, 1] extrapolate past the bounds.
func (p *Parameter) SetRelative(r float64) {
	p.SetValue(Denormalize(r, p.min, p.max, p.taper))
}

// Normalize maps v in [min, max] to [0, 1] under taper.
func Normalize(v, min, max float64, taper Taper) float64 {
	if taper == Logarithmic {
		if v <= 0 {
			return math.NaN()
		}
		v, min, max = math.Log2(v), math.Log2(min), math.Log2(max)
	}
	return (v - min) / (max - min)
}

// Denormalize is the inverse of Normalize.
func Denormalize(r, min, max float64, taper Taper) float64 {
	if taper == Logarithmic {
		lmin, lmax := math.Log2(min), math.Log2(max)
		return math.Pow(2, r*(lmax-lmin)+lmin)
	}
	return r*(max-min) + min
}

func (p *Parameter) String() string {
	return fmt.Sprintf("%g [%g..%g %s]", p.value, p.min, p.max, p.taper)
}
