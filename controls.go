package websynth

import (
	"fmt"
	"sort"

	"github.com/jurgenbelien/websynth-go/internal/param"
)

// Controls are the user-facing parameters of the synth. Their change
// callbacks are owned by the Synth that created them.
type Controls struct {
	Tempo param.Tempo

	OscDecay      param.Duration
	Osc1EnvAmount *param.Parameter
	Osc1Frequency *param.Parameter
	Osc1Level     *param.Parameter
	Osc2EnvAmount *param.Parameter
	Osc2Frequency *param.Parameter
	Osc2Level     *param.Parameter

	NoiseLevel *param.Parameter

	FilterCutoff    *param.Parameter
	FilterResonance *param.Parameter
	FilterDecay     param.Duration
	FilterEnvAmount *param.Parameter
	FilterModAmount *param.Parameter

	OutputDecay param.Duration
	OutputLevel *param.Parameter
}

func defaultControls() *Controls {
	must := param.Must[*param.Parameter]
	return &Controls{
		Tempo: param.Must(param.NewTempo(120, 360, 10)),

		OscDecay:      param.Must(param.NewDuration(50, 1000, 0)),
		Osc1EnvAmount: must(param.NewLinear(0.02, 1, -1)),
		Osc1Frequency: must(param.NewLog(50, 20000, 20)),
		Osc1Level:     must(param.NewLinear(1, 1, 0)),
		Osc2EnvAmount: must(param.NewLinear(0, 1, -1)),
		Osc2Frequency: must(param.NewLog(500, 20000, 20)),
		Osc2Level:     must(param.NewLinear(1, 1, 0)),

		NoiseLevel: must(param.NewLinear(0, 1, 0)),

		FilterCutoff:    must(param.NewLog(20, 20000, 20)),
		FilterResonance: must(param.NewLog(1, 1000, 0.0001)),
		FilterDecay:     param.Must(param.NewDuration(1000, 1000, 0)),
		FilterEnvAmount: must(param.NewLinear(1, 1, -1)),
		FilterModAmount: must(param.NewLog(8000, 10000, 0.0001)),

		OutputDecay: param.Must(param.NewDuration(125, 1000, 0)),
		OutputLevel: must(param.NewLinear(0.5, 1, 0)),
	}
}

// byName indexes every control under its stable name.
func (c *Controls) byName() map[string]*param.Parameter {
	return map[string]*param.Parameter{
		"tempo":             c.Tempo.Parameter,
		"osc.decay":         c.OscDecay.Parameter,
		"osc1.env_amount":   c.Osc1EnvAmount,
		"osc1.frequency":    c.Osc1Frequency,
		"osc1.level":        c.Osc1Level,
		"osc2.env_amount":   c.Osc2EnvAmount,
		"osc2.frequency":    c.Osc2Frequency,
		"osc2.level":        c.Osc2Level,
		"noise.level":       c.NoiseLevel,
		"filter.cutoff":     c.FilterCutoff,
		"filter.resonance":  c.FilterResonance,
		"filter.decay":      c.FilterDecay.Parameter,
		"filter.env_amount": c.FilterEnvAmount,
		"filter.mod_amount": c.FilterModAmount,
		"output.decay":      c.OutputDecay.Parameter,
		"output.level":      c.OutputLevel,
	}
}

// ControlNames returns the names accepted by Synth.SetControl, sorted.
func ControlNames() []string {
	names := make([]string, 0, 16)
	for name := range defaultControls().byName() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Controls) lookup(name string) (*param.Parameter, error) {
	p, ok := c.byName()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	return p, nil
}
