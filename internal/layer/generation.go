package layer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOption is wrapped by every *ConfigError.
	ErrUnsupportedOption = errors.New("option not supported")
	// ErrInvalidSpec reports a malformed layer spec or override.
	ErrInvalidSpec = errors.New("invalid layer spec")
	// ErrClosed is returned by render functions of a closed factory.
	ErrClosed = errors.New("layer factory closed")
	// ErrReleased is returned by a layer drawn after Release.
	ErrReleased = errors.New("layer released")
)

// Generation selects the capability set of the factory.
type Generation int

const (
	// Generation1 draws with a fixed vertex array and default pipeline state.
	Generation1 Generation = 1
	// Generation2 supports every option, including per-frame vertex array
	// and transform feedback swaps.
	Generation2 Generation = 2
)

// Phase is when a configuration check runs.
type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseRender Phase = "render"
)

// ConfigError names an option the current generation cannot honor.
type ConfigError struct {
	Option     string
	Phase      Phase
	Generation Generation
}

func (e *ConfigError) Error() string {
	if e.Phase == PhaseRender {
		return fmt.Sprintf("updating option %q in a render call is not supported by generation %d", e.Option, e.Generation)
	}
	return fmt.Sprintf("option %q is not supported by generation %d", e.Option, e.Generation)
}

func (e *ConfigError) Unwrap() error {
	return ErrUnsupportedOption
}

var gen1Create = []string{
	OptInstanceCount,
	OptBlend,
	OptDepthTest,
	OptCullBackfaces,
	OptRasterize,
	OptTransformFeedback,
	OptFramebuffer,
}

var gen1Render = append([]string{OptVertexArray}, gen1Create...)

// unsupported lists the options g rejects in phase.
func (g Generation) unsupported(phase Phase) []string {
	if g != Generation1 {
		return nil
	}
	if phase == PhaseRender {
		return gen1Render
	}
	return gen1Create
}

// check returns a *ConfigError for the first unsupported option present.
func (g Generation) check(phase Phase, has func(string) bool) error {
	for _, opt := range g.unsupported(phase) {
		if has(opt) {
			return &ConfigError{Option: opt, Phase: phase, Generation: g}
		}
	}
	return nil
}

func (g Generation) valid() bool {
	return g == Generation1 || g == Generation2
}
