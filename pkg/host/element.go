package host

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// Buffers carries the audio buffers the surrounding framework hands the
// element for one processing cycle. The framework owns the buffers; the
// element only borrows them for the duration of one Process call.
//
// Each slice must have one entry per corresponding pad in the descriptor.
// Group pad buffers are contiguous, at least members*nframes samples long,
// with member k occupying the sub-range [k*nframes, (k+1)*nframes).
// Ungrouped pad buffers are at least nframes samples long.
type Buffers struct {
	GroupIn  [][]float32
	AudioIn  [][]float32
	GroupOut [][]float32
	AudioOut [][]float32
}

// Element is one running pipeline element bound to a descriptor. Its
// lifecycle is a strict state machine:
//
//	uninitialized -> Setup -> configured -> Start -> activated
//	activated -> Stop -> configured -> Cleanup -> uninitialized
//
// Process is legal only while activated. Out-of-order calls fail with
// ErrStateViolation. The surrounding framework guarantees that calls on one
// element are never concurrent, so the element carries no locking.
type Element struct {
	desc   *Descriptor
	logger *slog.Logger

	instance   lv2.Instance
	sampleRate float64
	activated  bool

	controlIn  []float32
	controlOut []float32
}

// NewElement creates an uninitialized element for the given descriptor.
func NewElement(desc *Descriptor, logger *slog.Logger) *Element {
	if logger == nil {
		logger = slog.Default()
	}
	return &Element{desc: desc, logger: logger}
}

// Descriptor returns the shared descriptor this element was created from.
func (e *Element) Descriptor() *Descriptor { return e.desc }

// SampleRate returns the rate the element was configured for, or 0 while
// uninitialized.
func (e *Element) SampleRate() float64 { return e.sampleRate }

// Setup instantiates the underlying plugin at the given sample rate,
// allocates the control value storage and binds every control port to its
// slot once, by position. The bindings persist for the element's whole
// lifetime; Process reuses them unchanged.
func (e *Element) Setup(sampleRate float64) error {
	if e.instance != nil {
		return fmt.Errorf("setup: %w: already configured", ErrStateViolation)
	}

	e.logger.Debug("instantiating plugin",
		slog.String("uri", e.desc.URI),
		slog.Float64("rate", sampleRate))

	inst, err := e.desc.plugin.Instantiate(sampleRate)
	if err != nil {
		return fmt.Errorf("setup %s at %g Hz: %w: %w", e.desc.URI, sampleRate, ErrInstantiation, err)
	}
	if inst == nil {
		return fmt.Errorf("setup %s at %g Hz: %w: no instance returned", e.desc.URI, sampleRate, ErrInstantiation)
	}

	e.instance = inst
	e.sampleRate = sampleRate
	e.controlIn = make([]float32, len(e.desc.Ports.ControlIn))
	e.controlOut = make([]float32, len(e.desc.Ports.ControlOut))

	for i, ref := range e.desc.Ports.ControlIn {
		e.controlIn[i] = e.desc.Params[i].Default
		inst.ConnectPort(ref.Index, e.controlIn[i:i+1])
	}
	for i, ref := range e.desc.Ports.ControlOut {
		inst.ConnectPort(ref.Index, e.controlOut[i:i+1])
	}

	return nil
}

// Start invokes the plugin's activation hook.
func (e *Element) Start() error {
	if e.instance == nil {
		return fmt.Errorf("start: %w: not configured", ErrStateViolation)
	}
	if e.activated {
		return fmt.Errorf("start: %w: already activated", ErrStateViolation)
	}

	e.logger.Debug("activating", slog.String("uri", e.desc.URI))
	e.instance.Activate()
	e.activated = true
	return nil
}

// Stop invokes the plugin's deactivation hook. Control buffers are left
// untouched so a subsequent Start resumes with the current values.
func (e *Element) Stop() error {
	if e.instance == nil || !e.activated {
		return fmt.Errorf("stop: %w: not activated", ErrStateViolation)
	}

	e.logger.Debug("deactivating", slog.String("uri", e.desc.URI))
	e.instance.Deactivate()
	e.activated = false
	return nil
}

// Cleanup releases the underlying plugin instance. The element is invalid
// until Setup runs again.
func (e *Element) Cleanup() error {
	if e.activated {
		return fmt.Errorf("cleanup: %w: still activated", ErrStateViolation)
	}
	if e.instance == nil {
		return fmt.Errorf("cleanup: %w: not configured", ErrStateViolation)
	}

	e.logger.Debug("cleaning up", slog.String("uri", e.desc.URI))
	e.instance.Free()
	e.instance = nil
	e.sampleRate = 0
	e.controlIn = nil
	e.controlOut = nil
	return nil
}

// Process rebinds the audio buffers for this cycle and runs the plugin for
// nframes frames. Buffers are rebound every cycle because the framework may
// hand back different addresses each time; the bucket order (input groups,
// ungrouped inputs, output groups, ungrouped outputs) is fixed because some
// plugins assume sequential port connection. The hot path allocates nothing.
func (e *Element) Process(buf Buffers, nframes uint32) error {
	if e.instance == nil || !e.activated {
		return fmt.Errorf("process: %w: not activated", ErrStateViolation)
	}

	for i := range e.desc.Ports.GroupsIn {
		g := &e.desc.Ports.GroupsIn[i]
		pad := buf.GroupIn[i]
		for j, ref := range g.Ports {
			off := uint32(j) * nframes
			e.instance.ConnectPort(ref.Index, pad[off:off+nframes])
		}
	}
	for i, ref := range e.desc.Ports.AudioIn {
		e.instance.ConnectPort(ref.Index, buf.AudioIn[i])
	}
	for i := range e.desc.Ports.GroupsOut {
		g := &e.desc.Ports.GroupsOut[i]
		pad := buf.GroupOut[i]
		for j, ref := range g.Ports {
			off := uint32(j) * nframes
			e.instance.ConnectPort(ref.Index, pad[off:off+nframes])
		}
	}
	for i, ref := range e.desc.Ports.AudioOut {
		e.instance.ConnectPort(ref.Index, buf.AudioOut[i])
	}

	e.instance.Run(nframes)
	return nil
}

// SetParam sets the control input addressed by id. Ids are 1-based: control
// inputs occupy 1..len(control inputs); control outputs follow but are
// read-only, so writing them fails with ErrParamRange. Values are coerced to
// the parameter's kind: booleans store 1 for any non-zero value, integers
// are rounded. Parameter storage exists only while configured; accessing it
// earlier fails with ErrStateViolation.
func (e *Element) SetParam(id int, value float64) error {
	if e.instance == nil {
		return fmt.Errorf("set param %d: %w: not configured", id, ErrStateViolation)
	}
	idx := id - 1
	if idx < 0 || idx >= len(e.controlIn) {
		return fmt.Errorf("set param %d: %w", id, ErrParamRange)
	}

	switch e.desc.Params[idx].Kind {
	case ParamBool:
		if value != 0 {
			e.controlIn[idx] = 1
		} else {
			e.controlIn[idx] = 0
		}
	case ParamInt:
		e.controlIn[idx] = float32(math.Round(value))
	default:
		e.controlIn[idx] = float32(value)
	}
	return nil
}

// GetParam reads the parameter addressed by id from the same 1-based index
// space as SetParam: control inputs first, then control outputs.
func (e *Element) GetParam(id int) (float64, error) {
	if e.instance == nil {
		return 0, fmt.Errorf("get param %d: %w: not configured", id, ErrStateViolation)
	}
	idx := id - 1
	nIn := len(e.controlIn)
	var v float32
	switch {
	case idx < 0 || idx >= nIn+len(e.controlOut):
		return 0, fmt.Errorf("get param %d: %w", id, ErrParamRange)
	case idx < nIn:
		v = e.controlIn[idx]
	default:
		v = e.controlOut[idx-nIn]
	}

	switch e.desc.Params[idx].Kind {
	case ParamBool:
		if v > 0 {
			return 1, nil
		}
		return 0, nil
	case ParamInt:
		return math.Round(float64(v)), nil
	default:
		return float64(v), nil
	}
}
