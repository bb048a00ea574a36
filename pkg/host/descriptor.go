package host

import (
	"fmt"
	"log/slog"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// ParamKind is the value kind of a parameter.
type ParamKind int

const (
	ParamFloat ParamKind = iota
	ParamInt
	ParamBool
)

func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamBool:
		return "bool"
	default:
		return "float"
	}
}

// ParameterSpec describes one control port as an externally tunable
// parameter. Names are unique within a descriptor.
type ParameterSpec struct {
	Name    string
	Kind    ParamKind
	Min     float32
	Max     float32
	Default float32

	// Writable is true for control inputs; control outputs are read-only.
	Writable bool

	// PortIndex is the underlying port's declaration index.
	PortIndex uint32
}

// PadDirection is the direction of an externally visible pad.
type PadDirection int

const (
	PadSink PadDirection = iota // audio flows into the element
	PadSrc                      // audio flows out of the element
)

func (d PadDirection) String() string {
	if d == PadSrc {
		return "src"
	}
	return "sink"
}

// PadTemplate describes one externally visible multi-channel connection
// point, synthesized from one group or one ungrouped audio port.
type PadTemplate struct {
	Name      string
	Direction PadDirection

	// Slot is the pad's position within its bucket (grouped or ungrouped)
	// and direction.
	Slot uint32

	// Channels is the number of interleaved sub-channels multiplexed into
	// this pad's buffer: the group's member count, or 1 for an ungrouped
	// port.
	Channels uint32
}

// Category is the coarse functional role derived from a plugin's port shape.
type Category int

const (
	CategoryFilter Category = iota
	CategorySource
	CategorySink
	CategoryAnalyzerSink
)

func (c Category) String() string {
	switch c {
	case CategorySource:
		return "Source/Audio/LV2"
	case CategorySink:
		return "Sink/Audio/LV2"
	case CategoryAnalyzerSink:
		return "Sink/Analyzer/Audio/LV2"
	default:
		return "Filter/Effect/Audio/LV2"
	}
}

// Descriptor is the synthesized, immutable schema for one plugin kind:
// channel/pad layout, parameter specs and functional tags. It is created
// once per distinct plugin kind during discovery, shared by all instances,
// and never mutated afterwards.
type Descriptor struct {
	URI    string
	Name   string
	Author string

	Category    Category
	InPlaceSafe bool

	// Ports is the underlying classification the descriptor was built from.
	Ports Classification

	// Pads lists the pad templates: input groups, output groups, ungrouped
	// audio inputs, ungrouped audio outputs, in that order.
	Pads []PadTemplate

	// Params lists the parameter specs: control inputs first, then control
	// outputs, each in classification order.
	Params []ParameterSpec

	plugin lv2.Plugin
}

// Plugin returns the underlying plugin handle the descriptor was synthesized
// from.
func (d *Descriptor) Plugin() lv2.Plugin { return d.plugin }

// Synthesize builds the descriptor for one plugin from its classification.
// It is pure with respect to the plugin handle: synthesizing the same handle
// twice yields structurally identical descriptors.
//
// A declared default outside its declared bounds widens the bound to include
// the default and logs a warning. Two control ports sharing a symbol are an
// error: the parameter namespace must be collision-free.
func Synthesize(plugin lv2.Plugin, ports Classification, vocab lv2.Vocabulary, logger *slog.Logger) (*Descriptor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Descriptor{
		URI:    plugin.URI(),
		Ports:  ports,
		plugin: plugin,
	}

	// Input and output group pads, one per group, multiplexing all member
	// ports as interleaved sub-channels.
	for j, g := range ports.GroupsIn {
		d.Pads = append(d.Pads, PadTemplate{
			Name:      groupPadName(g),
			Direction: PadSink,
			Slot:      uint32(j),
			Channels:  uint32(len(g.Ports)),
		})
	}
	for j, g := range ports.GroupsOut {
		d.Pads = append(d.Pads, PadTemplate{
			Name:      groupPadName(g),
			Direction: PadSrc,
			Slot:      uint32(j),
			Channels:  uint32(len(g.Ports)),
		})
	}

	// Ungrouped audio ports become mono pads named after the port symbol.
	for j, ref := range ports.AudioIn {
		d.Pads = append(d.Pads, PadTemplate{
			Name:      plugin.PortByIndex(ref.Index).Symbol(),
			Direction: PadSink,
			Slot:      uint32(j),
			Channels:  1,
		})
	}
	for j, ref := range ports.AudioOut {
		d.Pads = append(d.Pads, PadTemplate{
			Name:      plugin.PortByIndex(ref.Index).Symbol(),
			Direction: PadSrc,
			Slot:      uint32(j),
			Channels:  1,
		})
	}

	seen := make(map[string]struct{}, len(ports.ControlIn)+len(ports.ControlOut))
	for _, ref := range ports.ControlIn {
		spec := paramSpec(plugin, ref, vocab, true, logger)
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateParam, spec.Name, plugin.URI())
		}
		seen[spec.Name] = struct{}{}
		d.Params = append(d.Params, spec)
	}
	for _, ref := range ports.ControlOut {
		spec := paramSpec(plugin, ref, vocab, false, logger)
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateParam, spec.Name, plugin.URI())
		}
		seen[spec.Name] = struct{}{}
		d.Params = append(d.Params, spec)
	}

	d.Name = plugin.Name()
	if d.Name == "" {
		d.Name = "no description available"
	}
	d.Author = plugin.Author()
	if d.Author == "" {
		d.Author = "no author available"
	}

	switch {
	case ports.NumAudioIn() == 0:
		d.Category = CategorySource
	case ports.NumAudioOut() == 0:
		if len(ports.ControlOut) == 0 {
			d.Category = CategorySink
		} else {
			d.Category = CategoryAnalyzerSink
		}
	default:
		d.Category = CategoryFilter
	}

	d.InPlaceSafe = !plugin.HasFeature(vocab.InPlaceBroken)

	return d, nil
}

// groupPadName returns the group's symbol, or a generated name for groups
// that declare none. Pad templates need a usable name either way.
func groupPadName(g Group) string {
	if g.Symbol != "" {
		return g.Symbol
	}
	return fmt.Sprintf("group_%d", g.Pad)
}

func paramSpec(plugin lv2.Plugin, ref PortRef, vocab lv2.Vocabulary, writable bool, logger *slog.Logger) ParameterSpec {
	port := plugin.PortByIndex(ref.Index)
	spec := ParameterSpec{
		Name:      port.Symbol(),
		Writable:  writable,
		PortIndex: ref.Index,
	}

	if port.HasProperty(vocab.ToggledProperty) {
		spec.Kind = ParamBool
		return spec
	}

	def, min, max := port.Range()
	lower, upper, dflt := float32(0), float32(1), float32(0)
	if def != nil {
		dflt = *def
	}
	if min != nil {
		lower = *min
	}
	if max != nil {
		upper = *max
	}

	// A default outside the declared range widens the range; clamping the
	// default would drop information the plugin author chose.
	if dflt < lower {
		logger.Warn("default below lower bound, widening",
			slog.String("plugin", plugin.URI()),
			slog.String("param", spec.Name),
			slog.Float64("lower", float64(lower)),
			slog.Float64("default", float64(dflt)))
		lower = dflt
	}
	if dflt > upper {
		logger.Warn("default above upper bound, widening",
			slog.String("plugin", plugin.URI()),
			slog.String("param", spec.Name),
			slog.Float64("upper", float64(upper)),
			slog.Float64("default", float64(dflt)))
		upper = dflt
	}

	if port.HasProperty(vocab.IntegerProperty) {
		spec.Kind = ParamInt
	} else {
		spec.Kind = ParamFloat
	}
	spec.Min = lower
	spec.Max = upper
	spec.Default = dflt

	return spec
}
