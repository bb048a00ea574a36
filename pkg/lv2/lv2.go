// Package lv2 defines the host-side view of the LV2 plugin world: the
// vocabulary of well-known URIs used for introspection and the interfaces a
// plugin repository must implement so the host can classify ports, synthesize
// element descriptors and run plugin instances.
//
// The package deliberately contains no discovery or processing logic of its
// own. Concrete worlds (see pkg/lv2/manifest) and test doubles (see
// pkg/lv2/fake) implement these interfaces; pkg/host consumes them.
package lv2

const (
	coreNS       = "http://lv2plug.in/ns/lv2core#"
	portGroupsNS = "http://lv2plug.in/ns/dev/port-groups#"
)

// Vocabulary holds the well-known URIs the host resolves once at startup and
// treats as read-only afterwards. Every introspection question the host asks
// a plugin is phrased in terms of these URIs.
type Vocabulary struct {
	// Port classes.
	AudioClass   string
	ControlClass string
	InputClass   string
	OutputClass  string

	// Port properties.
	IntegerProperty string
	ToggledProperty string

	// Plugin features.
	InPlaceBroken string

	// Predicates.
	InGroup string
	Symbol  string
}

// CoreVocabulary returns the standard LV2 core and port-groups vocabulary.
func CoreVocabulary() Vocabulary {
	return Vocabulary{
		AudioClass:      coreNS + "AudioPort",
		ControlClass:    coreNS + "ControlPort",
		InputClass:      coreNS + "InputPort",
		OutputClass:     coreNS + "OutputPort",
		IntegerProperty: coreNS + "integer",
		ToggledProperty: coreNS + "toggled",
		InPlaceBroken:   coreNS + "inPlaceBroken",
		InGroup:         portGroupsNS + "inGroup",
		Symbol:          coreNS + "symbol",
	}
}

// World is a repository of installed plugins. LoadAll scans the search
// locations; it is called exactly once per process, before any instance
// exists. Plugins installed after the scan are not picked up.
type World interface {
	LoadAll() error
	Plugins() []Plugin
}

// Plugin is one discovered plugin. The world owns the handle for the process
// lifetime; the host only references it.
type Plugin interface {
	// URI returns the plugin's own declared, globally unique URI.
	URI() string

	// Name returns the human-readable plugin name, or "" if undeclared.
	Name() string

	// Author returns the declared author name, or "" if undeclared.
	Author() string

	// NumPorts returns the number of declared ports.
	NumPorts() uint32

	// PortByIndex returns the port at the given declaration index.
	// Indexes run 0..NumPorts()-1.
	PortByIndex(index uint32) Port

	// HasFeature reports whether the plugin declares the given feature URI.
	HasFeature(featureURI string) bool

	// Values returns the objects of all (subject, predicate, object)
	// statements in the plugin's data with the given subject and predicate.
	// Used to resolve annotations on non-port subjects such as port groups.
	Values(subjectURI, predicateURI string) []string

	// Instantiate creates a runnable instance at the given sample rate.
	Instantiate(sampleRate float64) (Instance, error)
}

// Port is a single connection point declared by a plugin.
type Port interface {
	// Index returns the port's declaration index within its plugin.
	Index() uint32

	// Symbol returns the port's symbol, a short stable identifier.
	Symbol() string

	// IsA reports whether the port belongs to the given port class.
	IsA(classURI string) bool

	// HasProperty reports whether the port declares the given property URI.
	HasProperty(propertyURI string) bool

	// Values returns the objects of statements about this port with the
	// given predicate, e.g. the group URI for the inGroup predicate.
	Values(predicateURI string) []string

	// Range returns the declared default, minimum and maximum control
	// values. A nil pointer means the plugin declared no such value.
	Range() (def, min, max *float32)
}

// Instance is one running instantiation of a plugin. The host connects
// buffers by port index and drives the run step; the instance performs no
// buffer ownership of its own.
//
// Lifecycle: ConnectPort may be called any time between instantiation and
// Free. Run may only be called between Activate and Deactivate. Free must be
// the last call.
type Instance interface {
	// ConnectPort binds the port at index to buf for subsequent Run calls.
	// Control ports are bound to length-1 slices.
	ConnectPort(index uint32, buf []float32)

	Activate()
	Deactivate()

	// Run processes nframes frames using the currently connected buffers.
	Run(nframes uint32)

	// Free releases the instance. The instance must not be active.
	Free()
}
