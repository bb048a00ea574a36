// Package fake provides a programmable in-memory implementation of the lv2
// interfaces for testing hosts without any installed plugins.
package fake

import (
	"errors"
	"fmt"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// ErrInstantiateRefused is returned by Instantiate when FailInstantiate is set.
var ErrInstantiateRefused = errors.New("fake: instantiation refused")

// PortConfig describes one declared port of a fake plugin.
type PortConfig struct {
	Symbol     string
	Classes    []string // class URIs, e.g. vocab.AudioClass
	Properties []string // property URIs, e.g. vocab.IntegerProperty
	GroupURI   string   // non-empty if the port is a member of a group
	Default    *float32
	Min        *float32
	Max        *float32
}

// Plugin is a fake lv2.Plugin built from literal port declarations.
// Configure the fields, then hand it to the code under test.
type Plugin struct {
	PluginURI    string
	PluginName   string
	PluginAuthor string
	Features     []string
	PortConfigs  []PortConfig

	// GroupSymbols maps group URIs to their declared symbols. Groups
	// without an entry have no symbol annotation.
	GroupSymbols map[string]string

	// FailInstantiate makes Instantiate return ErrInstantiateRefused.
	FailInstantiate bool

	// Instances records every instance handed out, in creation order.
	Instances []*Instance

	vocab lv2.Vocabulary
}

// NewPlugin creates a fake plugin with the given URI and no ports.
func NewPlugin(uri string) *Plugin {
	return &Plugin{
		PluginURI:    uri,
		GroupSymbols: make(map[string]string),
		vocab:        lv2.CoreVocabulary(),
	}
}

// AddAudioPort declares an audio port. groupURI may be empty for an
// ungrouped port. Returns the plugin for chaining.
func (p *Plugin) AddAudioPort(symbol string, input bool, groupURI string) *Plugin {
	return p.AddPort(PortConfig{
		Symbol:   symbol,
		Classes:  []string{p.vocab.AudioClass, p.directionClass(input)},
		GroupURI: groupURI,
	})
}

// AddControlPort declares a control port with the given range. Any of def,
// min, max may be nil to leave the value undeclared.
func (p *Plugin) AddControlPort(symbol string, input bool, def, min, max *float32, properties ...string) *Plugin {
	return p.AddPort(PortConfig{
		Symbol:     symbol,
		Classes:    []string{p.vocab.ControlClass, p.directionClass(input)},
		Properties: properties,
		Default:    def,
		Min:        min,
		Max:        max,
	})
}

// AddPort declares a port from an explicit config.
func (p *Plugin) AddPort(cfg PortConfig) *Plugin {
	p.PortConfigs = append(p.PortConfigs, cfg)
	return p
}

// SetGroupSymbol declares the symbol annotation for a group URI.
func (p *Plugin) SetGroupSymbol(groupURI, symbol string) *Plugin {
	p.GroupSymbols[groupURI] = symbol
	return p
}

func (p *Plugin) directionClass(input bool) string {
	if input {
		return p.vocab.InputClass
	}
	return p.vocab.OutputClass
}

func (p *Plugin) URI() string    { return p.PluginURI }
func (p *Plugin) Name() string   { return p.PluginName }
func (p *Plugin) Author() string { return p.PluginAuthor }

func (p *Plugin) NumPorts() uint32 { return uint32(len(p.PortConfigs)) }

func (p *Plugin) PortByIndex(index uint32) lv2.Port {
	return &Port{plugin: p, index: index}
}

func (p *Plugin) HasFeature(featureURI string) bool {
	for _, f := range p.Features {
		if f == featureURI {
			return true
		}
	}
	return false
}

func (p *Plugin) Values(subjectURI, predicateURI string) []string {
	if predicateURI != p.vocab.Symbol {
		return nil
	}
	if sym, ok := p.GroupSymbols[subjectURI]; ok {
		return []string{sym}
	}
	return nil
}

func (p *Plugin) Instantiate(sampleRate float64) (lv2.Instance, error) {
	if p.FailInstantiate {
		return nil, fmt.Errorf("%w: %s", ErrInstantiateRefused, p.PluginURI)
	}
	inst := &Instance{
		SampleRate:  sampleRate,
		Connections: make(map[uint32][]float32),
	}
	p.Instances = append(p.Instances, inst)
	return inst, nil
}

// Port implements lv2.Port over one PortConfig.
type Port struct {
	plugin *Plugin
	index  uint32
}

func (p *Port) cfg() *PortConfig { return &p.plugin.PortConfigs[p.index] }

func (p *Port) Index() uint32  { return p.index }
func (p *Port) Symbol() string { return p.cfg().Symbol }

func (p *Port) IsA(classURI string) bool {
	for _, c := range p.cfg().Classes {
		if c == classURI {
			return true
		}
	}
	return false
}

func (p *Port) HasProperty(propertyURI string) bool {
	for _, prop := range p.cfg().Properties {
		if prop == propertyURI {
			return true
		}
	}
	return false
}

func (p *Port) Values(predicateURI string) []string {
	if predicateURI == p.plugin.vocab.InGroup && p.cfg().GroupURI != "" {
		return []string{p.cfg().GroupURI}
	}
	return nil
}

func (p *Port) Range() (def, min, max *float32) {
	c := p.cfg()
	return c.Default, c.Min, c.Max
}

// Instance is a fake lv2.Instance that records every call so tests can
// assert on connection order, offsets and lifecycle transitions.
type Instance struct {
	SampleRate float64

	// Connections holds the most recent buffer bound to each port index.
	Connections map[uint32][]float32

	ActivateCalls   int
	DeactivateCalls int
	FreeCalls       int
	Active          bool

	// RunFrames records the nframes argument of every Run call.
	RunFrames []uint32

	// OnRun, if set, is invoked by Run after recording. Tests use it to
	// simulate processing against the connected buffers.
	OnRun func(inst *Instance, nframes uint32)
}

func (i *Instance) ConnectPort(index uint32, buf []float32) {
	i.Connections[index] = buf
}

func (i *Instance) Activate() {
	i.ActivateCalls++
	i.Active = true
}

func (i *Instance) Deactivate() {
	i.DeactivateCalls++
	i.Active = false
}

func (i *Instance) Run(nframes uint32) {
	i.RunFrames = append(i.RunFrames, nframes)
	if i.OnRun != nil {
		i.OnRun(i, nframes)
	}
}

func (i *Instance) Free() { i.FreeCalls++ }
