// Package host turns externally installed LV2 plugins into element types: it
// classifies each plugin's ports, synthesizes an immutable descriptor per
// plugin kind, registers the descriptors under sanitized type names, and
// binds per-instance control storage and per-cycle audio buffers to running
// plugin instances.
package host

import (
	"log/slog"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// PortRef identifies one plugin port and the pad slot it was assigned.
type PortRef struct {
	// Index is the port's declaration index within its plugin.
	Index uint32

	// Pad is the pad slot assigned at classification time. Slots are
	// sequential per direction and only meaningful for audio ports;
	// control ports are exposed as parameters, not pads.
	Pad uint32
}

// Group is a named cluster of ports of one direction, exposed externally as
// a single multi-channel pad.
type Group struct {
	// URI is the group's declared identifier.
	URI string

	// Symbol is the group's declared symbol, or "" if it has none.
	Symbol string

	// Pad is the group's pad slot, assigned at first sighting.
	Pad uint32

	// Ports lists the member ports in discovery order, which is not
	// necessarily port index order.
	Ports []PortRef
}

// Classification buckets every supported port of one plugin by
// {audio, control} x {input, output}, with grouped ports routed into their
// group records instead of the flat audio buckets.
type Classification struct {
	GroupsIn   []Group
	GroupsOut  []Group
	AudioIn    []PortRef
	AudioOut   []PortRef
	ControlIn  []PortRef
	ControlOut []PortRef
}

// NumAudioIn returns the total number of audio input ports, grouped and
// ungrouped.
func (c *Classification) NumAudioIn() int {
	n := len(c.AudioIn)
	for _, g := range c.GroupsIn {
		n += len(g.Ports)
	}
	return n
}

// NumAudioOut returns the total number of audio output ports, grouped and
// ungrouped.
func (c *Classification) NumAudioOut() int {
	n := len(c.AudioOut)
	for _, g := range c.GroupsOut {
		n += len(g.Ports)
	}
	return n
}

func findGroup(groups []Group, uri string) *Group {
	for i := range groups {
		if groups[i].URI == uri {
			return &groups[i]
		}
	}
	return nil
}

// ClassifyPorts walks every port of the plugin exactly once, in the plugin's
// own declared index order, and buckets each one. Ports that are members of
// a group are routed into the group record for their direction, creating the
// record and assigning it the next group pad slot on first sighting.
// Ungrouped ports are classified by the audio/control class, with pad slots
// assigned to audio ports only. Grouped and ungrouped pad numbering are
// independent sequences, each starting at zero per direction.
//
// A port matching neither the audio nor the control class is dropped with a
// warning; classification of the remaining ports continues.
func ClassifyPorts(plugin lv2.Plugin, vocab lv2.Vocabulary, logger *slog.Logger) Classification {
	if logger == nil {
		logger = slog.Default()
	}

	var c Classification
	var groupInPad, groupOutPad uint32
	var audioInPad, audioOutPad uint32

	for j := uint32(0); j < plugin.NumPorts(); j++ {
		port := plugin.PortByIndex(j)
		isInput := port.IsA(vocab.InputClass)
		ref := PortRef{Index: j}

		if groupURIs := port.Values(vocab.InGroup); len(groupURIs) > 0 {
			// Port is part of a group.
			groupURI := groupURIs[0]
			groups, pad := &c.GroupsIn, &groupInPad
			if !isInput {
				groups, pad = &c.GroupsOut, &groupOutPad
			}
			g := findGroup(*groups, groupURI)
			if g == nil {
				ng := Group{URI: groupURI, Pad: *pad}
				*pad++
				if syms := plugin.Values(groupURI, vocab.Symbol); len(syms) > 0 {
					ng.Symbol = syms[0]
				}
				*groups = append(*groups, ng)
				g = &(*groups)[len(*groups)-1]
			}
			g.Ports = append(g.Ports, ref)
			continue
		}

		switch {
		case port.IsA(vocab.AudioClass):
			if isInput {
				ref.Pad = audioInPad
				audioInPad++
				c.AudioIn = append(c.AudioIn, ref)
			} else {
				ref.Pad = audioOutPad
				audioOutPad++
				c.AudioOut = append(c.AudioOut, ref)
			}
		case port.IsA(vocab.ControlClass):
			if isInput {
				c.ControlIn = append(c.ControlIn, ref)
			} else {
				c.ControlOut = append(c.ControlOut, ref)
			}
		default:
			logger.Warn("dropping port of unsupported kind",
				slog.String("plugin", plugin.URI()),
				slog.String("port", port.Symbol()),
				slog.Uint64("index", uint64(j)))
		}
	}

	return c
}
