package host

import (
	"testing"

	"github.com/chriscow/lv2host-go/pkg/lv2"
	"github.com/chriscow/lv2host-go/pkg/lv2/fake"
)

func fptr(v float32) *float32 { return &v }

// stereoAmp builds the canonical test plugin: a stereo pair in, a stereo
// pair out, one float gain control.
func stereoAmp() *fake.Plugin {
	return fake.NewPlugin("http://example.org/plugins/amp").
		AddAudioPort("in_l", true, "urn:amp#in").
		AddAudioPort("in_r", true, "urn:amp#in").
		AddAudioPort("out_l", false, "urn:amp#out").
		AddAudioPort("out_r", false, "urn:amp#out").
		AddControlPort("gain", true, fptr(1), fptr(0), fptr(2)).
		SetGroupSymbol("urn:amp#in", "in").
		SetGroupSymbol("urn:amp#out", "out")
}

func TestClassifyPorts_StereoGroups(t *testing.T) {
	vocab := lv2.CoreVocabulary()
	c := ClassifyPorts(stereoAmp(), vocab, nil)

	if len(c.GroupsIn) != 1 || len(c.GroupsOut) != 1 {
		t.Fatalf("expected 1 group per direction, got %d in / %d out", len(c.GroupsIn), len(c.GroupsOut))
	}
	if len(c.AudioIn) != 0 || len(c.AudioOut) != 0 {
		t.Errorf("grouped ports must not land in the flat audio buckets")
	}
	if len(c.ControlIn) != 1 || len(c.ControlOut) != 0 {
		t.Errorf("expected 1 control input, got %d in / %d out", len(c.ControlIn), len(c.ControlOut))
	}

	in := c.GroupsIn[0]
	if in.Symbol != "in" || in.Pad != 0 {
		t.Errorf("input group = %q pad %d, want %q pad 0", in.Symbol, in.Pad, "in")
	}
	if len(in.Ports) != 2 || in.Ports[0].Index != 0 || in.Ports[1].Index != 1 {
		t.Errorf("input group members = %v, want indexes 0,1 in discovery order", in.Ports)
	}

	out := c.GroupsOut[0]
	if out.Symbol != "out" || out.Pad != 0 {
		t.Errorf("output group = %q pad %d, want %q pad 0", out.Symbol, out.Pad, "out")
	}
	if c.ControlIn[0].Index != 4 {
		t.Errorf("control input index = %d, want 4", c.ControlIn[0].Index)
	}
}

func TestClassifyPorts_IndependentPadNumbering(t *testing.T) {
	// One grouped input pair plus one ungrouped input: both the group and
	// the ungrouped port get slot 0 of their own sequence.
	p := fake.NewPlugin("urn:test:mixed").
		AddAudioPort("main_l", true, "urn:mixed#main").
		AddAudioPort("main_r", true, "urn:mixed#main").
		AddAudioPort("sidechain", true, "").
		AddAudioPort("out", false, "")

	c := ClassifyPorts(p, lv2.CoreVocabulary(), nil)

	if c.GroupsIn[0].Pad != 0 {
		t.Errorf("group pad = %d, want 0", c.GroupsIn[0].Pad)
	}
	if c.AudioIn[0].Pad != 0 {
		t.Errorf("ungrouped input pad = %d, want 0", c.AudioIn[0].Pad)
	}
	if c.AudioOut[0].Pad != 0 {
		t.Errorf("ungrouped output pad = %d, want 0 (sequences are per direction)", c.AudioOut[0].Pad)
	}
}

func TestClassifyPorts_UnsupportedPortDropped(t *testing.T) {
	vocab := lv2.CoreVocabulary()
	p := fake.NewPlugin("urn:test:midi").
		AddAudioPort("in", true, "").
		AddPort(fake.PortConfig{
			Symbol:  "events",
			Classes: []string{"http://lv2plug.in/ns/ext/event#EventPort", vocab.InputClass},
		}).
		AddAudioPort("out", false, "")

	c := ClassifyPorts(p, vocab, nil)

	if got := len(c.AudioIn) + len(c.AudioOut) + len(c.ControlIn) + len(c.ControlOut); got != 2 {
		t.Fatalf("expected 2 classified ports, got %d", got)
	}
	// Classification continues past the dropped port.
	if c.AudioOut[0].Index != 2 {
		t.Errorf("output port index = %d, want 2", c.AudioOut[0].Index)
	}
	if c.AudioOut[0].Pad != 0 {
		t.Errorf("output pad = %d, want 0", c.AudioOut[0].Pad)
	}
}

func TestClassifyPorts_GroupMemberDiscoveryOrder(t *testing.T) {
	// Members interleaved with other ports keep their discovery order, and
	// the group record is created at first sighting.
	p := fake.NewPlugin("urn:test:interleaved").
		AddAudioPort("a_r", true, "urn:i#a"). // declared right first
		AddAudioPort("solo", true, "").
		AddAudioPort("a_l", true, "urn:i#a")

	c := ClassifyPorts(p, lv2.CoreVocabulary(), nil)

	if len(c.GroupsIn) != 1 {
		t.Fatalf("expected 1 input group, got %d", len(c.GroupsIn))
	}
	g := c.GroupsIn[0]
	if len(g.Ports) != 2 || g.Ports[0].Index != 0 || g.Ports[1].Index != 2 {
		t.Errorf("group members = %v, want indexes 0,2 in discovery order", g.Ports)
	}
}

func TestClassifyPorts_GroupWithoutSymbol(t *testing.T) {
	p := fake.NewPlugin("urn:test:nosym").
		AddAudioPort("in_l", true, "urn:nosym#g").
		AddAudioPort("in_r", true, "urn:nosym#g")

	c := ClassifyPorts(p, lv2.CoreVocabulary(), nil)

	if len(c.GroupsIn) != 1 {
		t.Fatalf("expected 1 input group, got %d", len(c.GroupsIn))
	}
	if c.GroupsIn[0].Symbol != "" {
		t.Errorf("symbol = %q, want empty for undeclared group symbol", c.GroupsIn[0].Symbol)
	}
}
