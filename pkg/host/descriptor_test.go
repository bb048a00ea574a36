package host

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matryer/is"

	"github.com/chriscow/lv2host-go/pkg/lv2"
	"github.com/chriscow/lv2host-go/pkg/lv2/fake"
)

func synthesize(t *testing.T, p *fake.Plugin) *Descriptor {
	t.Helper()
	vocab := lv2.CoreVocabulary()
	d, err := Synthesize(p, ClassifyPorts(p, vocab, nil), vocab, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	return d
}

func TestSynthesize_StereoScenario(t *testing.T) {
	is := is.New(t)

	p := stereoAmp()
	p.PluginName = "Stereo Amplifier"
	p.PluginAuthor = "Example Author"
	d := synthesize(t, p)

	is.Equal(len(d.Ports.GroupsIn), 1)           // one input group
	is.Equal(len(d.Ports.GroupsIn[0].Ports), 2)  // with two members
	is.Equal(len(d.Ports.GroupsOut), 1)          // one output group
	is.Equal(len(d.Ports.GroupsOut[0].Ports), 2) // with two members
	is.Equal(d.Category, CategoryFilter)         // both audio directions present

	is.Equal(len(d.Pads), 2)
	is.Equal(d.Pads[0], PadTemplate{Name: "in", Direction: PadSink, Slot: 0, Channels: 2})
	is.Equal(d.Pads[1], PadTemplate{Name: "out", Direction: PadSrc, Slot: 0, Channels: 2})

	is.Equal(len(d.Params), 1)
	is.Equal(d.Params[0], ParameterSpec{
		Name:      "gain",
		Kind:      ParamFloat,
		Min:       0,
		Max:       2,
		Default:   1,
		Writable:  true,
		PortIndex: 4,
	})

	is.Equal(d.Name, "Stereo Amplifier")
	is.Equal(d.Author, "Example Author")
	is.True(d.InPlaceSafe) // inPlaceBroken not declared
}

func TestSynthesize_Deterministic(t *testing.T) {
	p := stereoAmp()
	a := synthesize(t, p)
	b := synthesize(t, p)

	if !reflect.DeepEqual(a.Pads, b.Pads) {
		t.Errorf("pads differ between syntheses:\n%v\n%v", a.Pads, b.Pads)
	}
	if !reflect.DeepEqual(a.Params, b.Params) {
		t.Errorf("params differ between syntheses:\n%v\n%v", a.Params, b.Params)
	}
	if !reflect.DeepEqual(a.Ports, b.Ports) {
		t.Errorf("classifications differ between syntheses")
	}
	if a.Category != b.Category || a.InPlaceSafe != b.InPlaceSafe {
		t.Errorf("tags differ between syntheses")
	}
}

func TestSynthesize_WidensBounds(t *testing.T) {
	p := fake.NewPlugin("urn:test:bounds").
		AddControlPort("drive", true, fptr(1.5), fptr(0), fptr(1)).
		AddControlPort("floor", true, fptr(-1), fptr(0), fptr(1))
	d := synthesize(t, p)

	drive := d.Params[0]
	if drive.Max < 1.5 {
		t.Errorf("upper bound = %g, want >= 1.5 (widened to include default)", drive.Max)
	}
	if drive.Default != 1.5 {
		t.Errorf("default = %g, want 1.5 (never clamped)", drive.Default)
	}

	floor := d.Params[1]
	if floor.Min > -1 {
		t.Errorf("lower bound = %g, want <= -1 (widened to include default)", floor.Min)
	}
}

func TestSynthesize_UndeclaredRangeDefaults(t *testing.T) {
	p := fake.NewPlugin("urn:test:norange").
		AddControlPort("amount", true, nil, nil, nil)
	d := synthesize(t, p)

	got := d.Params[0]
	if got.Min != 0 || got.Max != 1 || got.Default != 0 {
		t.Errorf("range = [%g, %g] default %g, want [0, 1] default 0", got.Min, got.Max, got.Default)
	}
}

func TestSynthesize_ParamKinds(t *testing.T) {
	vocab := lv2.CoreVocabulary()
	p := fake.NewPlugin("urn:test:kinds").
		AddControlPort("bypass", true, nil, nil, nil, vocab.ToggledProperty).
		AddControlPort("steps", true, fptr(2), fptr(1), fptr(8), vocab.IntegerProperty).
		AddControlPort("mix", true, fptr(0.5), fptr(0), fptr(1)).
		AddControlPort("level", false, nil, fptr(0), fptr(1))
	d := synthesize(t, p)

	if d.Params[0].Kind != ParamBool {
		t.Errorf("toggled port kind = %v, want bool", d.Params[0].Kind)
	}
	if d.Params[1].Kind != ParamInt {
		t.Errorf("integer port kind = %v, want int", d.Params[1].Kind)
	}
	if d.Params[2].Kind != ParamFloat {
		t.Errorf("plain port kind = %v, want float", d.Params[2].Kind)
	}
	if !d.Params[2].Writable {
		t.Errorf("control input must be writable")
	}
	if d.Params[3].Writable {
		t.Errorf("control output must be read-only")
	}
}

func TestSynthesize_DuplicateParamName(t *testing.T) {
	p := fake.NewPlugin("urn:test:dup").
		AddControlPort("gain", true, nil, nil, nil).
		AddControlPort("gain", false, nil, nil, nil)

	vocab := lv2.CoreVocabulary()
	_, err := Synthesize(p, ClassifyPorts(p, vocab, nil), vocab, nil)
	if !errors.Is(err, ErrDuplicateParam) {
		t.Fatalf("err = %v, want ErrDuplicateParam", err)
	}
}

func TestSynthesize_Categories(t *testing.T) {
	tests := []struct {
		name  string
		build func() *fake.Plugin
		want  Category
	}{
		{
			name: "no audio inputs is a source",
			build: func() *fake.Plugin {
				return fake.NewPlugin("urn:c:source").
					AddAudioPort("out", false, "").
					AddControlPort("freq", true, nil, nil, nil)
			},
			want: CategorySource,
		},
		{
			name: "audio in, no outputs at all is a sink",
			build: func() *fake.Plugin {
				return fake.NewPlugin("urn:c:sink").
					AddAudioPort("in", true, "")
			},
			want: CategorySink,
		},
		{
			name: "audio in with control outputs is an analyzer sink",
			build: func() *fake.Plugin {
				return fake.NewPlugin("urn:c:analyzer").
					AddAudioPort("in", true, "").
					AddControlPort("rms", false, nil, nil, nil)
			},
			want: CategoryAnalyzerSink,
		},
		{
			name: "both directions is a filter",
			build: func() *fake.Plugin {
				return fake.NewPlugin("urn:c:filter").
					AddAudioPort("in", true, "").
					AddAudioPort("out", false, "")
			},
			want: CategoryFilter,
		},
		{
			name: "grouped-only audio counts for the shape",
			build: func() *fake.Plugin {
				return fake.NewPlugin("urn:c:grouped").
					AddAudioPort("in_l", true, "urn:c#in").
					AddAudioPort("in_r", true, "urn:c#in").
					AddAudioPort("out_l", false, "urn:c#out").
					AddAudioPort("out_r", false, "urn:c#out")
			},
			want: CategoryFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := synthesize(t, tt.build()).Category; got != tt.want {
				t.Errorf("category = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesize_UngroupedOutputPadsAreSrc(t *testing.T) {
	p := fake.NewPlugin("urn:test:mono").
		AddAudioPort("in", true, "").
		AddAudioPort("out", false, "")
	d := synthesize(t, p)

	var out *PadTemplate
	for i := range d.Pads {
		if d.Pads[i].Name == "out" {
			out = &d.Pads[i]
		}
	}
	if out == nil {
		t.Fatal("no pad template for ungrouped output port")
	}
	if out.Direction != PadSrc {
		t.Errorf("ungrouped output pad direction = %v, want src", out.Direction)
	}
}

func TestSynthesize_GroupPadNameFallback(t *testing.T) {
	p := fake.NewPlugin("urn:test:nosym").
		AddAudioPort("in_l", true, "urn:nosym#g").
		AddAudioPort("in_r", true, "urn:nosym#g")
	d := synthesize(t, p)

	if d.Pads[0].Name != "group_0" {
		t.Errorf("pad name = %q, want generated fallback %q", d.Pads[0].Name, "group_0")
	}
}

func TestSynthesize_MetadataFallbacks(t *testing.T) {
	d := synthesize(t, fake.NewPlugin("urn:test:bare").AddAudioPort("out", false, ""))

	if d.Name != "no description available" {
		t.Errorf("name = %q, want fallback", d.Name)
	}
	if d.Author != "no author available" {
		t.Errorf("author = %q, want fallback", d.Author)
	}
}

func TestSynthesize_InPlaceBroken(t *testing.T) {
	vocab := lv2.CoreVocabulary()
	p := fake.NewPlugin("urn:test:broken").AddAudioPort("in", true, "").AddAudioPort("out", false, "")
	p.Features = []string{vocab.InPlaceBroken}

	if d := synthesize(t, p); d.InPlaceSafe {
		t.Error("plugin declaring inPlaceBroken must not be marked in-place safe")
	}
}
