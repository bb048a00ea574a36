// Package manifest implements an lv2.World backed by YAML plugin manifests.
// Each search path is scanned once for *.yaml/*.yml files; every file
// declares one plugin: its URI, metadata, features, ports and port groups.
// A file that fails to parse is skipped with a warning, never aborting the
// scan.
//
// Manifests describe topology only. To make a plugin instantiable, the
// embedding host attaches a native run-step factory to its URI with
// RegisterNative; plugins without one refuse to instantiate.
package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// ErrNoNative is returned by Instantiate for plugins with no registered
// native factory.
var ErrNoNative = errors.New("no native implementation registered")

// NativeFactory creates a runnable instance of one plugin at the given
// sample rate.
type NativeFactory func(sampleRate float64) (lv2.Instance, error)

// World is a manifest-backed lv2.World.
type World struct {
	paths  []string
	logger *slog.Logger
	vocab  lv2.Vocabulary

	mu      sync.RWMutex
	natives map[string]NativeFactory
	plugins []lv2.Plugin
	loaded  bool
}

// NewWorld creates a world scanning the given search paths. A nil logger
// means slog.Default().
func NewWorld(paths []string, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		paths:   paths,
		logger:  logger,
		vocab:   lv2.CoreVocabulary(),
		natives: make(map[string]NativeFactory),
	}
}

// RegisterNative attaches a run-step factory to a plugin URI. Later
// registrations for the same URI replace earlier ones.
func (w *World) RegisterNative(uri string, factory NativeFactory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.natives[uri] = factory
}

// LoadAll scans every search path for manifest files. Unreadable paths and
// malformed manifests produce warnings and are skipped.
func (w *World) LoadAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loaded {
		return nil
	}
	w.loaded = true

	seen := make(map[string]struct{})
	for _, dir := range w.paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Warn("skipping unreadable plugin path",
				slog.String("path", dir),
				slog.String("error", err.Error()))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			p, err := w.loadManifest(path)
			if err != nil {
				w.logger.Warn("skipping malformed plugin manifest",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			if _, dup := seen[p.m.URI]; dup {
				w.logger.Warn("skipping duplicate plugin URI",
					slog.String("path", path),
					slog.String("uri", p.m.URI))
				continue
			}
			seen[p.m.URI] = struct{}{}
			w.plugins = append(w.plugins, p)
		}
	}
	return nil
}

// Plugins returns the plugins found by LoadAll.
func (w *World) Plugins() []lv2.Plugin {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.plugins
}

type pluginManifest struct {
	URI      string          `yaml:"uri"`
	Name     string          `yaml:"name"`
	Author   string          `yaml:"author"`
	Features []string        `yaml:"features"`
	Ports    []portManifest  `yaml:"ports"`
	Groups   []groupManifest `yaml:"groups"`
}

type portManifest struct {
	Symbol     string         `yaml:"symbol"`
	Classes    []string       `yaml:"classes"`
	Properties []string       `yaml:"properties"`
	Group      string         `yaml:"group"`
	Range      *rangeManifest `yaml:"range"`
}

type rangeManifest struct {
	Default *float32 `yaml:"default"`
	Minimum *float32 `yaml:"minimum"`
	Maximum *float32 `yaml:"maximum"`
}

type groupManifest struct {
	URI    string `yaml:"uri"`
	Symbol string `yaml:"symbol"`
}

func (w *World) loadManifest(path string) (*plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m pluginManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.URI == "" {
		return nil, fmt.Errorf("%s: manifest declares no plugin uri", path)
	}
	for i, pm := range m.Ports {
		if pm.Symbol == "" {
			return nil, fmt.Errorf("%s: port %d declares no symbol", path, i)
		}
	}

	groupSymbols := make(map[string]string, len(m.Groups))
	for _, g := range m.Groups {
		if g.Symbol != "" {
			groupSymbols[g.URI] = g.Symbol
		}
	}

	return &plugin{world: w, m: m, groupSymbols: groupSymbols}, nil
}

// classURI resolves a manifest shorthand ("audio", "control", "input",
// "output") to its vocabulary URI. Full URIs pass through untouched.
func (w *World) classURI(s string) string {
	switch s {
	case "audio":
		return w.vocab.AudioClass
	case "control":
		return w.vocab.ControlClass
	case "input":
		return w.vocab.InputClass
	case "output":
		return w.vocab.OutputClass
	default:
		return s
	}
}

func (w *World) propertyURI(s string) string {
	switch s {
	case "integer":
		return w.vocab.IntegerProperty
	case "toggled":
		return w.vocab.ToggledProperty
	default:
		return s
	}
}

func (w *World) featureURI(s string) string {
	if s == "inPlaceBroken" {
		return w.vocab.InPlaceBroken
	}
	return s
}

type plugin struct {
	world        *World
	m            pluginManifest
	groupSymbols map[string]string
}

func (p *plugin) URI() string    { return p.m.URI }
func (p *plugin) Name() string   { return p.m.Name }
func (p *plugin) Author() string { return p.m.Author }

func (p *plugin) NumPorts() uint32 { return uint32(len(p.m.Ports)) }

func (p *plugin) PortByIndex(index uint32) lv2.Port {
	return &port{plugin: p, index: index}
}

func (p *plugin) HasFeature(featureURI string) bool {
	for _, f := range p.m.Features {
		if p.world.featureURI(f) == featureURI {
			return true
		}
	}
	return false
}

func (p *plugin) Values(subjectURI, predicateURI string) []string {
	if predicateURI != p.world.vocab.Symbol {
		return nil
	}
	if sym, ok := p.groupSymbols[subjectURI]; ok {
		return []string{sym}
	}
	return nil
}

func (p *plugin) Instantiate(sampleRate float64) (lv2.Instance, error) {
	p.world.mu.RLock()
	factory := p.world.natives[p.m.URI]
	p.world.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoNative, p.m.URI)
	}
	return factory(sampleRate)
}

type port struct {
	plugin *plugin
	index  uint32
}

func (p *port) cfg() *portManifest { return &p.plugin.m.Ports[p.index] }

func (p *port) Index() uint32  { return p.index }
func (p *port) Symbol() string { return p.cfg().Symbol }

func (p *port) IsA(classURI string) bool {
	for _, c := range p.cfg().Classes {
		if p.plugin.world.classURI(c) == classURI {
			return true
		}
	}
	return false
}

func (p *port) HasProperty(propertyURI string) bool {
	for _, prop := range p.cfg().Properties {
		if p.plugin.world.propertyURI(prop) == propertyURI {
			return true
		}
	}
	return false
}

func (p *port) Values(predicateURI string) []string {
	if predicateURI == p.plugin.world.vocab.InGroup && p.cfg().Group != "" {
		return []string{p.cfg().Group}
	}
	return nil
}

func (p *port) Range() (def, min, max *float32) {
	r := p.cfg().Range
	if r == nil {
		return nil, nil, nil
	}
	return r.Default, r.Minimum, r.Maximum
}
