package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/chriscow/lv2host-go/pkg/lv2"
)

// Catalog drives the one-time startup discovery: it loads the plugin world,
// classifies and synthesizes a descriptor for every plugin, and registers
// the resulting element types. Discovery runs exactly once per catalog;
// later Discover calls return the first scan's result. Plugins installed
// after the scan are not picked up.
type Catalog struct {
	world    lv2.World
	registry *Registry
	vocab    lv2.Vocabulary
	logger   *slog.Logger

	once  sync.Once
	types []*ElementType
	err   error
}

// NewCatalog creates a catalog over the given world. The vocabulary is
// resolved here, once, before any discovery or instantiation runs. A nil
// registry means DefaultRegistry(), a nil logger means slog.Default().
func NewCatalog(world lv2.World, registry *Registry, logger *slog.Logger) *Catalog {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		world:    world,
		registry: registry,
		vocab:    lv2.CoreVocabulary(),
		logger:   logger,
	}
}

// Vocabulary returns the vocabulary resolved at catalog construction.
func (c *Catalog) Vocabulary() lv2.Vocabulary { return c.vocab }

// Discover scans the world and returns the element types registered from
// it. A plugin that fails to synthesize or collides on its sanitized type
// name is skipped with a warning; only a failure to load the world itself
// fails the scan.
func (c *Catalog) Discover() ([]*ElementType, error) {
	c.once.Do(c.scan)
	return c.types, c.err
}

func (c *Catalog) scan() {
	if err := c.world.LoadAll(); err != nil {
		c.err = fmt.Errorf("loading plugin world: %w", err)
		return
	}

	for _, plugin := range c.world.Plugins() {
		ports := ClassifyPorts(plugin, c.vocab, c.logger)
		desc, err := Synthesize(plugin, ports, c.vocab, c.logger)
		if err != nil {
			c.logger.Warn("skipping plugin",
				slog.String("uri", plugin.URI()),
				slog.String("error", err.Error()))
			continue
		}

		t := &ElementType{
			Name:       SanitizeTypeName(plugin.URI()),
			Descriptor: desc,
		}
		if !c.registry.Register(t) {
			continue
		}
		c.types = append(c.types, t)

		c.logger.Debug("registered element type",
			slog.String("name", t.Name),
			slog.String("category", desc.Category.String()))
	}
}
