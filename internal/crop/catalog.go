package crop

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed crop_requirements.yaml
var defaultCatalogYAML []byte

// Catalog is an immutable, name-indexed collection of crop
// requirements. Lookups are case-insensitive; enumeration order is
// stable (name ascending).
type Catalog struct {
	crops map[string]*Requirements
	names []string
}

type catalogFile struct {
	Crops map[string]*Requirements `yaml:"crops"`
}

// LoadCatalog parses a YAML catalog. Entries that fail validation are
// skipped with a warning rather than failing the whole load; an empty
// result is an error.
func LoadCatalog(data []byte, logger zerolog.Logger) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse crop catalog: %w", err)
	}

	c := &Catalog{crops: make(map[string]*Requirements, len(file.Crops))}
	for name, req := range file.Crops {
		if req == nil {
			logger.Warn().Str("crop", name).Msg("skipping empty catalog entry")
			continue
		}
		req.Name = strings.ToLower(strings.TrimSpace(name))
		if err := req.normalizeMonths(); err != nil {
			logger.Warn().Str("crop", name).Err(err).Msg("skipping invalid catalog entry")
			continue
		}
		if err := req.Validate(); err != nil {
			logger.Warn().Str("crop", name).Err(err).Msg("skipping invalid catalog entry")
			continue
		}
		c.crops[req.Name] = req
		c.names = append(c.names, req.Name)
	}

	if len(c.crops) == 0 {
		return nil, fmt.Errorf("crop catalog contains no valid entries")
	}
	sort.Strings(c.names)

	logger.Info().Int("crops", len(c.crops)).Msg("loaded crop catalog")
	return c, nil
}

// DefaultCatalog loads the embedded catalog.
func DefaultCatalog(logger zerolog.Logger) (*Catalog, error) {
	return LoadCatalog(defaultCatalogYAML, logger)
}

// Lookup returns the requirements for the named crop.
func (c *Catalog) Lookup(name string) (*Requirements, bool) {
	req, ok := c.crops[strings.ToLower(strings.TrimSpace(name))]
	return req, ok
}

// AllNames returns every crop name in ascending order. The returned
// slice is a copy.
func (c *Catalog) AllNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// ByMonth returns the names of crops grown in the given month, in
// ascending order.
func (c *Catalog) ByMonth(month time.Month) []string {
	var out []string
	for _, name := range c.names {
		if c.crops[name].GrowsIn(month) {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of crops in the catalog.
func (c *Catalog) Len() int { return len(c.crops) }
