package icons

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"weather-panel/internal/model"
)

const unknownIcon = "wi-na.png"

// Fixed auxiliary icons with static filenames. These bypass the condition
// mapping table but go through the same directory and generation mechanism.
var auxiliaryIcons = map[string]string{
	"humidity":             "wi-humidity.png",
	"precipitation":        "wi-raindrops.png",
	"wind":                 "wi-strong-wind.png",
	"precipitation_chance": "wi-umbrella.png",
}

// Config selects the icon set and the resources it resolves against.
type Config struct {
	ImageDir    string
	MappingFile string
	ImageSet    string // light, dark, or custom
	ImageColor  string // custom only, hex or CSS color name
	SVGDir      string // custom only, vector template directory
}

// Resolver maps condition codes to icon asset paths. In custom mode it
// generates recolored PNGs from SVG templates on first use and serves later
// lookups from the filesystem.
type Resolver struct {
	dir         string
	set         string
	color       string
	svgDir      string
	mappings    mappingTable
	group       singleflight.Group
	generations atomic.Int64
}

// Generations returns how many assets have been rasterized so far.
func (r *Resolver) Generations() int64 {
	return r.generations.Load()
}

// NewResolver validates the icon configuration and loads the mapping table.
// Any failure here is a startup configuration error.
func NewResolver(cfg Config) (*Resolver, error) {
	r := &Resolver{set: cfg.ImageSet, svgDir: cfg.SVGDir}

	switch cfg.ImageSet {
	case "light", "dark":
		r.dir = filepath.Join(cfg.ImageDir, cfg.ImageSet)
		if !hasImages(r.dir) {
			return nil, fmt.Errorf("image directory %s has no png assets", r.dir)
		}
	case "custom":
		color, err := NormalizeColor(cfg.ImageColor)
		if err != nil {
			return nil, err
		}
		r.color = color
		if info, err := os.Stat(cfg.SVGDir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid svg template directory %s", cfg.SVGDir)
		}
		r.dir = filepath.Join(cfg.ImageDir, color)
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating image directory %s: %w", r.dir, err)
		}
	default:
		return nil, fmt.Errorf("invalid image_set %q: choose light, dark, or custom", cfg.ImageSet)
	}

	mappings, err := loadMappings(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	r.mappings = mappings

	log.Printf("Icons initialized: set=%s dir=%s mappings=%d", cfg.ImageSet, r.dir, len(mappings))
	return r, nil
}

func hasImages(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".png") {
			return true
		}
	}
	return false
}

// HasImage reports whether the mapping table can serve the pair without
// falling back to the unknown-condition asset.
func (r *Resolver) HasImage(conditionID int, conditionTime model.TimeOfDay) bool {
	_, ok := r.mappings.lookup(conditionID, conditionTime)
	return ok
}

// Resolve returns the asset path for a condition. Unmapped conditions and
// generation failures degrade to the unknown-condition asset so the display
// loop never loses its icon.
func (r *Resolver) Resolve(conditionID int, conditionTime model.TimeOfDay) string {
	filename, ok := r.mappings.lookup(conditionID, conditionTime)
	if !ok {
		return r.Unknown()
	}
	return r.pathFor(filename)
}

// Icon returns the path of one of the fixed auxiliary icons by name.
func (r *Resolver) Icon(name string) string {
	filename, ok := auxiliaryIcons[name]
	if !ok {
		filename = unknownIcon
	}
	return r.pathFor(filename)
}

// Unknown returns the unknown-condition asset path.
func (r *Resolver) Unknown() string {
	path := filepath.Join(r.dir, unknownIcon)
	if err := r.ensureGenerated(unknownIcon); err != nil {
		log.Printf("Error generating %s: %v", unknownIcon, err)
	}
	return path
}

func (r *Resolver) pathFor(filename string) string {
	if err := r.ensureGenerated(filename); err != nil {
		log.Printf("Error generating %s: %v", filename, err)
		if filename != unknownIcon {
			return r.Unknown()
		}
	}
	return filepath.Join(r.dir, filename)
}
