package icons

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Generated icons are rasterized to a fixed square resolution.
const rasterSize = 300

// ensureGenerated makes sure the named asset exists in the active
// directory. Non-custom sets ship their PNGs, so only custom mode ever
// generates. Generation is memoized against the filesystem; concurrent
// requests for the same filename share a single generation.
func (r *Resolver) ensureGenerated(filename string) error {
	if r.set != "custom" {
		return nil
	}
	target := filepath.Join(r.dir, filename)
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	_, err, _ := r.group.Do(filename, func() (interface{}, error) {
		// Re-check under the singleflight lock; an earlier caller may
		// have finished the write already.
		if _, err := os.Stat(target); err == nil {
			return nil, nil
		}
		return nil, r.generate(filename, target)
	})
	return err
}

// generate loads the SVG template for the filename's base name, substitutes
// the style declaration with the configured color, rasterizes it, and
// atomically renames the result into place.
func (r *Resolver) generate(filename, target string) error {
	r.generations.Add(1)
	templatePath := filepath.Join(r.svgDir, strings.TrimSuffix(filename, ".png")+".svg")
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading svg template: %w", err)
	}

	recolored := strings.ReplaceAll(string(content), `style="`,
		fmt.Sprintf(`style="fill:%s;stroke:%s;`, r.color, r.color))

	icon, err := oksvg.ReadIconStream(strings.NewReader(recolored), oksvg.WarnErrorMode)
	if err != nil {
		return fmt.Errorf("parsing svg template %s: %w", templatePath, err)
	}
	icon.SetTarget(0, 0, rasterSize, rasterSize)

	img := image.NewRGBA(image.Rect(0, 0, rasterSize, rasterSize))
	scanner := rasterx.NewScannerGV(rasterSize, rasterSize, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(rasterSize, rasterSize, scanner), 1)

	tmp, err := os.CreateTemp(r.dir, filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing generated icon: %w", err)
	}
	return nil
}
