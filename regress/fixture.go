// Package regress drives rendering regression checks: a fixture file
// describes an original snippet, a modification applied to it and how the
// two rendered results are compared.
package regress

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"texsvg/config"
	"texsvg/convert"
	"texsvg/geom"
)

// render area selectors
const (
	AreaDrawing  = "drawing"
	AreaDocument = "document"
)

// EditSpec is one edit action in a fixture. Zero fields of the modified
// block inherit from the original block.
type EditSpec struct {
	Text         string   `yaml:"text,omitempty"`
	PreambleFile string   `yaml:"preamble-file,omitempty"`
	TexCommand   string   `yaml:"tex-command,omitempty"`
	Converter    string   `yaml:"converter,omitempty"`
	ScaleFactor  *float64 `yaml:"scale-factor,omitempty"`
	FontSizePt   *float64 `yaml:"font-size-pt,omitempty"`
	Alignment    string   `yaml:"alignment,omitempty"`
}

// RenderSpec controls rasterization of the compared documents. DPI and
// Height are mutually exclusive.
type RenderSpec struct {
	DPI        float64 `yaml:"dpi,omitempty"`
	Height     int     `yaml:"height,omitempty"`
	RenderArea string  `yaml:"render-area,omitempty"`
}

// CompareSpec holds comparison tolerances. Fuzz is a color distance in
// percent ("10%"), pixels closer than that count as equal. Tolerances are
// pointers so an explicit zero is distinct from an absent key.
type CompareSpec struct {
	Fuzz            string   `yaml:"fuzz,omitempty"`
	SizeAbsTol      *int     `yaml:"size-abs-tol,omitempty"`
	SizeRelTol      *float64 `yaml:"size-rel-tol,omitempty"`
	PixelDiffAbsTol *int     `yaml:"pixel-diff-abs-tol,omitempty"`
	PixelDiffRelTol *float64 `yaml:"pixel-diff-rel-tol,omitempty"`
}

type CheckSpec struct {
	Render  RenderSpec  `yaml:"render,omitempty"`
	Compare CompareSpec `yaml:"compare,omitempty"`
}

// Fixture is one regression case.
type Fixture struct {
	Original EditSpec  `yaml:"original"`
	Modified EditSpec  `yaml:"modified,omitempty"`
	Check    CheckSpec `yaml:"check,omitempty"`
}

// defaults matching the historical harness
const (
	defaultSizeAbsTol      = 10
	defaultSizeRelTol      = 0.005
	defaultPixelDiffAbsTol = 50
	defaultPixelDiffRelTol = 0.001
)

// ParseFixture reads a fixture description. YAML is a superset of JSON so
// both fixture flavors decode here. Unknown keys are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var fix Fixture

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fix); err != nil {
		return nil, fmt.Errorf("unable to decode fixture: %w", err)
	}

	if fix.Check.Compare.SizeAbsTol == nil {
		fix.Check.Compare.SizeAbsTol = intPtr(defaultSizeAbsTol)
	}
	if fix.Check.Compare.SizeRelTol == nil {
		fix.Check.Compare.SizeRelTol = floatPtr(defaultSizeRelTol)
	}
	if fix.Check.Compare.PixelDiffAbsTol == nil {
		fix.Check.Compare.PixelDiffAbsTol = intPtr(defaultPixelDiffAbsTol)
	}
	if fix.Check.Compare.PixelDiffRelTol == nil {
		fix.Check.Compare.PixelDiffRelTol = floatPtr(defaultPixelDiffRelTol)
	}

	if err := fix.validate(); err != nil {
		return nil, err
	}
	return &fix, nil
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read fixture: %w", err)
	}
	return ParseFixture(data)
}

func (f *Fixture) validate() error {
	if len(f.Original.Text) == 0 {
		return fmt.Errorf("fixture has no original text")
	}
	for name, spec := range map[string]*EditSpec{"original": &f.Original, "modified": &f.Modified} {
		if spec.ScaleFactor != nil && spec.FontSizePt != nil {
			return fmt.Errorf("%s block sets both scale-factor and font-size-pt", name)
		}
		if len(spec.TexCommand) > 0 {
			if _, err := config.ParseTexCommand(spec.TexCommand); err != nil {
				return fmt.Errorf("%s block: %w", name, err)
			}
		}
		if len(spec.Converter) > 0 {
			if _, err := config.ParseConverter(spec.Converter); err != nil {
				return fmt.Errorf("%s block: %w", name, err)
			}
		}
		if len(spec.Alignment) > 0 {
			if _, err := geom.ParseAnchor(spec.Alignment); err != nil {
				return fmt.Errorf("%s block: %w", name, err)
			}
		}
	}

	if f.Check.Render.DPI > 0 && f.Check.Render.Height > 0 {
		return fmt.Errorf("check.render sets both dpi and height")
	}
	switch f.Check.Render.RenderArea {
	case "", AreaDrawing, AreaDocument:
	default:
		return fmt.Errorf("unknown render area %q", f.Check.Render.RenderArea)
	}

	if _, err := f.Check.Compare.fuzzFraction(); err != nil {
		return err
	}
	return nil
}

// Merged returns the modified edit with unset fields inherited from the
// original block.
func (f *Fixture) Merged() EditSpec {
	out := f.Original
	mod := f.Modified
	if len(mod.Text) > 0 {
		out.Text = mod.Text
	}
	if len(mod.PreambleFile) > 0 {
		out.PreambleFile = mod.PreambleFile
	}
	if len(mod.TexCommand) > 0 {
		out.TexCommand = mod.TexCommand
	}
	if len(mod.Converter) > 0 {
		out.Converter = mod.Converter
	}
	if mod.ScaleFactor != nil {
		out.ScaleFactor, out.FontSizePt = mod.ScaleFactor, nil
	}
	if mod.FontSizePt != nil {
		out.FontSizePt, out.ScaleFactor = mod.FontSizePt, nil
	}
	if len(mod.Alignment) > 0 {
		out.Alignment = mod.Alignment
	}
	return out
}

// Request turns an edit spec into a pipeline request against targetID.
// Fixtures are validated beforehand, enum values are known to parse.
func (e EditSpec) Request(targetID string) convert.Request {
	req := convert.Request{
		TargetID:     targetID,
		Text:         e.Text,
		PreambleFile: e.PreambleFile,
		ScaleFactor:  e.ScaleFactor,
		FontSizePt:   e.FontSizePt,
	}
	if len(e.TexCommand) > 0 {
		tc, _ := config.ParseTexCommand(e.TexCommand)
		req.TexCommand = &tc
	}
	if len(e.Converter) > 0 {
		c, _ := config.ParseConverter(e.Converter)
		req.Converter = &c
	}
	if len(e.Alignment) > 0 {
		a, _ := geom.ParseAnchor(e.Alignment)
		req.Alignment = &a
	}
	return req
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

// fuzzFraction converts the percent notation into a 0..1 fraction.
func (c CompareSpec) fuzzFraction() (float64, error) {
	s := strings.TrimSpace(c.Fuzz)
	if len(s) == 0 {
		return 0, nil
	}
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("unusable fuzz value %q", c.Fuzz)
	}
	return v / 100.0, nil
}
