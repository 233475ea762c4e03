package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// ToolsConfig names external executables the pipeline depends on. Bare
	// names are resolved against PATH once, at pipeline entry.
	ToolsConfig struct {
		Pdflatex string `yaml:"pdflatex" validate:"required"`
		Lualatex string `yaml:"lualatex" validate:"required"`
		Xelatex  string `yaml:"xelatex" validate:"required"`
		Inkscape string `yaml:"inkscape" validate:"required"`
		Pdf2svg  string `yaml:"pdf2svg" validate:"required"`
		Pstoedit string `yaml:"pstoedit" validate:"required"`
	}

	// RenderConfig holds default render settings used when an edit request
	// leaves them unspecified and no prior node metadata exists.
	RenderConfig struct {
		TexCommand   TexCommand `yaml:"tex_command" validate:"gte=0,lte=2"`
		Converter    Converter  `yaml:"converter" validate:"gte=0,lte=2"`
		ScaleFactor  float64    `yaml:"scale_factor" validate:"gt=0"`
		FontSizePt   float64    `yaml:"font_size_pt" validate:"gte=0"`
		Alignment    string     `yaml:"alignment" validate:"required"`
		PreamblePath string     `yaml:"preamble_path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath"`
		StrokeToPath bool       `yaml:"stroke_to_path"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Tools     ToolsConfig    `yaml:"tools"`
		Render    RenderConfig   `yaml:"render"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// TexPath returns configured executable for the requested TeX engine.
func (t *ToolsConfig) TexPath(cmd TexCommand) string {
	switch cmd {
	case TexCommandPdflatex:
		return t.Pdflatex
	case TexCommandLualatex:
		return t.Lualatex
	case TexCommandXelatex:
		return t.Xelatex
	default:
		// this should never happen
		panic("unsupported tex command requested")
	}
}

// ConverterPath returns configured executable for the requested converter
// backend. Inkscape based backend uses the same executable as the
// pdf->svg conversion tool.
func (t *ToolsConfig) ConverterPath(c Converter) string {
	switch c {
	case ConverterInkscape:
		return t.Inkscape
	case ConverterPdf2svg:
		return t.Pdf2svg
	case ConverterPstoedit:
		return t.Pstoedit
	default:
		// this should never happen
		panic("unsupported converter requested")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
