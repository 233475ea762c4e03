package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"texsvg/config"
	"texsvg/geom"
)

// Namespace of the round-trip metadata attributes. Kept identical to the
// namespace used by the original Inkscape extension so documents remain
// editable by either tool.
const MetaNS = "http://www.iki.fi/pav/software/textext/"

const metaPrefix = "textext"

// SchemaVersion is written into every produced node. Decoding refuses
// attribute sets whose major version is above ours instead of guessing at
// their meaning.
const SchemaVersion = "1.10.2"

// metadata attribute keys
const (
	keyVersion      = "version"
	keyTexConverter = "texconverter"
	keyPdfConverter = "pdfconverter"
	keyText         = "text"
	keyPreamble     = "preamble"
	keyScale        = "scale"
	keyFontSize     = "fontsize_pt"
	keyAlignment    = "alignment"
	keyJacobian     = "jacobian_sqrt"
	keyStroke2Path  = "stroke-to-path"
)

// Metadata is the round-trip state of a rendered node: everything needed to
// re-open the source for editing and recompile it in place.
type Metadata struct {
	Text        string
	Preamble    string // preamble file reference, empty means default
	TexCommand  config.TexCommand
	Converter   config.Converter
	Scale       float64
	FontSizePt  float64
	UseFontSize bool // sizing mode: font size when true, scale factor otherwise
	Alignment   geom.Anchor
	Jacobian    float64
	Stroke2Path bool
	Version     string
}

// MetadataError marks corrupt or incompatible metadata on an existing node.
// It is recoverable: the caller falls back to default settings and proceeds.
type MetadataError struct {
	Key string
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("node metadata [%s]: %v", e.Key, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// DefaultMetadata returns metadata prefilled from configured render defaults.
func DefaultMetadata(rc *config.RenderConfig) Metadata {
	m := Metadata{
		TexCommand:  rc.TexCommand,
		Converter:   rc.Converter,
		Scale:       rc.ScaleFactor,
		Alignment:   geom.AnchorMiddleCenter,
		Jacobian:    1.0,
		Preamble:    rc.PreamblePath,
		Stroke2Path: rc.StrokeToPath,
		Version:     SchemaVersion,
	}
	if a, err := geom.ParseAnchor(rc.Alignment); err == nil {
		m.Alignment = a
	}
	if rc.FontSizePt > 0 {
		m.FontSizePt = rc.FontSizePt
		m.UseFontSize = true
	}
	return m
}

// EffectiveScale returns the scale factor relative to the converter's native
// point size for either sizing mode.
func (m Metadata) EffectiveScale() float64 {
	if m.UseFontSize {
		// rendered at 10pt (the default document class size), requested size
		// is reached by plain scaling
		return m.FontSizePt / 10.0
	}
	return m.Scale
}

// Encode writes the metadata as namespaced attributes onto el. The namespace
// declaration goes onto the element itself so the produced node stays
// self-contained.
func Encode(m Metadata, el *etree.Element) {
	el.CreateAttr("xmlns:"+metaPrefix, MetaNS)

	set := func(key, value string) {
		el.CreateAttr(metaPrefix+":"+key, value)
	}
	set(keyVersion, m.Version)
	set(keyTexConverter, m.TexCommand.String())
	set(keyPdfConverter, m.Converter.String())
	set(keyText, escapeText(m.Text))
	set(keyPreamble, m.Preamble)
	if m.UseFontSize {
		set(keyFontSize, fmtFloat(m.FontSizePt))
	} else {
		set(keyScale, fmtFloat(m.Scale))
	}
	set(keyAlignment, string(m.Alignment))
	set(keyJacobian, fmtFloat(m.Jacobian))
	if m.Stroke2Path {
		set(keyStroke2Path, "1")
	} else {
		set(keyStroke2Path, "0")
	}
}

// Decode reads metadata attributes from el. found is false for nodes created
// outside of this pipeline (no attributes at all) which is a different
// outcome from corrupt metadata reported via MetadataError.
func Decode(el *etree.Element) (Metadata, bool, error) {
	get := func(key string) (string, bool) {
		if a := el.SelectAttr(metaPrefix + ":" + key); a != nil {
			return a.Value, true
		}
		return "", false
	}

	text, haveText := get(keyText)
	_, havePreamble := get(keyPreamble)
	if !haveText && !havePreamble {
		return Metadata{}, false, nil
	}

	var m Metadata
	m.Version, _ = get(keyVersion)
	if err := checkSchemaVersion(m.Version); err != nil {
		return Metadata{}, true, &MetadataError{Key: keyVersion, Err: err}
	}

	var err error
	if m.Text, err = unescapeText(text); err != nil {
		return Metadata{}, true, &MetadataError{Key: keyText, Err: err}
	}
	m.Preamble, _ = get(keyPreamble)

	if v, ok := get(keyTexConverter); ok {
		if m.TexCommand, err = config.ParseTexCommand(v); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyTexConverter, Err: err}
		}
	}
	if v, ok := get(keyPdfConverter); ok {
		if m.Converter, err = config.ParseConverter(v); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyPdfConverter, Err: err}
		}
	}

	// Exactly one of the sizing attributes is expected. Both present is
	// corrupt metadata - the modes are mutually exclusive.
	scaleStr, haveScale := get(keyScale)
	fontStr, haveFont := get(keyFontSize)
	switch {
	case haveScale && haveFont:
		return Metadata{}, true, &MetadataError{Key: keyScale, Err: fmt.Errorf("both scale and font size present")}
	case haveFont:
		if m.FontSizePt, err = strconv.ParseFloat(fontStr, 64); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyFontSize, Err: err}
		}
		m.UseFontSize = true
	case haveScale:
		if m.Scale, err = strconv.ParseFloat(scaleStr, 64); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyScale, Err: err}
		}
	default:
		m.Scale = 1.0
	}

	m.Alignment = geom.AnchorMiddleCenter
	if v, ok := get(keyAlignment); ok {
		if m.Alignment, err = geom.ParseAnchor(v); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyAlignment, Err: err}
		}
	}

	m.Jacobian = 1.0
	if v, ok := get(keyJacobian); ok {
		if m.Jacobian, err = strconv.ParseFloat(v, 64); err != nil {
			return Metadata{}, true, &MetadataError{Key: keyJacobian, Err: err}
		}
	}

	if v, ok := get(keyStroke2Path); ok {
		m.Stroke2Path = v == "1" || v == "true"
	}
	return m, true, nil
}

// MetadataNodes returns every element of the document carrying round-trip
// metadata, in document order.
func (d *Document) MetadataNodes() []*etree.Element {
	var nodes []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.SelectAttr(metaPrefix+":"+keyText) != nil || el.SelectAttr(metaPrefix+":"+keyPreamble) != nil {
			nodes = append(nodes, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(d.Root())
	return nodes
}

func checkSchemaVersion(version string) error {
	if len(version) == 0 {
		// nodes produced before versioning, fields are compatible
		return nil
	}
	major, _, _ := strings.Cut(strings.TrimPrefix(version, "<="), ".")
	v, err := strconv.Atoi(major)
	if err != nil {
		return fmt.Errorf("unparsable schema version %q", version)
	}
	if v > 1 {
		return fmt.Errorf("schema version %q is newer than supported", version)
	}
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Attribute values survive XML attribute-value normalization only when free
// of literal control characters, so text is stored with backslash escapes.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeText(s string) (string, error) {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case '\\':
			b.WriteRune('\\')
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		default:
			// tolerate python unicode_escape leftovers from the original tool
			b.WriteRune('\\')
			b.WriteRune(r)
		}
		escaped = false
	}
	if escaped {
		return "", fmt.Errorf("truncated escape sequence")
	}
	return b.String(), nil
}
