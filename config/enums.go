package config

// TexCommand selects the TeX engine used to compile source into PDF.
// ENUM(pdflatex, lualatex, xelatex)
type TexCommand int

// Converter selects the backend turning a compiled PDF into an SVG fragment.
// ENUM(inkscape, pdf2svg, pstoedit)
type Converter int

// Ext returns extension of the fragment file produced by the converter.
func (c Converter) Ext() string {
	switch c {
	case ConverterInkscape, ConverterPdf2svg, ConverterPstoedit:
		return ".svg"
	default:
		// this should never happen
		panic("unsupported converter requested")
	}
}

// FlipsY reports whether converter output uses inverted vertical axis.
// Historic pstoedit plot-svg output is vertically flipped relative to the
// other backends and needs a reflection during alignment.
func (c Converter) FlipsY() bool {
	return c == ConverterPstoedit
}
