package debug

import (
	"strings"

	"github.com/beevik/etree"
)

// DumpElement renders an SVG element tree into indented text for debug
// reports. Attribute values are quoted so embedded newlines in metadata
// survive the dump.
func DumpElement(el *etree.Element) string {
	tw := NewTreeWriter("  ")
	dumpElement(tw, el, 0)
	return tw.String()
}

func dumpElement(tw *TreeWriter, el *etree.Element, depth int) {
	tw.Line(depth, "<%s>", el.FullTag())
	for _, a := range el.Attr {
		tw.TextBlock(depth+1, "@"+a.FullKey(), a.Value)
	}
	if text := strings.TrimSpace(el.Text()); len(text) > 0 {
		tw.TextBlock(depth+1, "text", text)
	}
	for _, child := range el.ChildElements() {
		dumpElement(tw, child, depth+1)
	}
}
