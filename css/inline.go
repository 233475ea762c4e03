// Package css parses the inline style declarations SVG elements carry in
// their style attributes.
package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single property:value pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an ordered list of style declarations. Order is preserved
// so rewritten attributes stay recognizable in the host editor.
type Declarations struct {
	list []Declaration
}

// ParseDeclarations parses an inline style attribute value. Malformed
// declarations are dropped, SVG consumers ignore them anyway.
func ParseDeclarations(style string) *Declarations {
	d := &Declarations{}
	if len(strings.TrimSpace(style)) == 0 {
		return d
	}

	input := parse.NewInput(bytes.NewReader([]byte(style)))
	p := css.NewParser(input, true)

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return d
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d.list = append(d.list, Declaration{
				Property: string(data),
				Value:    joinTokens(p.Values()),
			})
		}
	}
}

// joinTokens assembles a declaration value from its tokens, collapsing
// whitespace runs into single spaces. The tokenizer consumes whitespace
// after commas, put it back so values keep their familiar form.
func joinTokens(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			if len(parts) > 0 && !strings.HasSuffix(parts[len(parts)-1], " ") {
				parts = append(parts, " ")
			}
		case css.CommaToken:
			if len(parts) > 0 && parts[len(parts)-1] == " " {
				parts = parts[:len(parts)-1]
			}
			parts = append(parts, ", ")
		default:
			parts = append(parts, string(t.Data))
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// Get returns the value of a property.
func (d *Declarations) Get(property string) (string, bool) {
	for _, decl := range d.list {
		if decl.Property == property {
			return decl.Value, true
		}
	}
	return "", false
}

// Has reports whether the property is declared.
func (d *Declarations) Has(property string) bool {
	_, ok := d.Get(property)
	return ok
}

// Set overwrites the property value, appending the declaration when new.
func (d *Declarations) Set(property, value string) {
	for i, decl := range d.list {
		if decl.Property == property {
			d.list[i].Value = value
			return
		}
	}
	d.list = append(d.list, Declaration{Property: property, Value: value})
}

// Len returns the number of declarations.
func (d *Declarations) Len() int {
	return len(d.list)
}

// All iterates the declarations in source order.
func (d *Declarations) All() []Declaration {
	return d.list
}

// String serializes the declarations back into attribute form.
func (d *Declarations) String() string {
	parts := make([]string, 0, len(d.list))
	for _, decl := range d.list {
		parts = append(parts, decl.Property+":"+decl.Value)
	}
	return strings.Join(parts, ";")
}
