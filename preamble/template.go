package preamble

import (
	"fmt"
)

// DefaultDocumentClass is inserted when user preamble carries no class
// declaration of its own.
const DefaultDocumentClass = `\documentclass[10pt]{article}`

const documentTemplate = `%s
\pagestyle{empty}
\begin{document}
%s
\end{document}
`

// Wrap produces a complete compilable TeX document from preamble and source
// text. The preamble goes in as is when it already declares a document class,
// otherwise DefaultDocumentClass is prepended.
func Wrap(preambleText, text string) string {
	if !ContainsClass(preambleText) {
		preambleText = DefaultDocumentClass + "\n" + preambleText
	}
	return fmt.Sprintf(documentTemplate, preambleText, text)
}
