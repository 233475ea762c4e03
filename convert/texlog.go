package convert

import (
	"bufio"
	"io"
	"strings"
)

// logContextLines limits how much of the compiler log follows the error
// line in the excerpt.
const logContextLines = 5

// FirstLogError strips a TeX compiler log down to the first reported error:
// the "!" line plus a few context lines after it, until a blank line. Empty
// result means the log carries no error marker.
func FirstLogError(r io.Reader) string {
	var lines []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if len(lines) == 0 {
			if strings.HasPrefix(line, "!") {
				lines = append(lines, line)
			}
			continue
		}
		if len(strings.TrimSpace(line)) == 0 || len(lines) > logContextLines {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
