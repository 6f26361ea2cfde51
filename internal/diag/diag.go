// Package diag formats compile-time diagnostics and maps interpreter
// errors back through embedded line markers to original source positions.
//
// Grounded on the teacher's internal/errors package: a position-carrying
// error type with a source-context Format method. Unlike the teacher,
// every Diagnostic here is fatal: complua reports exactly one diagnostic
// line per run (spec.md §7), so there is no multi-error accumulator.
package diag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/complua/complua/internal/token"
)

// Diagnostic is a single fatal compiler error.
type Diagnostic struct {
	File    string
	Pos     token.Position
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("complua: %s:%d: %s", d.File, d.Pos.Line, d.Message)
}

// New builds a Diagnostic at pos.
func New(file string, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{File: file, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Format renders a caret-pointing source-context view, mirroring the
// teacher's CompilerError.Format but always uncolored: complua's one-line
// CLI contract (spec.md §6) has no use for ANSI output.
func (d *Diagnostic) Format(source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error in %s:%d:%d\n", d.File, d.Pos.Line, d.Pos.Column)

	if line := sourceLine(source, d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+maxInt(d.Pos.Column-1, 0)))
		sb.WriteString("^\n")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// interpreterErrorRE matches the external interpreter's stderr error line:
// "luajit: <path>:<line>: <message>" (spec.md §4.4 step 5).
var interpreterErrorRE = regexp.MustCompile(`^luajit:\s*[^:]*:(\d+):\s*(.*)$`)

// lineMarkerRE matches a generated "--LINE:<n>" marker (spec.md §4.2,
// "Line markers").
var lineMarkerRE = regexp.MustCompile(`--LINE:(\d+)\b`)

// FromInterpreterStderr maps the external interpreter's stderr output back
// to the original source file. It scans scratchLines backward from the
// reported failure line for the nearest "--LINE:n" marker and reports the
// diagnostic against that original line. If stderr doesn't match the
// expected shape, or no marker is found above the failure, the raw
// interpreter output is returned verbatim as the diagnostic message
// (spec.md §7, "internal marker lookup failure").
func FromInterpreterStderr(file string, stderr string, scratchLines []string, fallbackPos token.Position) *Diagnostic {
	stderr = strings.TrimSpace(stderr)
	firstLine := stderr
	if idx := strings.IndexByte(stderr, '\n'); idx >= 0 {
		firstLine = stderr[:idx]
	}

	m := interpreterErrorRE.FindStringSubmatch(firstLine)
	if m == nil {
		return &Diagnostic{File: file, Pos: fallbackPos, Message: stderr}
	}

	failLine, err := strconv.Atoi(m[1])
	if err != nil {
		return &Diagnostic{File: file, Pos: fallbackPos, Message: stderr}
	}
	message := m[2]

	origLine, ok := nearestMarker(scratchLines, failLine)
	if !ok {
		return &Diagnostic{File: file, Pos: fallbackPos, Message: stderr}
	}

	return &Diagnostic{File: file, Pos: token.Position{Line: origLine}, Message: message}
}

// nearestMarker walks scratchLines backward starting at line failLine
// (1-indexed) looking for the closest preceding "--LINE:n" marker.
func nearestMarker(scratchLines []string, failLine int) (int, bool) {
	for i := failLine - 1; i >= 0 && i < len(scratchLines); i-- {
		if m := lineMarkerRE.FindStringSubmatch(scratchLines[i]); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
