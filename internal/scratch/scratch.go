// Package scratch manages the fixed-name scratch directory every
// compile-time directive writes its artefacts into (spec.md §5, §6: "A
// scratch directory created once at startup and removed on successful
// completion").
//
// Grounded on spec.md §5/§6 directly (the teacher has no scratch-resource
// analogue: its bytecode VM runs entirely in-process). Cleanup failure
// aggregation follows other_examples/golox's use of
// github.com/hashicorp/go-multierror for cumulative non-fatal issues.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

// DirName is the fixed scratch directory name (spec.md §6).
const DirName = ".complua-scratch"

// Dir is a handle on the scratch directory, created once at process start
// and removed on clean exit (spec.md §9, "Global mutable scratch state ...
// made explicit as a resource handle").
type Dir struct {
	root string
	n    int // artefact invocation counter, for distinct per-directive names
}

// New creates the scratch directory rooted at baseDir (the current working
// directory in normal use).
func New(baseDir string) (*Dir, error) {
	root := filepath.Join(baseDir, DirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: creating %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Next allocates a fresh set of artefact paths for one compile-time
// directive invocation (spec.md §6: ".eval", ".eval.temp",
// ".eval.temp.expr", ".load", "and parallel artefacts for each directive
// invocation"). kind is "eval", "load" or "checkcall".
func (d *Dir) Next(kind string) Artefacts {
	d.n++
	base := filepath.Join(d.root, fmt.Sprintf(".%s.%d", kind, d.n))
	return Artefacts{
		Program: base,
		Dump:    base + ".temp",
		Text:    base + ".temp.expr",
	}
}

// Artefacts names the files one compile-time evaluation round writes and
// reads (spec.md §4.4 step 3: "a byte-dump of a zero-argument function ...
// the serialised textual form of that value").
type Artefacts struct {
	Program string // the generated scratch program passed to the interpreter
	Dump    string // byte-dump of the zero-argument result function
	Text    string // serialiser textual form of the result value
}

// Close removes every file under the scratch directory and the directory
// itself. Per spec.md §5, scratch cleanup is never escalated to a compile
// failure: failures are aggregated and returned for the caller to log, not
// to abort on.
func (d *Dir) Close() error {
	var errs *multierror.Error
	entries, err := os.ReadDir(d.root)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("scratch: reading %s: %w", d.root, err))
	} else {
		for _, entry := range entries {
			p := filepath.Join(d.root, entry.Name())
			if rmErr := os.RemoveAll(p); rmErr != nil {
				errs = multierror.Append(errs, fmt.Errorf("scratch: removing %s: %w", p, rmErr))
			}
		}
	}
	if rmErr := os.Remove(d.root); rmErr != nil {
		errs = multierror.Append(errs, fmt.Errorf("scratch: removing %s: %w", d.root, rmErr))
	}
	return errs.ErrorOrNil()
}
