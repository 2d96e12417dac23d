// Package errlog implements the process-wide diagnostic sink described by
// the compiler core: an append-only log of (kind, message, position,
// length) records. The core never panics for user-facing errors; it logs
// a record here and returns an absent result.
//
// Rendering follows the caret-pointing style used throughout
// internal/errors in the teacher repository this package is grounded on,
// adapted to a slice of independent records instead of one rich error
// value.
package errlog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/elgin-lang/elginc/internal/token"
)

// Kind classifies a diagnostic. TypeError is reserved for future use: the
// current inferencer does not reject incompatible concrete-type
// constraints, it only fails to fully concretise them (see internal/infer).
type Kind int

const (
	SyntaxError Kind = iota
	NameError
	TypeError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case NameError:
		return "NameError"
	case TypeError:
		return "TypeError"
	default:
		return "UnknownError"
	}
}

// Record is one logged diagnostic.
type Record struct {
	Kind    Kind
	Message string
	Pos     token.Position
	Len     int
}

// Format renders a record against the originating source text, with a
// caret pointing at the offending column, mirroring errors.CompilerError.Format.
func (r Record) Format(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", r.Kind)
	if r.Pos.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", r.Pos.Line, r.Pos.Column)
	}
	b.WriteString(": ")
	b.WriteString(r.Message)
	b.WriteByte('\n')

	line := sourceLine(source, r.Pos.Line)
	if line != "" {
		b.WriteString(line)
		b.WriteByte('\n')
		col := r.Pos.Column
		if col < 1 {
			col = 1
		}
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString("^")
		b.WriteByte('\n')
	}
	return b.String()
}

func sourceLine(source string, lineNo int) string {
	if lineNo <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNo-1 >= len(lines) {
		return ""
	}
	return lines[lineNo-1]
}

// Sink is an append-only, mutex-guarded diagnostic log. The core takes a
// *Sink by reference (per spec.md §9's "pass a sink by reference"
// alternative), so tests can construct an isolated Sink instead of
// sharing process-wide state; components that receive a nil *Sink fall
// back to the package-level Default sink, preserving the "process-wide
// singleton" framing for callers that don't care about isolation.
type Sink struct {
	mu      sync.Mutex
	records []Record
}

// NewSink constructs an empty, independent sink.
func NewSink() *Sink {
	return &Sink{}
}

// Default is the lazily-used process-wide sink. It is never cleared by
// the core.
var Default = NewSink()

// Resolve returns s if non-nil, else the package Default sink.
func Resolve(s *Sink) *Sink {
	if s != nil {
		return s
	}
	return Default
}

func (s *Sink) push(k Kind, message string, pos token.Position, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{Kind: k, Message: message, Pos: pos, Len: length})
}

func (s *Sink) Syntax(message string, pos token.Position, length int) {
	s.push(SyntaxError, message, pos, length)
}

func (s *Sink) Name(message string, pos token.Position, length int) {
	s.push(NameError, message, pos, length)
}

func (s *Sink) Type(message string, pos token.Position, length int) {
	s.push(TypeError, message, pos, length)
}

// Records returns a snapshot copy of every record logged so far.
func (s *Sink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// HasErrors reports whether any record has been logged.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records) > 0
}

// HasKind reports whether any record of the given kind has been logged
// referencing the given substring of message (empty substring matches
// any message). Intended for tests asserting "a NameError referencing X".
func (s *Sink) HasKind(k Kind, contains string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Kind == k && strings.Contains(r.Message, contains) {
			return true
		}
	}
	return false
}

// FormatAll renders every record the way errors.FormatErrors does for
// multiple CompilerErrors: a summary header followed by one formatted
// block per record.
func FormatAll(records []Record, source string) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "compilation failed with %d error(s):\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "[Error %d of %d]\n", i+1, len(records))
		b.WriteString(r.Format(source))
		b.WriteByte('\n')
	}
	return b.String()
}
