package errlog_test

import (
	"strings"
	"testing"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/token"
)

func TestSinkIsIsolatedFromDefault(t *testing.T) {
	before := len(errlog.Default.Records())
	sink := errlog.NewSink()
	sink.Syntax("boom", token.Position{Line: 1, Column: 1}, 1)
	if len(errlog.Default.Records()) != before {
		t.Error("an independent sink must not write through to the package Default")
	}
	if len(sink.Records()) != 1 {
		t.Fatalf("expected 1 record on the independent sink, got %d", len(sink.Records()))
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	if errlog.Resolve(nil) != errlog.Default {
		t.Error("Resolve(nil) must return the package Default sink")
	}
	sink := errlog.NewSink()
	if errlog.Resolve(sink) != sink {
		t.Error("Resolve(sink) must return sink unchanged when non-nil")
	}
}

func TestHasKindMatchesKindAndSubstring(t *testing.T) {
	sink := errlog.NewSink()
	sink.Name("variable 'x' not in scope", token.Position{}, 1)
	if !sink.HasKind(errlog.NameError, "x") {
		t.Error("expected HasKind to match a substring of the logged message")
	}
	if sink.HasKind(errlog.NameError, "y") {
		t.Error("HasKind should not match an absent substring")
	}
	if sink.HasKind(errlog.SyntaxError, "x") {
		t.Error("HasKind should not match a different Kind")
	}
}

func TestFormatPointsCaretAtColumn(t *testing.T) {
	sink := errlog.NewSink()
	sink.Syntax("unexpected token", token.Position{Line: 1, Column: 5}, 1)
	out := errlog.FormatAll(sink.Records(), "1 + + 2")
	if !strings.Contains(out, "1 + + 2") {
		t.Errorf("expected the offending source line to appear in output, got %q", out)
	}
	lines := strings.Split(out, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
		}
	}
	if caretLine == "" {
		t.Fatal("expected a caret line pointing at the error column")
	}
	if len(caretLine) != 5 {
		t.Errorf("caret line = %q, want the caret at column 5 (index 4)", caretLine)
	}
}

func TestFormatAllEmptyForNoRecords(t *testing.T) {
	if got := errlog.FormatAll(nil, "source"); got != "" {
		t.Errorf("expected empty string for no records, got %q", got)
	}
}
