package grammar

import (
	"errors"
	"fmt"
	"strings"
	"text/scanner"

	"github.com/cnf/structhash"
	"github.com/pterm/pterm"
)

// ErrGrammarFailed is returned (wrapped) by Builder.Grammar if grammar
// definition errors have been reported.
var ErrGrammarFailed = errors.New("grammar has errors")

// Severity of a diagnostic.
type Severity int

// Severities.
const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	if s == SevError {
		return "error"
	}
	return "warning"
}

// Ambiguity is the structured part of a nondeterminism warning.
type Ambiguity struct {
	Rule       string  // enclosing rule
	Block      int     // serial of the block within the grammar
	Lexical    bool    // found in a lexer
	Alt1, Alt2 int     // alternatives, counting from 1; Alt2 is 0 for the exit branch
	ExitBranch bool    // conflict between Alt1 and the exit of a loop
	Sets       [][]int // conflicting symbols for depths 1…n
}

// Diagnostic is a problem found in a grammar.
type Diagnostic struct {
	Severity  Severity
	Pos       scanner.Position
	Message   string
	Ambiguity *Ambiguity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// === Collecting diagnostics ================================================

// Diagnostics collects diagnostics, dropping exact duplicates. Duplicates
// occur when the same defect is hit on several analysis paths.
type Diagnostics struct {
	List []Diagnostic
	seen map[string]bool
}

// Report adds d, if it has not been seen before.
func (ds *Diagnostics) Report(d Diagnostic) {
	ds.add(d)
}

func (ds *Diagnostics) add(d Diagnostic) bool {
	if ds.seen == nil {
		ds.seen = make(map[string]bool)
	}
	h, err := structhash.Hash(d, 1)
	if err != nil {
		h = d.String()
	}
	if ds.seen[h] {
		return false
	}
	ds.seen[h] = true
	ds.List = append(ds.List, d)
	return true
}

// Errors returns all diagnostics of severity error.
func (ds *Diagnostics) Errors() []Diagnostic {
	return ds.filter(SevError)
}

// Warnings returns all diagnostics of severity warning.
func (ds *Diagnostics) Warnings() []Diagnostic {
	return ds.filter(SevWarning)
}

// Ambiguities returns all nondeterminism warnings.
func (ds *Diagnostics) Ambiguities() []Diagnostic {
	var r []Diagnostic
	for _, d := range ds.List {
		if d.Ambiguity != nil {
			r = append(r, d)
		}
	}
	return r
}

// Len returns the number of diagnostics.
func (ds *Diagnostics) Len() int {
	return len(ds.List)
}

func (ds *Diagnostics) filter(sev Severity) []Diagnostic {
	var r []Diagnostic
	for _, d := range ds.List {
		if d.Severity == sev {
			r = append(r, d)
		}
	}
	return r
}

func (ds *Diagnostics) String() string {
	var sb strings.Builder
	for _, d := range ds.List {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Console ---------------------------------------------------------------

// ConsoleReporter prints diagnostics to the terminal.
type ConsoleReporter struct{}

// Report prints d with a colored prefix.
func (ConsoleReporter) Report(d Diagnostic) {
	msg := fmt.Sprintf("%s: %s", d.Pos, d.Message)
	if d.Severity == SevError {
		pterm.Error.Println(msg)
		return
	}
	pterm.Warning.Println(msg)
}

// === Protocol errors =======================================================

// ProtocolError is the panic value for violations of the builder or analyzer
// contract, i.e. defects of the caller rather than of the grammar.
type ProtocolError struct {
	Pos scanner.Position
	Msg string
}

func (e *ProtocolError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: internal error: %s", e.Pos, e.Msg)
	}
	return "internal error: " + e.Msg
}
