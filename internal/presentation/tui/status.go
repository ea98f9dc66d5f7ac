package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Status prints one-line check results with color when the writer supports it.
type Status struct {
	out *termenv.Output
}

// NewStatus wraps w. Options are passed to termenv, e.g. to force a profile.
func NewStatus(w io.Writer, opts ...termenv.OutputOption) *Status {
	return &Status{out: termenv.NewOutput(w, opts...)}
}

// OK reports a passing check.
func (s *Status) OK(subject, detail string) {
	s.line(s.out.String("✔ ok").Foreground(s.out.Color("#22c55e")).Bold(), subject, detail)
}

// Fail reports a failing check.
func (s *Status) Fail(subject, detail string) {
	s.line(s.out.String("✘ fail").Foreground(s.out.Color("#ef4444")).Bold(), subject, detail)
}

// Detail prints an indented, dimmed line under the previous result.
func (s *Status) Detail(text string) {
	fmt.Fprintf(s.out, "    %s\n", s.out.String(text).Faint())
}

func (s *Status) line(mark termenv.Style, subject, detail string) {
	if detail == "" {
		fmt.Fprintf(s.out, "%s %s\n", mark, subject)
		return
	}
	fmt.Fprintf(s.out, "%s %s %s\n", mark, subject, s.out.String("("+detail+")").Faint())
}
