package conformance

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, res := range results {
		s.Total++
		switch res.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}

// PassRate is the share of executed (not skipped) tests that passed, in percent.
func (s Summary) PassRate() float64 {
	ran := s.Passed + s.Failed
	if ran == 0 {
		return 0
	}
	return float64(s.Passed) * 100 / float64(ran)
}

// Report writes human readable results.
type Report struct {
	w       io.Writer
	printer *message.Printer
	verbose bool

	pass, fail, skip *color.Color
}

type ReportOption func(*Report)

// WithVerbose lists passing and skipped tests too.
func WithVerbose(verbose bool) ReportOption {
	return func(r *Report) {
		r.verbose = verbose
	}
}

// WithColor overrides terminal detection.
func WithColor(enabled bool) ReportOption {
	return func(r *Report) {
		for _, c := range []*color.Color{r.pass, r.fail, r.skip} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

func NewReport(w io.Writer, tag language.Tag, opts ...ReportOption) *Report {
	r := &Report{
		w:       w,
		printer: message.NewPrinter(tag),
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed, color.Bold),
		skip:    color.New(color.FgYellow),
	}
	WithColor(checkIfColorable(w))(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Report) status(s Status) string {
	switch s {
	case StatusPass:
		return r.pass.Sprint(s)
	case StatusFail:
		return r.fail.Sprint(s)
	}
	return r.skip.Sprint(s)
}

// Result prints one line for a failed test, or for any test when verbose.
func (r *Report) Result(res Result) {
	if res.Status != StatusFail && !r.verbose {
		return
	}
	if res.Message != "" {
		r.printer.Fprintf(r.w, "%s %s: %s\n", r.status(res.Status), res.Path, res.Message)
		return
	}
	r.printer.Fprintf(r.w, "%s %s\n", r.status(res.Status), res.Path)
}

func (r *Report) Results(results []Result) {
	for _, res := range results {
		r.Result(res)
	}
}

func (r *Report) Summary(s Summary) {
	r.printer.Fprintf(r.w, "total: %d, %s: %d, %s: %d, %s: %d, pass rate: %.2f%%\n",
		s.Total,
		r.status(StatusPass), s.Passed,
		r.status(StatusFail), s.Failed,
		r.status(StatusSkip), s.Skipped,
		s.PassRate())
}

func (r *Report) Regressions(regressions []Regression) {
	if len(regressions) == 0 {
		r.printer.Fprintf(r.w, "no regressions\n")
		return
	}
	r.printer.Fprintf(r.w, "%d regressions:\n", len(regressions))
	for _, reg := range regressions {
		r.printer.Fprintf(r.w, "  %s %s: %s\n", r.status(reg.Status), reg.Path, reg.Message)
	}
}

func (r *Report) Runs(runs []Run) {
	for _, run := range runs {
		r.printer.Fprintf(r.w, "%s  %d tests, %d passed, %d failed, %d skipped\n",
			run.ID, run.Total, run.Passed, run.Failed, run.Skipped)
	}
}

func checkIfColorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}

	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if t, ok := os.LookupEnv("TERM"); ok {
		switch t {
		case "dumb", "unknown":
			return false
		}
	}
	return true
}
