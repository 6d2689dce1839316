package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/engine"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
)

// PrintReport renders a run report: one line per step, the summary, and a
// list of every non-satisfied step with its error code and remediation hint.
func (d *Devbox) PrintReport(report *engine.Report, dryRun bool) {
	for _, res := range report.Results() {
		fmt.Fprintf(d.out, "  %-10s %s%s\n",
			resultLabel(res), res.StepID(), resultDetail(res))
	}

	s := report.Summary()
	fmt.Fprintln(d.out)
	if dryRun {
		fmt.Fprintf(d.out, "Plan: %d satisfied, %d to apply, %d unknown\n",
			s.AlreadyPresent, s.Planned, s.Failed)
	} else {
		fmt.Fprintf(d.out, "Run %s: %d applied, %d already present, %d failed\n",
			report.RunID(), s.Succeeded, s.AlreadyPresent, s.Failed)
	}

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintln(d.out)
		fmt.Fprintln(d.out, "Not satisfied:")
		for _, res := range failures {
			fmt.Fprintf(d.out, "  %s\n", failureLine(res))
		}
	}

	switch {
	case report.Cancelled():
		fmt.Fprintln(d.out, "Run interrupted; progress so far is recorded.")
	case report.Aborted():
		fmt.Fprintln(d.out, "Run aborted on fatal step failure; later steps were not attempted.")
	}
}

func resultLabel(res engine.StepResult) string {
	switch {
	case res.Planned():
		return "would apply"
	case res.Outcome() == ledger.OutcomeSucceeded:
		return "applied"
	case res.Outcome() == ledger.OutcomeAlreadyPresent:
		return "present"
	default:
		return "failed"
	}
}

func resultDetail(res engine.StepResult) string {
	detail := ""
	if v := res.Version(); v != "" {
		detail += " " + v
	}
	if dur := res.Duration(); dur > 0 {
		detail += fmt.Sprintf(" (%s)", dur.Round(time.Millisecond))
	}
	if err := res.Error(); err != nil {
		var stepErr *catalog.StepError
		if errors.As(err, &stepErr) {
			detail += fmt.Sprintf(": [%s] %s", stepErr.Code, stepErr.Message)
		} else {
			detail += ": " + err.Error()
		}
	}
	return detail
}

// failureLine renders one non-satisfied step with its error kind and
// remediation hint.
func failureLine(res engine.StepResult) string {
	var stepErr *catalog.StepError
	if !errors.As(res.Error(), &stepErr) {
		return fmt.Sprintf("%s: %v", res.StepID(), res.Error())
	}

	line := fmt.Sprintf("%s [%s] %s", res.StepID(), stepErr.Code, stepErr.Message)
	if stepErr.Suggestion != "" {
		line += "\n    Suggestion: " + stepErr.Suggestion
	}
	return line
}
