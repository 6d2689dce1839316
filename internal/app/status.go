package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
)

// StepStatus is one row of the status report.
type StepStatus struct {
	StepID      catalog.StepID
	Phase       int
	State       string
	Recorded    ledger.Outcome
	RecordedAt  time.Time
	LiveVersion string
	Note        string
}

// Status states, ordered from healthy to actionable.
const (
	StateSatisfied  = "satisfied"
	StateNeedsApply = "needs-apply"
	StateDrifted    = "drifted"
	StateUnknown    = "unknown"
)

// StatusReport pairs per-step rows with run-level ledger metadata.
type StatusReport struct {
	Steps      []StepStatus
	LastRunID  string
	LastRun    time.Time
	Account    string
	Unrecorded []string
}

// Status compares the catalog against live checks and the ledger. The
// live predicate decides the state; the ledger only annotates it, and
// a ledger claim contradicted by a live check is reported as drift.
func (d *Devbox) Status(ctx context.Context, catalogPath string) (*StatusReport, error) {
	registry, err := d.LoadRegistry(catalogPath)
	if err != nil {
		return nil, err
	}

	env, err := d.Environment(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect environment: %w", err)
	}

	led, err := d.repo.Load(ctx, d.ledgerPath)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) && !errors.Is(err, ledger.ErrCorrupt) {
			return nil, err
		}
		led = ledger.New()
	}

	report := &StatusReport{
		LastRunID: led.RunID(),
		LastRun:   led.LastRun(),
		Account:   led.Account(),
	}

	runCtx := catalog.NewRunContext(ctx, env).WithDryRun(true)
	known := make(map[string]bool)

	for _, step := range registry.Steps() {
		known[step.ID().String()] = true
		row := StepStatus{StepID: step.ID(), Phase: step.Phase()}

		rec, recorded := led.Get(step.ID().String())
		if recorded {
			row.Recorded = rec.Outcome
			row.RecordedAt = rec.Timestamp
		}

		status, checkErr := step.Check(runCtx)
		switch {
		case checkErr != nil || status == catalog.StatusUnknown:
			row.State = StateUnknown
			if checkErr != nil {
				row.Note = checkErr.Error()
			}
		case status == catalog.StatusSatisfied:
			row.State = StateSatisfied
			row.LiveVersion = step.Version(runCtx)
			if recorded && rec.Version != "" {
				row.Note = versionNote(rec.Version, row.LiveVersion)
			}
		default:
			row.State = StateNeedsApply
			if recorded && rec.Outcome != ledger.OutcomeFailed {
				row.State = StateDrifted
				row.Note = "ledger says present, live check disagrees"
			}
		}

		report.Steps = append(report.Steps, row)
	}

	for _, name := range led.StepNames() {
		if !known[name] {
			report.Unrecorded = append(report.Unrecorded, name)
		}
	}
	sort.Strings(report.Unrecorded)

	return report, nil
}

// versionNote describes how the live version relates to the recorded
// one. Versions that do not parse as semver are compared as strings.
func versionNote(recorded, live string) string {
	if live == "" || recorded == live {
		return ""
	}
	rv, lv := canonicalVersion(recorded), canonicalVersion(live)
	if rv != "" && lv != "" {
		switch semver.Compare(lv, rv) {
		case 1:
			return fmt.Sprintf("upgraded since last run (%s -> %s)", recorded, live)
		case -1:
			return fmt.Sprintf("downgraded since last run (%s -> %s)", recorded, live)
		case 0:
			return ""
		}
	}
	return fmt.Sprintf("version changed since last run (%s -> %s)", recorded, live)
}

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// PrintStatus renders the status report as an aligned table.
func (d *Devbox) PrintStatus(report *StatusReport) {
	if report.LastRunID != "" {
		fmt.Fprintf(d.out, "Last run %s by %s at %s\n\n",
			report.LastRunID, report.Account,
			report.LastRun.Format(time.RFC3339))
	} else {
		fmt.Fprintln(d.out, "No recorded runs.")
		fmt.Fprintln(d.out)
	}

	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPHASE\tSTATE\tVERSION\tNOTE")
	for _, row := range report.Steps {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			row.StepID, row.Phase, row.State, row.LiveVersion, row.Note)
	}
	w.Flush()

	if len(report.Unrecorded) > 0 {
		fmt.Fprintf(d.out, "\nLedger entries for steps no longer in the catalog: %s\n",
			strings.Join(report.Unrecorded, ", "))
	}
}
