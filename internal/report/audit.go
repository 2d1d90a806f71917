package report

import (
	"fmt"
)

// PlanEntry is one line of the plan listing.
type PlanEntry struct {
	Version    string
	Name       string
	Statements int
	NoTx       bool
}

// PlanList prints the pending scripts in apply order without running them.
func (p *Printer) PlanList(entries []PlanEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "✨ No pending migrations. Database is up to date!")

		return
	}

	fmt.Fprintf(p.out, "📦 %d pending migration(s) would be applied in this order:\n\n", len(entries))

	for i, e := range entries {
		note := ""
		if e.NoTx {
			note = " [no transaction]"
		}

		fmt.Fprintf(p.out, "  %d. %s (%d statement(s))%s\n", i+1, e.Name, e.Statements, note)
	}
}

// Drift describes an applied script whose file no longer matches the
// checksum recorded when it ran.
type Drift struct {
	Version  string
	Name     string
	Recorded string
	Current  string
}

// VerifyResult prints checksum drift found by verify. Drift is reported but
// never blocks apply.
func (p *Printer) VerifyResult(checked int, drift []Drift, missing []string) {
	for _, d := range drift {
		warning.Fprintf(p.out, "⚠️  %s: file changed after it was applied\n", d.Name)
		fmt.Fprintf(p.out, "    recorded: %s\n", shortSum(d.Recorded))
		fmt.Fprintf(p.out, "    current:  %s\n", shortSum(d.Current))
	}

	for _, v := range missing {
		warning.Fprintf(p.out, "⚠️  version %s is applied but its file is missing\n", v)
	}

	if len(drift) == 0 && len(missing) == 0 {
		success.Fprintf(p.out, "%s %d applied migration(s) match their files\n", GlyphApplied, checked)

		return
	}

	fmt.Fprintf(p.out, "%d checked, %d changed, %d missing\n", checked, len(drift), len(missing))
}

func shortSum(sum string) string {
	if sum == "" {
		return "(none recorded)"
	}

	if len(sum) > 12 {
		return sum[:12]
	}

	return sum
}

// MarkedRolledBack confirms the manual rolled_back transition.
func (p *Printer) MarkedRolledBack(version string) {
	success.Fprintf(p.out, "%s version %s marked as rolled_back\n", GlyphApplied, version)
}
