// Package report renders runner output for the console: per-script progress
// lines, the run summary, the status table, and rollback instructions.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/aqasim81/drrms-migrate/internal/executor"
	"github.com/aqasim81/drrms-migrate/internal/migration"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

// Glyphs used in console output.
const (
	GlyphApplied = "✅"
	GlyphFailed  = "❌"
	GlyphOther   = "⏳"
)

// NotYetApplied is shown in the Applied At column when a row has no timestamp.
const NotYetApplied = "not yet applied"

// TimeLayout formats the Applied At column.
const TimeLayout = "2006-01-02 15:04"

//nolint:gochecknoglobals // shared color printers
var (
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed, color.Bold)
	warning = color.New(color.FgYellow)
	heading = color.New(color.FgCyan, color.Bold)
)

// SetColor turns ANSI styling on or off for both color libraries.
func SetColor(enabled bool) {
	color.NoColor = !enabled

	if enabled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}
}

// Printer writes runner output to a single writer.
type Printer struct {
	out io.Writer
}

// New returns a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Header prints the run banner.
func (p *Printer) Header() {
	fmt.Fprintln(p.out)
	heading.Fprintln(p.out, "🚀 DRRMS Database Migration Runner")
	fmt.Fprintln(p.out, strings.Repeat("=", 50))
}

// Plan announces how many migrations are about to run.
func (p *Printer) Plan(pending []migration.Migration) {
	if len(pending) == 0 {
		fmt.Fprintln(p.out, "✨ No pending migrations. Database is up to date!")

		return
	}

	fmt.Fprintf(p.out, "📦 Found %d pending migration(s):\n\n", len(pending))
}

// Progress renders one executor event. Starting opens the line; completion
// or failure closes it. Skipped events print nothing.
func (p *Printer) Progress(ev executor.ProgressEvent) {
	switch ev.Status {
	case executor.StatusStarting:
		fmt.Fprintf(p.out, "  📄 Applying: %s... ", ev.Migration.Name)
	case executor.StatusCompleted:
		success.Fprintf(p.out, "%s (%dms)\n", GlyphApplied, ev.Duration.Milliseconds())
	case executor.StatusFailed:
		failure.Fprintf(p.out, "%s Failed: %v\n", GlyphFailed, ev.Error)
	}
}

// Stopped reports that the run halted at a failed script.
func (p *Printer) Stopped() {
	fmt.Fprintln(p.out)
	warning.Fprintln(p.out, "⚠️  Migration failed. Stopping.")
}

// Summary prints the applied/failed counts of a run.
func (p *Printer) Summary(s executor.Summary) {
	if s.Pending == 0 {
		return
	}

	if s.Failed == 0 {
		fmt.Fprintln(p.out)
		success.Fprintln(p.out, GlyphApplied+" Migration complete!")
	}

	fmt.Fprintf(p.out, "%d applied, %d failed\n", s.Applied, s.Failed)
}

// StatusTable prints every tracking row in the order given.
func (p *Printer) StatusTable(records []tracker.Record) error {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "📋 Migration Status:")

	if len(records) == 0 {
		fmt.Fprintln(p.out, "No migrations recorded.")

		return nil
	}

	data := pterm.TableData{{"Version", "Name", "Status", "Applied At", "Execution"}}
	for _, r := range records {
		data = append(data, StatusRow(r))
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering status table: %w", err)
	}

	fmt.Fprintln(p.out, table)

	return nil
}

// StatusRow formats one tracking row as table cells.
func StatusRow(r tracker.Record) []string {
	return []string{
		r.Version,
		r.Name,
		StatusGlyph(r.Status) + " " + r.Status,
		FormatAppliedAt(r),
		formatExecution(r.ExecutionTimeMs),
	}
}

// StatusGlyph maps a tracking status to its console glyph.
func StatusGlyph(status string) string {
	switch status {
	case tracker.StatusApplied:
		return GlyphApplied
	case tracker.StatusFailed:
		return GlyphFailed
	default:
		return GlyphOther
	}
}

// FormatAppliedAt renders the Applied At column. Pending rows and rows
// without a timestamp show NotYetApplied.
func FormatAppliedAt(r tracker.Record) string {
	if r.AppliedAt == nil || r.Status == tracker.StatusPending {
		return NotYetApplied
	}

	return r.AppliedAt.In(time.Local).Format(TimeLayout)
}

func formatExecution(ms *int) string {
	if ms == nil {
		return "-"
	}

	return strconv.Itoa(*ms) + "ms"
}

// RollbackInstructions prints the manual steps for undoing version. The
// runner never executes a down migration itself.
func (p *Printer) RollbackInstructions(version string) {
	fmt.Fprintln(p.out)
	warning.Fprintf(p.out, "⚠️  Rollback for version %s\n", version)
	fmt.Fprintln(p.out, "Please run the DOWN migration manually from the SQL file.")
	fmt.Fprintln(p.out, "Then update the _migrations table:")
	fmt.Fprintf(p.out, "  UPDATE %s SET status = '%s' WHERE version = '%s';\n",
		tracker.TableName, tracker.StatusRolledBack, version)
	fmt.Fprintln(p.out, "or run:")
	fmt.Fprintf(p.out, "  drrms-migrate mark-rolled-back %s\n", version)
}
