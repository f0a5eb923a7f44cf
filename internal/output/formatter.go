// Package output renders diff summaries, snapshot lists, deployments, and
// import results for the terminal, with json/yaml alternatives.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/stateset/stateset/pkg/types"
)

// failureSampleSize bounds how many per-entity failure reasons are shown.
const failureSampleSize = 5

// Formatter renders CLI output. With noColor set, everything is plain
// text.
type Formatter struct {
	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
}

// NewFormatter creates a formatter.
func NewFormatter(noColor bool) *Formatter {
	plain := fmt.Sprint
	f := &Formatter{green: plain, red: plain, yellow: plain}
	if !noColor {
		f.green = color.New(color.FgGreen).SprintFunc()
		f.red = color.New(color.FgRed).SprintFunc()
		f.yellow = color.New(color.FgYellow).SprintFunc()
	}
	return f
}

// FormatDiffSummary renders a diff summary as a fixed-order table.
func (f *Formatter) FormatDiffSummary(summary *types.DiffSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Comparing %s -> %s\n\n", summary.FromRef, summary.ToRef)
	fmt.Fprintf(&sb, "%-15s %6s %6s %8s %8s %8s\n", "COLLECTION", "FROM", "TO", "ADDED", "REMOVED", "CHANGED")

	for _, row := range summary.Rows {
		added, removed, changed := "0", "0", "0"
		if row.Added > 0 {
			added = f.green(fmt.Sprintf("+%d", row.Added))
		}
		if row.Removed > 0 {
			removed = f.red(fmt.Sprintf("-%d", row.Removed))
		}
		if row.Changed > 0 {
			changed = f.yellow(fmt.Sprintf("~%d", row.Changed))
		}
		fmt.Fprintf(&sb, "%-15s %6d %6d %8s %8s %8s\n",
			row.Collection, row.FromCount, row.ToCount, added, removed, changed)
	}

	sb.WriteString("\n")
	if summary.HasChanges() {
		fmt.Fprintf(&sb, "%d changes detected\n", summary.TotalChanges())
	} else {
		sb.WriteString("No changes detected\n")
	}

	return sb.String()
}

// FormatSnapshotList renders snapshots newest first.
func (f *Formatter) FormatSnapshotList(infos []types.SnapshotInfo) string {
	if len(infos) == 0 {
		return "No snapshots found\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-40s %10s  %s\n", "ID", "SIZE", "MODIFIED")
	for _, info := range infos {
		fmt.Fprintf(&sb, "%-40s %10d  %s\n", info.ID, info.Size, info.ModTime.Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

// FormatDeploymentList renders deployment records newest first.
func (f *Formatter) FormatDeploymentList(deployments []types.Deployment) string {
	if len(deployments) == 0 {
		return "No deployments found\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-14s %-9s %-10s %-30s %s\n", "ID", "MODE", "STATUS", "SOURCE", "UPDATED")
	for _, d := range deployments {
		fmt.Fprintf(&sb, "%-14s %-9s %-10s %-30s %s\n",
			d.ID, d.Mode, f.statusLabel(d.Status), truncate(d.Source, 30),
			d.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

// FormatDeployment renders one deployment in detail.
func (f *Formatter) FormatDeployment(d *types.Deployment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Deployment %s\n", d.ID)
	fmt.Fprintf(&sb, "  Mode:      %s\n", d.Mode)
	fmt.Fprintf(&sb, "  Status:    %s\n", f.statusLabel(d.Status))
	fmt.Fprintf(&sb, "  Source:    %s\n", d.Source)
	fmt.Fprintf(&sb, "  Flags:     dryRun=%t strict=%t includeSecrets=%t yes=%t\n",
		d.DryRun, d.Strict, d.IncludeSecrets, d.Yes)
	writeTime(&sb, "Scheduled", d.ScheduledFor)
	writeTime(&sb, "Approved", d.ApprovedAt)
	writeTime(&sb, "Applied", d.AppliedAt)
	if d.Error != "" {
		fmt.Fprintf(&sb, "  Error:     %s\n", f.red(d.Error))
	}
	fmt.Fprintf(&sb, "  Created:   %s\n", d.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "  Updated:   %s\n", d.UpdatedAt.Format(time.RFC3339))

	return sb.String()
}

// FormatImportResult renders created counts per collection plus a bounded
// sample of failure reasons.
func (f *Formatter) FormatImportResult(result *types.ImportResult) string {
	var sb strings.Builder

	if result.DryRun {
		sb.WriteString("Preview (dry run):\n")
	} else {
		sb.WriteString("Import result:\n")
	}

	for _, name := range types.CollectionNames() {
		if n := result.Created[name]; n > 0 {
			fmt.Fprintf(&sb, "  %-15s %s\n", name, f.green(fmt.Sprintf("+%d", n)))
		}
	}
	if result.TotalCreated() == 0 {
		sb.WriteString("  nothing to create\n")
	}
	if result.Skipped > 0 {
		fmt.Fprintf(&sb, "  skipped: %d\n", result.Skipped)
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", f.red(fmt.Sprintf("%d failures:", len(result.Failures))))
		for _, failure := range result.FailureSample(failureSampleSize) {
			id := failure.EntityID
			if id == "" {
				id = "?"
			}
			fmt.Fprintf(&sb, "  %s/%s: %s\n", failure.Collection, id, failure.Reason)
		}
		if extra := len(result.Failures) - failureSampleSize; extra > 0 {
			fmt.Fprintf(&sb, "  ... and %d more\n", extra)
		}
	}

	return sb.String()
}

// FormatJSON renders any value as indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// FormatYAML renders any value as YAML.
func FormatYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *Formatter) statusLabel(status types.DeploymentStatus) string {
	switch status {
	case types.StatusApplied:
		return f.green(string(status))
	case types.StatusFailed:
		return f.red(string(status))
	case types.StatusCancelled:
		return f.yellow(string(status))
	}
	return string(status)
}

func writeTime(sb *strings.Builder, label string, t *time.Time) {
	if t == nil {
		return
	}
	fmt.Fprintf(sb, "  %-10s %s\n", label+":", t.Format(time.RFC3339))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
