package drctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/model"
)

// FetchOverview loads the dashboard overview from the API.
func FetchOverview(ctx context.Context, client *Client) (*core.Overview, error) {
	resp, err := client.Get(ctx, "/overview")
	if err != nil {
		return nil, err
	}
	var ov core.Overview
	if err := json.Unmarshal(resp.Body, &ov); err != nil {
		return nil, fmt.Errorf("parse overview: %w", err)
	}
	return &ov, nil
}

// PrintOverview writes a plain-text summary of ov.
func PrintOverview(out io.Writer, ov *core.Overview) error {
	b := ov.Backups.Summary
	d := ov.Drills.Summary

	fmt.Fprintf(out, "BACKUPS: %d total, %d verified, %d unhealthy\n", b.Total, b.Verified, b.Unhealthy)
	rows := make([][]string, 0, len(model.SnapshotStatuses)+2)
	for _, status := range model.SnapshotStatuses {
		rows = append(rows, []string{status, strconv.Itoa(b.ByStatus[status])})
	}
	rows = append(rows,
		[]string{"latest success", orDash(b.LatestSuccessAt)},
		[]string{"oldest snapshot", orDash(b.OldestSnapshotAt)},
	)
	renderTable(out, nil, rows)

	fmt.Fprintf(out, "DRILLS: %d total, %d passed in last 90d, %d with open issues\n", d.Total, d.PassedWithinQuarter, d.OutstandingIssues)
	rows = rows[:0]
	for _, status := range model.DrillStatuses {
		rows = append(rows, []string{status, strconv.Itoa(d.ByStatus[status])})
	}
	rows = append(rows, []string{"latest verified", orDash(d.LatestVerifiedAt)})
	renderTable(out, nil, rows)

	if len(ov.Backups.Recent) > 0 {
		rows = rows[:0]
		for _, s := range ov.Backups.Recent {
			rows = append(rows, []string{s.Key, s.Status, s.Verification.Status, orDash(s.CompletedAt)})
		}
		renderTable(out, []string{"Recent backup", "Status", "Verification", "Completed"}, rows)
	}
	if len(ov.Drills.Recent) > 0 {
		rows = rows[:0]
		for _, dr := range ov.Drills.Recent {
			rows = append(rows, []string{dr.Key, dr.Status, dr.Scenario, orDash(dr.CompletedAt)})
		}
		renderTable(out, []string{"Recent drill", "Status", "Scenario", "Completed"}, rows)
	}
	return nil
}

func renderTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	if header != nil {
		table.SetHeader(header)
	}
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
