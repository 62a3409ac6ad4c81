package drctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ApplyResult counts what Apply did.
type ApplyResult struct {
	Created  int
	Existing int
}

// Apply schedules every snapshot and drill in plan. A 409 from the API means
// the key is already tracked and is not an error, so re-running a plan is safe.
func Apply(ctx context.Context, client *Client, plan *Plan, out io.Writer) (ApplyResult, error) {
	var res ApplyResult

	for _, s := range plan.Snapshots {
		created, err := schedule(ctx, client, "/backup-snapshots", s.body())
		if err != nil {
			return res, fmt.Errorf("schedule backup snapshot %q: %w", s.Key, err)
		}
		res.record(out, "Backup snapshot", s.Key, created)
	}

	for _, d := range plan.Drills {
		created, err := schedule(ctx, client, "/recovery-drills", d.body())
		if err != nil {
			return res, fmt.Errorf("schedule recovery drill %q: %w", d.Key, err)
		}
		res.record(out, "Recovery drill", d.Key, created)
	}

	fmt.Fprintf(out, "Done: %d created, %d already present\n", res.Created, res.Existing)
	return res, nil
}

func schedule(ctx context.Context, client *Client, path string, body map[string]any) (bool, error) {
	_, err := client.Post(ctx, path, body)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ApplyResult) record(out io.Writer, kind, key string, created bool) {
	if created {
		r.Created++
		fmt.Fprintf(out, "%s %q: created\n", kind, key)
		return
	}
	r.Existing++
	fmt.Fprintf(out, "%s %q: exists, skipping\n", kind, key)
}
