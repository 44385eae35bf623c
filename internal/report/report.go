// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/TylerBrock/colorjson"
	"github.com/brewherd/brewherd/internal/color"
	"github.com/brewherd/brewherd/internal/orchestrator"
)

var (
	// ErrWriteSummary is returned when the summary cannot be written.
	ErrWriteSummary = errors.New("failed to write summary")
	// ErrMarshalSummary is returned when the ledger cannot be marshaled.
	ErrMarshalSummary = errors.New("failed to marshal summary")
)

// WriteText renders a human-readable run summary: one line per task with
// status, attempts, and wall-clock duration, followed by totals.
func WriteText(w io.Writer, ledger *orchestrator.Ledger) error {
	for _, o := range ledger.Outcomes() {
		var status, label string

		switch o.Status {
		case orchestrator.StatusSucceeded:
			status = color.Colorize("✓", color.FgGreen)
			label = color.Colorize(o.Task.Label(), color.Bold, color.FgGreen)
		case orchestrator.StatusFailed:
			status = color.Colorize("✗", color.FgRed)
			label = color.Colorize(o.Task.Label(), color.Bold, color.FgRed)
		case orchestrator.StatusSkipped:
			status = color.Colorize("~", color.FgYellow)
			label = color.Colorize(o.Task.Label(), color.Bold, color.FgYellow)
		}

		line := fmt.Sprintf("%s %s", status, label)

		if o.Status != orchestrator.StatusSkipped {
			line += fmt.Sprintf("  (%s in %s)",
				pluralAttempts(o.Attempts),
				o.Duration.Round(time.Millisecond))
		}

		if o.Err != nil {
			line += fmt.Sprintf("\n    %s", color.Colorize(o.Err.Error(), color.FgRed))
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Join(ErrWriteSummary, err)
		}
	}

	succeeded, failed, skipped := ledger.Counts()

	totals := fmt.Sprintf("\n%d succeeded, %d failed, %d skipped", succeeded, failed, skipped)
	if failed == 0 && skipped == 0 {
		totals = color.Colorize(totals, color.FgGreen)
	} else {
		totals = color.Colorize(totals, color.FgRed)
	}

	if _, err := fmt.Fprintln(w, totals); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	return nil
}

// WriteJSON renders the ledger as a machine-readable summary, colorized
// when stdout is a terminal.
func WriteJSON(w io.Writer, ledger *orchestrator.Ledger) error {
	succeeded, failed, skipped := ledger.Counts()

	outcomes := make([]map[string]any, 0, ledger.Len())

	for _, o := range ledger.Outcomes() {
		entry := map[string]any{
			"name":     o.Task.Name,
			"cask":     o.Task.Cask,
			"status":   string(o.Status),
			"attempts": o.Attempts,
			"duration": o.Duration.String(),
		}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		}

		outcomes = append(outcomes, entry)
	}

	doc := map[string]any{
		"run_id":    ledger.RunID,
		"succeeded": succeeded,
		"failed":    failed,
		"skipped":   skipped,
		"tasks":     outcomes,
	}

	// Round-trip through encoding/json so colorjson sees plain types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !color.Enabled()

	out, err := f.Marshal(plain)
	if err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	return nil
}

func pluralAttempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}

	return fmt.Sprintf("%d attempts", n)
}
