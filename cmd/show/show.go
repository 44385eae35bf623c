// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TylerBrock/colorjson"
	"github.com/brewherd/brewherd/internal/color"
	"github.com/brewherd/brewherd/internal/manifest"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

var (
	// ErrReadManifest is returned when the manifest cannot be read.
	ErrReadManifest = errors.New("failed to read manifest")
	// ErrWritePlan is returned when the plan cannot be written to stdout.
	ErrWritePlan = errors.New("failed to write plan")
)

// ShowCmd prints the resolved install plan from a manifest.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Show the resolved install plan for a manifest without running it.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		m, err := manifest.Load(afero.NewOsFs(), cmd.StringArg(fileArg))
		if err != nil {
			return errors.Join(ErrReadManifest, err)
		}

		tasks := make([]map[string]any, 0, len(m.Tasks))
		for _, t := range m.Tasks {
			tasks = append(tasks, map[string]any{"name": t.Name, "cask": t.Cask})
		}

		doc := map[string]any{
			"max_retries":       *m.MaxRetries,
			"retry_delay":       *m.RetryDelay,
			"max_parallel_jobs": *m.MaxParallelJobs,
			"dry_run":           *m.DryRun,
			"verbose":           *m.Verbose,
			"backoff":           m.Backoff,
			"packages":          tasks,
		}

		// Round-trip through encoding/json so colorjson sees plain types.
		raw, err := json.Marshal(doc)
		if err != nil {
			return errors.Join(ErrWritePlan, err)
		}

		var plain map[string]any
		if err := json.Unmarshal(raw, &plain); err != nil {
			return errors.Join(ErrWritePlan, err)
		}

		f := colorjson.NewFormatter()
		f.Indent = 2
		f.DisabledColor = !color.Enabled()

		out, err := f.Marshal(plain)
		if err != nil {
			return errors.Join(ErrWritePlan, err)
		}

		if _, err := fmt.Fprintln(cmd.Writer, string(out)); err != nil {
			return errors.Join(ErrWritePlan, err)
		}

		return nil
	},
}
