// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brewherd/brewherd/internal/orchestrator"
)

var (
	// ErrUnknownVariant is returned when a package entry names a variant
	// that is not registered.
	ErrUnknownVariant = errors.New("unknown package variant")
	// ErrEmptyEntry is returned when a package entry has no name.
	ErrEmptyEntry = errors.New("empty package entry")
)

// TaskBuilder constructs a task for a named package.
type TaskBuilder func(name string) orchestrator.Task

// Registry holds the mapping between manifest variant names and their task
// builders.
type Registry map[string]TaskBuilder

// DefaultRegistry is the default registry for package variants.
var DefaultRegistry = Registry{
	"": func(name string) orchestrator.Task {
		return orchestrator.Task{Name: name}
	},
	"formula": func(name string) orchestrator.Task {
		return orchestrator.Task{Name: name}
	},
	"cask": func(name string) orchestrator.Task {
		return orchestrator.Task{Name: name, Cask: true}
	},
}

// Parse resolves a name[:variant] entry into a task using the registered
// builders.
func (r Registry) Parse(entry string) (orchestrator.Task, error) {
	name, variant, _ := strings.Cut(entry, ":")
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)

	if name == "" {
		return orchestrator.Task{}, fmt.Errorf("%w: %q", ErrEmptyEntry, entry)
	}

	builder, ok := r[variant]
	if !ok {
		return orchestrator.Task{}, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	return builder(name), nil
}
