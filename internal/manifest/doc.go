// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package manifest loads the run configuration: a YAML settings file plus a
// package list of name[:variant] entries, either inline or in a separate
// plain-text file.
package manifest
