// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders the final run summary, as colorized text for
// humans or JSON for tooling.
package report
