// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !darwin && !linux

package preflight

import "errors"

var errStatfsUnsupported = errors.New("disk space probe not supported on this platform")

func availableBytes(_ string) (uint64, error) {
	return 0, errStatfsUnsupported
}
