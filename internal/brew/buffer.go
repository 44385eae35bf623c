// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package brew

import "bytes"

// boundedBuffer keeps the first max bytes written and silently discards the
// rest, so a chatty subprocess cannot grow memory without bound.
type boundedBuffer struct {
	buf bytes.Buffer
	max int
}

func newBoundedBuffer(maxBytes int) *boundedBuffer {
	return &boundedBuffer{max: maxBytes}
}

// Write implements io.Writer. It never returns an error; overflow is
// truncated rather than failing the subprocess pipe.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}

	if len(p) > remaining {
		b.buf.Write(p[:remaining])

		return len(p), nil
	}

	b.buf.Write(p)

	return len(p), nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}
