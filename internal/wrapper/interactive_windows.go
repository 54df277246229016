// SPDX-License-Identifier: MPL-2.0

//go:build windows

package wrapper

import (
	"context"
	"time"
)

// Pseudo-terminals are not supported on Windows; interactive mode degrades
// to a plain attached run with inherited standard streams.
func (w *Wrapper) runInteractive(ctx context.Context, start time.Time) (*Result, error) {
	return w.runNative(ctx, start)
}
