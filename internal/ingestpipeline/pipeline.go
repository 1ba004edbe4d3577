// Package ingestpipeline joins the streaming decoder (C2) and the batched
// inserter (C3) for one request (spec §4.4): both run concurrently over the
// same channel, the first error wins, and the other side is cancelled
// promptly.
package ingestpipeline

import (
	"context"
	"io"

	"github.com/nucleus/ingest-core/internal/batchinsert"
	"github.com/nucleus/ingest-core/internal/gzipline"
	"github.com/nucleus/ingest-core/internal/record"
)

// Run decodes gzip NDJSON of kind T from body and bulk-inserts it through
// ins, returning the first error either side observed. The channel's
// capacity is capacity (DefaultBatchLimit when <= 0) — spec recommends sizing it on the order of one batch.
//
// Cancellation: ctx is derived internally so that an error from either
// goroutine cancels the other at its next suspension point (a channel
// send/receive or a SQL statement). If ctx passed in is itself cancelled
// (e.g. the client disconnected), both goroutines unwind the same way.
func Run[T record.Insertable](ctx context.Context, body io.Reader, maxUncompressedBytes int64, ins *batchinsert.Inserter[T], capacity int) error {
	if capacity <= 0 {
		capacity = batchinsert.DefaultBatchLimit
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan T, capacity)
	errs := make(chan error, 2)

	go func() {
		err := gzipline.Decode(ctx, body, maxUncompressedBytes, ch)
		if err != nil {
			cancel()
		}
		errs <- err
	}()

	go func() {
		err := ins.Run(ctx, ch)
		if err != nil {
			cancel()
		}
		errs <- err
	}()

	first := <-errs
	second := <-errs

	if first != nil && first != context.Canceled {
		return first
	}
	if second != nil && second != context.Canceled {
		return second
	}
	return nil
}
