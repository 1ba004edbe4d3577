// Package gzipline implements the streaming decoder (spec §4.2): it wraps
// an HTTP request body in a gzip reader, splits the decompressed stream at
// newlines, decodes each line as JSON into a typed record, and sends it on
// a bounded channel. It never buffers the whole compressed or decompressed
// body — decompression, line splitting, and JSON decoding all happen as
// bytes arrive off the wire.
package gzipline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/nucleus/ingest-core/internal/apperr"
	"github.com/nucleus/ingest-core/internal/record"
)

// maxLineBytes bounds a single NDJSON line; lines longer than this abort
// the request with a parse error rather than growing an unbounded buffer.
const maxLineBytes = 64 << 20

// Decode reads gzip-compressed NDJSON from r, decodes each non-blank line
// into a T, and sends it on out, honoring ctx at every send so a cancelled
// context (the joiner cancels it when the inserter fails) unblocks a send
// to a consumer that has stopped receiving, propagating ctx.Err() out of
// Decode exactly as spec §4.4 expects ("any send by the decoder fails").
// Decode closes out on every return path so the receiving side always
// observes end-of-stream, matching "closing the send endpoint is what the
// consumer observes as no more records" (spec §4.2).
//
// maxUncompressedBytes bounds the *decompressed* byte count (spec §4.5):
// the cap is applied to the gzip reader's output, since that is what a
// gzip-bomb payload defeats. A budget of 0 or less means unbounded.
func Decode[T record.Insertable](ctx context.Context, r io.Reader, maxUncompressedBytes int64, out chan<- T) error {
	defer close(out)

	gz, err := gzip.NewReader(r)
	if err != nil {
		return apperr.Parse(0, fmt.Errorf("gzip: %w", err))
	}
	defer gz.Close()

	var src io.Reader = gz
	var bounded *boundedReader
	if maxUncompressedBytes > 0 {
		bounded = &boundedReader{r: gz, remaining: maxUncompressedBytes}
		src = bounded
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		// Once the budget is exceeded the scanner still hands back the
		// truncated tail as a final token; report the cap instead of
		// parsing it.
		if bounded != nil && bounded.exceeded {
			return apperr.PayloadTooLarge()
		}
		line++
		raw := scanner.Bytes()
		if len(trimSpace(raw)) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return apperr.Parse(line, fmt.Errorf("json: %w", err))
		}
		if err := rec.Validate(); err != nil {
			return apperr.Parse(line, err)
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.Parse(line, fmt.Errorf("read: %w", err))
	}

	return nil
}

// boundedReader fails with apperr.PayloadTooLarge once the underlying
// (decompressed) stream holds more than remaining bytes. A stream that ends
// exactly at the budget reads to a normal EOF.
type boundedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		var probe [1]byte
		n, err := b.r.Read(probe[:])
		if n == 0 {
			return 0, err
		}
		b.exceeded = true
		return 0, apperr.PayloadTooLarge()
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
