package gzipline

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/nucleus/ingest-core/internal/apperr"
	"github.com/nucleus/ingest-core/internal/record"
)

func gzipLines(lines ...string) *bytes.Buffer {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, l := range lines {
		gz.Write([]byte(l))
		gz.Write([]byte("\n"))
	}
	gz.Close()
	return &buf
}

func resultLine(runID string) string {
	b, _ := json.Marshal(record.Result{
		RunID:          runID,
		TaskID:         "task-1",
		IdempotencyKey: "idem-" + runID,
		Payload:        json.RawMessage(`{"x":1}`),
	})
	return string(b)
}

func TestDecodeWellFormedBody(t *testing.T) {
	body := gzipLines(resultLine("r1"), resultLine("r2"), resultLine("r3"))
	out := make(chan record.Result, 10)

	err := Decode[record.Result](context.Background(), body, 0, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []record.Result
	for r := range out {
		got = append(got, r)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	body := gzipLines(resultLine("r1"), "", "   ", resultLine("r2"))
	out := make(chan record.Result, 10)

	if err := Decode[record.Result](context.Background(), body, 0, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []record.Result
	for r := range out {
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("expected blank lines to be skipped, got %d records", len(got))
	}
}

func TestDecodeMidStreamJSONErrorReturnsParseErrorWithLineNumber(t *testing.T) {
	body := gzipLines(resultLine("r1"), "{not valid json", resultLine("r3"))
	out := make(chan record.Result, 10)

	err := Decode[record.Result](context.Background(), body, 0, out)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeParse {
		t.Fatalf("expected a CodeParse error, got %v", err)
	}
	if appErr.Line != 2 {
		t.Fatalf("expected the error to point at line 2, got %d", appErr.Line)
	}
}

func TestDecodeMissingRequiredFieldReturnsParseError(t *testing.T) {
	line, _ := json.Marshal(record.Result{RunID: "r1"})
	body := gzipLines(string(line))
	out := make(chan record.Result, 10)

	err := Decode[record.Result](context.Background(), body, 0, out)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeParse {
		t.Fatalf("expected validation failure to surface as a parse error, got %v", err)
	}
}

func TestDecodeUncompressedByteCapStopsDecompression(t *testing.T) {
	body := gzipLines(resultLine("r1"), resultLine("r2"), resultLine("r3"))
	out := make(chan record.Result, 10)

	err := Decode[record.Result](context.Background(), body, 8, out)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodePayloadTooLarge {
		t.Fatalf("expected a payload-too-large error once the decompressed budget is exceeded, got %v", err)
	}
}

func TestDecodeClosesOutputChannelOnEveryPath(t *testing.T) {
	body := gzipLines("{not valid json")
	out := make(chan record.Result, 10)

	_ = Decode[record.Result](context.Background(), body, 0, out)

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected the output channel to be empty")
		}
	default:
		t.Fatal("expected the output channel to be closed and readable without blocking")
	}
}

func TestDecodeCancelledContextUnblocksPendingSend(t *testing.T) {
	body := gzipLines(resultLine("r1"), resultLine("r2"))
	out := make(chan record.Result) // unbuffered: first send blocks until cancellation

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Decode[record.Result](ctx, body, 0, out)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
