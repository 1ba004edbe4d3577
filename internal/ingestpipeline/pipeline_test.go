package ingestpipeline

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/nucleus/ingest-core/internal/apperr"
	"github.com/nucleus/ingest-core/internal/batchinsert"
	"github.com/nucleus/ingest-core/internal/record"
)

type fakeExecer struct {
	execCalls int
	failWith  error
}

func (f *fakeExecer) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	f.execCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	return nil, nil
}

func resultLine(i int) string {
	b, _ := json.Marshal(record.Result{
		RunID:          fmt.Sprintf("run-%d", i),
		TaskID:         "task",
		IdempotencyKey: fmt.Sprintf("idem-%d", i),
		Payload:        json.RawMessage(`{}`),
	})
	return string(b)
}

func gzipBody(lines ...string) *bytes.Buffer {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, l := range lines {
		gz.Write([]byte(l))
		gz.Write([]byte("\n"))
	}
	gz.Close()
	return &buf
}

func TestRunHappyPathInsertsAllRecords(t *testing.T) {
	body := gzipBody(resultLine(1), resultLine(2), resultLine(3))
	fe := &fakeExecer{}
	ins := batchinsert.New[record.Result](fe, 1000)

	err := Run[record.Result](context.Background(), body, 0, ins, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fe.execCalls != 1 {
		t.Fatalf("expected a single flush for a small stream, got %d", fe.execCalls)
	}
}

func TestRunDecoderErrorCancelsInserter(t *testing.T) {
	body := gzipBody(resultLine(1), "{not valid json", resultLine(3))
	fe := &fakeExecer{}
	ins := batchinsert.New[record.Result](fe, 1000)

	err := Run[record.Result](context.Background(), body, 0, ins, 1)
	if err == nil {
		t.Fatal("expected the decode failure to propagate")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeParse {
		t.Fatalf("expected a CodeParse error to win, got %v", err)
	}
}

func TestRunInserterErrorCancelsDecoder(t *testing.T) {
	// A channel capacity of 1 with many records forces the decoder to block
	// on a send once the inserter has failed and stopped reading, exercising
	// the cancellation path rather than the decoder simply finishing first.
	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, resultLine(i))
	}
	body := gzipBody(lines...)

	fe := &fakeExecer{failWith: fmt.Errorf("boom")}
	ins := batchinsert.New[record.Result](fe, 1)

	err := Run[record.Result](context.Background(), body, 0, ins, 1)
	if err == nil {
		t.Fatal("expected the insert failure to propagate")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeDatabase {
		t.Fatalf("expected a CodeDatabase error to win, got %v", err)
	}
}
