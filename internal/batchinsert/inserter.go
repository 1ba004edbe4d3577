// Package batchinsert implements the batched inserter (spec §4.3): it
// drains a channel of records of one kind, accumulates them into batches,
// and commits each batch as a single multi-row parameterized INSERT.
package batchinsert

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nucleus/ingest-core/internal/apperr"
	"github.com/nucleus/ingest-core/internal/record"
)

// DefaultBatchLimit is the canonical batch size spec §4.3 names.
const DefaultBatchLimit = 1000

// maxParams is Postgres's hard cap on bind parameters per statement.
const maxParams = 65535

// Execer is the subset of *sql.DB (or *sql.Tx) the inserter needs. Kept as
// an interface so tests can substitute a fake that records the statements
// it was asked to run.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Inserter drains in, batching up to an effective limit derived from
// limit and the record kind's field count so that
// effectiveLimit*fieldCount never exceeds Postgres's parameter cap — the
// hard correctness requirement in spec §4.3, not an optimization.
//
// Across one Inserter's lifetime, flush only ever sees two distinct batch
// sizes: the steady-state effectiveLimit and, at most once, a smaller final
// batch when the channel closes mid-batch. placeholders caches the
// "(...),(...),..." fragment for each size it has seen, so the common case
// (effectiveLimit) builds that fragment exactly once rather than on every
// flush.
type Inserter[T record.Insertable] struct {
	db             Execer
	effectiveLimit int
	buf            []T

	insertPrefix   string
	conflictSuffix string
	fieldCount     int
	placeholders   map[int]string
}

// New builds an Inserter. limit is the configured batch size (spec's
// BATCH_LIMIT, canonically 1000); it is silently lowered so that
// limit*fieldCount <= 65535.
func New[T record.Insertable](db Execer, limit int) *Inserter[T] {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	var zero T
	fieldCount := zero.FieldCount()
	if fieldCount > 0 {
		if max := maxParams / fieldCount; limit > max {
			limit = max
		}
	}
	if limit < 1 {
		limit = 1
	}

	var prefix strings.Builder
	prefix.WriteString("INSERT INTO ")
	prefix.WriteString(zero.TableName())
	prefix.WriteString(" (")
	prefix.WriteString(strings.Join(zero.ColumnNames(), ", "))
	prefix.WriteString(") VALUES ")

	var suffix string
	if clause := zero.ConflictClause(); clause != "" {
		suffix = " " + clause
	}

	return &Inserter[T]{
		db:             db,
		effectiveLimit: limit,
		buf:            make([]T, 0, limit),
		insertPrefix:   prefix.String(),
		conflictSuffix: suffix,
		fieldCount:     fieldCount,
		placeholders:   make(map[int]string, 2),
	}
}

// Run drains in until it is closed or ctx is cancelled, flushing full
// batches as they fill and a final partial batch on channel closure. It
// returns apperr.Database on the first statement failure — no retry, no
// partial commit within a batch, because a single statement is atomic to
// the database. When it observes ctx cancellation (the joiner cancels it
// when the decoder fails) Run returns ctx.Err() without flushing the
// pending batch; if it observes the channel's closure first, the pending
// batch is flushed as usual.
func (ins *Inserter[T]) Run(ctx context.Context, in <-chan T) error {
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return ins.flush(ctx)
			}
			ins.buf = append(ins.buf, rec)
			if len(ins.buf) >= ins.effectiveLimit {
				if err := ins.flush(ctx); err != nil {
					return err
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ins *Inserter[T]) flush(ctx context.Context) error {
	if len(ins.buf) == 0 {
		return nil
	}

	query, args := ins.buildInsert(ins.buf)
	if _, err := ins.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Database(err)
	}

	ins.buf = ins.buf[:0]
	return nil
}

// buildInsert renders one INSERT INTO <table>(<columns>) VALUES
// <N placeholder groups> [<conflict clause>] statement and the flattened,
// in-order argument list for batch. The placeholder-groups fragment depends
// only on len(batch) and the record kind's field count, never on the data
// itself, so it is built once per distinct batch length and reused from
// ins.placeholders thereafter.
func (ins *Inserter[T]) buildInsert(batch []T) (string, []any) {
	n := len(batch)

	groups, ok := ins.placeholders[n]
	if !ok {
		groups = placeholderGroups(n, ins.fieldCount)
		ins.placeholders[n] = groups
	}

	var sb strings.Builder
	sb.Grow(len(ins.insertPrefix) + len(groups) + len(ins.conflictSuffix))
	sb.WriteString(ins.insertPrefix)
	sb.WriteString(groups)
	sb.WriteString(ins.conflictSuffix)

	args := make([]any, 0, n*ins.fieldCount)
	for _, rec := range batch {
		args = rec.Bind(args)
	}

	return sb.String(), args
}

// placeholderGroups renders n comma-separated "($a,$b,...)" groups of
// fieldCount placeholders each, numbered sequentially from $1.
func placeholderGroups(n, fieldCount int) string {
	var sb strings.Builder
	placeholder := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for f := 0; f < fieldCount; f++ {
			if f > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", placeholder)
			placeholder++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
