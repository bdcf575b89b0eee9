//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package scan

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/weaviate/somadb/entities/soma"
)

// BuildFunc materializes the rows [lo, hi) of a prepared result set as
// one record batch. lo == hi yields a zero-row record carrying the
// result schema.
type BuildFunc func(lo, hi int64) (arrow.Record, error)

// RecordIter is the lazy batch iterator behind every tabular read. It
// holds a snapshot of the result-set size and slices it into batches on
// demand; no rows are materialized before the first Next.
//
// An empty result set still yields exactly one zero-row batch, so
// consumers always observe the result schema.
type RecordIter struct {
	build    BuildFunc
	total    int64
	pos      int64
	step     int64
	cur      arrow.Record
	err      error
	released bool
	started  bool
}

// NewRecordIter slices total rows into batches of batch-derived size.
// defaultRows is used when the batch size is auto; rowBytes is the
// approximate encoded width of one row, used to translate a byte cap
// into a row cap.
func NewRecordIter(total int64, batch soma.BatchSize, defaultRows, rowBytes int64, build BuildFunc) (*RecordIter, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	step := defaultRows
	switch {
	case batch.Count > 0:
		step = batch.Count
	case batch.Bytes > 0:
		if rowBytes < 1 {
			rowBytes = 1
		}
		step = batch.Bytes / rowBytes
	}
	if step < 1 {
		step = 1
	}
	return &RecordIter{build: build, total: total, step: step}, nil
}

// Next advances to the next batch. It returns false once the result set
// is exhausted, an error occurred, or the iterator was released.
func (it *RecordIter) Next() bool {
	if it.released || it.err != nil {
		return false
	}
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
	if it.started && it.pos >= it.total {
		return false
	}
	it.started = true
	hi := it.pos + it.step
	if hi > it.total {
		hi = it.total
	}
	it.cur, it.err = it.build(it.pos, hi)
	it.pos = hi
	return it.err == nil
}

// Record returns the current batch. Valid until the next call to Next or
// Release.
func (it *RecordIter) Record() arrow.Record {
	return it.cur
}

func (it *RecordIter) Err() error {
	return it.err
}

// Release frees the current batch and ends iteration. Safe to call at
// any point and more than once.
func (it *RecordIter) Release() {
	if it.released {
		return
	}
	it.released = true
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
}

// Concat materializes every batch not yet consumed into a single record
// and releases the iterator. The caller releases the result.
func (it *RecordIter) Concat() (arrow.Record, error) {
	if it.released {
		return nil, errors.New("iterator already released")
	}
	if it.err != nil {
		return nil, it.err
	}
	rec, err := it.build(it.pos, it.total)
	it.pos = it.total
	it.started = true
	it.Release()
	return rec, err
}

// ConcatRecords merges records sharing a schema into one. Every input
// stays owned by the caller; the result is a fresh record.
func ConcatRecords(sc *arrow.Schema, recs []arrow.Record) (arrow.Record, error) {
	if len(recs) == 0 {
		return array.NewRecord(sc, nil, 0), nil
	}
	if len(recs) == 1 {
		recs[0].Retain()
		return recs[0], nil
	}
	var rows int64
	cols := make([]arrow.Array, sc.NumFields())
	for i := range cols {
		parts := make([]arrow.Array, len(recs))
		for j, rec := range recs {
			parts[j] = rec.Column(i)
		}
		merged, err := array.Concatenate(parts, memory.DefaultAllocator)
		if err != nil {
			return nil, errors.Wrap(err, "concatenate batches")
		}
		defer merged.Release()
		cols[i] = merged
	}
	for _, rec := range recs {
		rows += rec.NumRows()
	}
	return array.NewRecord(sc, cols, rows), nil
}
