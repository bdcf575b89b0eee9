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
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/sync/errgroup"

	"github.com/weaviate/somadb/entities/soma"
)

// eagerDepth is how many batches the prefetcher keeps in flight ahead of
// the consumer.
const eagerDepth = 2

// EagerIter wraps a ReadIter with a background goroutine that keeps the
// next batches materialized while the consumer works on the current one.
// It takes ownership of the inner iterator.
type EagerIter struct {
	sc     *arrow.Schema
	ch     chan arrow.Record
	g      *errgroup.Group
	cancel context.CancelFunc

	cur      arrow.Record
	err      error
	released bool
	done     bool
}

// NewEagerIter starts prefetching from inner immediately.
func NewEagerIter(ctx context.Context, sc *arrow.Schema, inner soma.ReadIter) *EagerIter {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	it := &EagerIter{
		sc:     sc,
		ch:     make(chan arrow.Record, eagerDepth),
		g:      g,
		cancel: cancel,
	}
	g.Go(func() error {
		defer close(it.ch)
		defer inner.Release()
		for inner.Next() {
			rec := inner.Record()
			rec.Retain()
			select {
			case it.ch <- rec:
			case <-ctx.Done():
				rec.Release()
				return ctx.Err()
			}
		}
		return inner.Err()
	})
	return it
}

func (it *EagerIter) Next() bool {
	if it.released || it.done || it.err != nil {
		return false
	}
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
	rec, ok := <-it.ch
	if !ok {
		it.done = true
		it.err = it.g.Wait()
		return false
	}
	it.cur = rec
	return true
}

func (it *EagerIter) Record() arrow.Record {
	return it.cur
}

func (it *EagerIter) Err() error {
	return it.err
}

// Release stops the prefetcher and frees all batches still in flight.
func (it *EagerIter) Release() {
	if it.released {
		return
	}
	it.released = true
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
	it.cancel()
	for rec := range it.ch {
		rec.Release()
	}
	//nolint:errcheck // shutting down; the consumer already has its error
	it.g.Wait()
}

// Concat drains the remaining batches into a single record and releases
// the iterator.
func (it *EagerIter) Concat() (arrow.Record, error) {
	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for it.Next() {
		rec := it.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if it.err != nil {
		it.Release()
		return nil, it.err
	}
	it.Release()
	return ConcatRecords(it.sc, recs)
}
