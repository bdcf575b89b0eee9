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

// Package dataframe implements the multi-column annotation table: a
// fixed Arrow schema declared at creation, one or more indexed columns
// addressing rows, upsert-by-index writes and filtered, partitionable,
// batched reads.
package dataframe

import (
	"context"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/scan"
)

func init() {
	lifecycle.RegisterKind(soma.TypeDataFrame, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		return newFromBase(base)
	})
}

// DataFrame is a handle on one dataframe object. The schema and index
// column selection are immutable after creation; rows are addressed by
// their index-column tuple.
type DataFrame struct {
	*lifecycle.Object

	sc        *arrow.Schema
	indexCols []string
	idxPos    []int

	mu      sync.Mutex
	rows    []scan.Row
	loaded  bool
	written bool
}

// Create claims uri with the validated form of sc. The soma_joinid
// column is injected when absent, string and binary columns are promoted
// to their large variants, and an empty indexColumns defaults to
// soma_joinid alone.
func Create(ctx context.Context, mgr *lifecycle.Manager, uri string, sc *arrow.Schema, indexColumns []string) (*DataFrame, error) {
	stored, idx, err := schema.ValidateDataFrame(sc, indexColumns)
	if err != nil {
		return nil, err
	}
	fields, err := schema.Marshal(stored)
	if err != nil {
		return nil, err
	}
	base, err := mgr.CreateObject(ctx, uri, &lifecycle.Manifest{
		SOMAType:     soma.TypeDataFrame,
		Fields:       fields,
		IndexColumns: idx,
	})
	if err != nil {
		return nil, err
	}
	df, err := newFromBase(base)
	if err != nil {
		return nil, err
	}
	df.loaded = true
	return df, nil
}

func newFromBase(base *lifecycle.Object) (*DataFrame, error) {
	man := base.Manifest()
	sc, err := schema.Unmarshal(man.Fields)
	if err != nil {
		return nil, err
	}
	idxPos := make([]int, len(man.IndexColumns))
	for i, name := range man.IndexColumns {
		pos := sc.FieldIndices(name)
		if len(pos) == 0 {
			return nil, soma.Schemaf("stored index column %q is not in the schema", name)
		}
		idxPos[i] = pos[0]
	}
	df := &DataFrame{
		Object:    base,
		sc:        sc,
		indexCols: man.IndexColumns,
		idxPos:    idxPos,
	}
	base.SetFlush(df.flush)
	return df, nil
}

// Schema returns the stored schema, exactly as validation fixed it at
// creation time.
func (df *DataFrame) Schema() *arrow.Schema {
	return df.sc
}

// IndexColumnNames returns the index columns in their declared order.
func (df *DataFrame) IndexColumnNames() []string {
	out := make([]string, len(df.indexCols))
	copy(out, df.indexCols)
	return out
}

// Count returns the number of stored rows.
func (df *DataFrame) Count(ctx context.Context) (int64, error) {
	if err := df.RequireOpen("count"); err != nil {
		return 0, err
	}
	rows, err := df.load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// load materializes the handle's data generation once and caches it.
// Read handles keep the generation their manifest named at open time, so
// later publishes by other handles stay invisible.
func (df *DataFrame) load(ctx context.Context) ([]scan.Row, error) {
	df.mu.Lock()
	defer df.mu.Unlock()
	if df.loaded {
		return df.rows, nil
	}
	key := df.Manifest().DataKey
	if key == "" {
		df.loaded = true
		return nil, nil
	}
	blob, err := df.Manager().GetData(ctx, df.URI(), key)
	if err != nil {
		return nil, err
	}
	rec, err := scan.DecodeIPC(blob)
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	rows, err := scan.RowsFromRecord(rec)
	if err != nil {
		return nil, err
	}
	df.rows = rows
	df.loaded = true
	return df.rows, nil
}

// Write upserts the rows of rec. The record must carry the full stored
// schema. A row whose index tuple matches a stored row replaces it;
// otherwise the row is appended. Data becomes visible to new handles
// only after Close.
func (df *DataFrame) Write(ctx context.Context, rec arrow.Record) error {
	if err := df.RequireWrite("write"); err != nil {
		return err
	}
	if !schema.Equal(rec.Schema(), df.sc) {
		return soma.Schemaf("write batch schema does not match the dataframe schema")
	}
	incoming, err := scan.RowsFromRecord(rec)
	if err != nil {
		return err
	}
	if _, err := df.load(ctx); err != nil {
		return err
	}

	df.mu.Lock()
	defer df.mu.Unlock()

	joinPos := df.sc.FieldIndices(soma.JoinIDColumn)[0]
	byTuple := make(map[string]int, len(df.rows))
	byJoinID := make(map[int64]string, len(df.rows))
	for i, row := range df.rows {
		key := df.tupleKey(row)
		byTuple[key] = i
		if id, ok := row[joinPos].(int64); ok {
			byJoinID[id] = key
		}
	}

	for _, row := range incoming {
		id, ok := row[joinPos].(int64)
		if !ok {
			return soma.Schemaf("row is missing its %s value", soma.JoinIDColumn)
		}
		key := df.tupleKey(row)
		if prev, seen := byJoinID[id]; seen && prev != key {
			return soma.Schemaf("%s %d is already bound to a different index tuple", soma.JoinIDColumn, id)
		}
		if i, exists := byTuple[key]; exists {
			if old, ok := df.rows[i][joinPos].(int64); ok && old != id {
				delete(byJoinID, old)
			}
			df.rows[i] = row
		} else {
			byTuple[key] = len(df.rows)
			df.rows = append(df.rows, row)
		}
		byJoinID[id] = key
	}
	df.written = true
	df.Manager().Metrics().RowsWritten(string(soma.TypeDataFrame), int64(len(incoming)))
	return nil
}

// flush publishes accumulated writes as a fresh data generation. Rows
// are stored sorted by index tuple, which fixes the storage order that
// auto-ordered reads and partition boundaries rely on.
func (df *DataFrame) flush(ctx context.Context) error {
	df.mu.Lock()
	written := df.written
	rows := df.rows
	df.mu.Unlock()
	if !written {
		return nil
	}

	sortRows(rows, df.idxPos, false)
	rec, err := scan.RecordFromRows(df.sc, rows, nil)
	if err != nil {
		return err
	}
	defer rec.Release()
	blob, err := scan.EncodeIPC(rec)
	if err != nil {
		return err
	}
	key, err := df.Manager().StageData(ctx, df.URI(), blob)
	if err != nil {
		return err
	}
	df.Manifest().DataKey = key
	df.MarkDirty()
	return nil
}

// tupleKey builds a collision-free string key for a row's index tuple.
func (df *DataFrame) tupleKey(row scan.Row) string {
	return tupleKey(row, df.idxPos)
}
