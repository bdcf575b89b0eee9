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
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/pkg/errors"
)

// EncodeIPC serializes one record batch in the Arrow IPC stream format.
// This is the at-rest encoding of every data generation.
func EncodeIPC(rec arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()))
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "write ipc stream")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close ipc stream")
	}
	return buf.Bytes(), nil
}

// DecodeIPC reads an Arrow IPC stream back into a single record. Multi-
// batch streams are concatenated.
func DecodeIPC(data []byte) (arrow.Record, error) {
	r, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open ipc stream")
	}
	defer r.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "read ipc stream")
	}
	return ConcatRecords(r.Schema(), recs)
}
