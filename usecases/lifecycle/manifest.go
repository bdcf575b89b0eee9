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

package lifecycle

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
)

// manifestName is the blob every object's descriptor lives in, relative
// to the object's URI. Its presence is what makes a URI "occupied".
const manifestName = ".soma.json"

// Manifest is the stored descriptor of one object: its immutable type
// tag, metadata, type-specific schema information, the current data
// generation and, for collections, the entry table. Swapping the
// manifest is the atomic publish point of a close.
type Manifest struct {
	SOMAType soma.Type              `json:"soma_type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// DataFrame.
	Fields       []schema.FieldManifest `json:"fields,omitempty"`
	IndexColumns []string               `json:"index_columns,omitempty"`

	// NDArray.
	ElemType string  `json:"elem_type,omitempty"`
	Shape    []int64 `json:"shape,omitempty"`

	// Data generation blob, relative to the object URI. Generations
	// are never rewritten in place, so a handle that loaded this key
	// keeps a stable snapshot regardless of later publishes.
	DataKey string `json:"data_key,omitempty"`

	// Collection entry table.
	Entries []soma.CollectionEntry `json:"entries,omitempty"`
}

func (m *Manifest) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal manifest")
	}
	return data, nil
}

func unmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "parse manifest")
	}
	// JSON numbers carry no int/float distinction; metadata declares
	// int64 and float64 scalars, so restore them from the literal.
	for k, v := range m.Metadata {
		num, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := num.Int64(); err == nil {
			m.Metadata[k] = i
		} else if f, err := num.Float64(); err == nil {
			m.Metadata[k] = f
		}
	}
	if !m.SOMAType.Valid() {
		return nil, errors.Errorf("manifest has unknown soma_type %q", m.SOMAType)
	}
	return &m, nil
}

// EntryIndex locates a collection entry by key, or returns -1.
func (m *Manifest) EntryIndex(key string) int {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			return i
		}
	}
	return -1
}
