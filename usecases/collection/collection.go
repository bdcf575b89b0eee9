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

// Package collection implements the string-keyed containers: the plain
// heterogeneous collection plus the composed Experiment and Measurement
// types with their constrained slots. Entries are references, not
// embeddings; a collection stores URIs and type tags and reifies members
// on demand.
package collection

import (
	"context"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/dataframe"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/ndarray"
)

func init() {
	lifecycle.RegisterKind(soma.TypeCollection, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		return newFromBase(base), nil
	})
}

// Collection is a handle on one string-keyed container. Members opened
// through Get are owned by the collection and close with it; members
// merely linked via Set keep their own lifecycle.
type Collection struct {
	*lifecycle.Object

	open map[string]soma.Object

	// slotCheck constrains what type each key may hold; nil means
	// unconstrained. Composed collections install their slot tables
	// here, so Set and the AddNew constructors enforce the same rules.
	slotCheck func(key string, t soma.Type) error
}

// Create claims uri as an empty collection.
func Create(ctx context.Context, mgr *lifecycle.Manager, uri string) (*Collection, error) {
	base, err := mgr.CreateObject(ctx, uri, &lifecycle.Manifest{SOMAType: soma.TypeCollection})
	if err != nil {
		return nil, err
	}
	return newFromBase(base), nil
}

func newFromBase(base *lifecycle.Object) *Collection {
	return &Collection{Object: base, open: map[string]soma.Object{}}
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.Manifest().Entries)
}

// Has reports whether key is bound.
func (c *Collection) Has(key string) bool {
	return c.Manifest().EntryIndex(key) >= 0
}

// Keys returns the bound keys in lexicographic order.
func (c *Collection) Keys() []string {
	entries := c.Manifest().Entries
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the entry table, with relative references
// resolved against the collection URI.
func (c *Collection) Entries() []soma.CollectionEntry {
	entries := c.Manifest().Entries
	out := make([]soma.CollectionEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Relative {
			out[i].URI = soma.JoinURI(c.URI(), out[i].URI)
		}
	}
	return out
}

// childURI resolves an entry to its absolute URI. Relative entries
// follow the collection wherever its tree is relocated.
func (c *Collection) childURI(e soma.CollectionEntry) string {
	if e.Relative {
		return soma.JoinURI(c.URI(), e.URI)
	}
	return e.URI
}

// Get opens the member at key in the collection's own mode. The handle
// is cached and owned: closing the collection closes it. A second Get of
// the same key returns the same handle.
func (c *Collection) Get(ctx context.Context, key string) (soma.Object, error) {
	if err := c.RequireOpen("get"); err != nil {
		return nil, err
	}
	if child, ok := c.open[key]; ok && !child.Closed() {
		return child, nil
	}
	i := c.Manifest().EntryIndex(key)
	if i < 0 {
		return nil, &soma.NotFoundError{URI: soma.JoinURI(c.URI(), key)}
	}
	e := c.Manifest().Entries[i]
	child, err := c.Manager().OpenTyped(ctx, c.childURI(e), e.SOMAType, c.Mode())
	if err != nil {
		return nil, err
	}
	c.open[key] = child
	c.Adopt(child)
	return child, nil
}

// Set binds key to an existing object. uriType controls whether the
// stored reference is relative to the collection; auto stores a relative
// reference whenever value lives under the collection's URI.
func (c *Collection) Set(key string, value soma.Object, uriType soma.URIType) error {
	if err := c.RequireWrite("set"); err != nil {
		return err
	}
	if key == "" {
		return soma.Validationf("collection keys must be non-empty")
	}
	if err := c.allowSlot(key, value.SOMAType()); err != nil {
		return err
	}

	entry := soma.CollectionEntry{Key: key, URI: value.URI(), SOMAType: value.SOMAType()}
	suffix, under := soma.RelativeOf(c.URI(), value.URI())
	switch uriType {
	case soma.URITypeRelative:
		if !under {
			return soma.Validationf("%q does not live under the collection and cannot be stored relative", value.URI())
		}
		entry.URI, entry.Relative = suffix, true
	case soma.URITypeAuto:
		if under {
			entry.URI, entry.Relative = suffix, true
		}
	}

	man := c.Manifest()
	if i := man.EntryIndex(key); i >= 0 {
		man.Entries[i] = entry
	} else {
		man.Entries = append(man.Entries, entry)
	}
	delete(c.open, key)
	c.MarkDirty()
	return nil
}

// Del unbinds key. The member's stored data is not touched; deletion of
// storage is out of scope for the entry table.
func (c *Collection) Del(key string) error {
	if err := c.RequireWrite("del"); err != nil {
		return err
	}
	man := c.Manifest()
	i := man.EntryIndex(key)
	if i < 0 {
		return &soma.NotFoundError{URI: soma.JoinURI(c.URI(), key)}
	}
	man.Entries = append(man.Entries[:i], man.Entries[i+1:]...)
	delete(c.open, key)
	c.MarkDirty()
	return nil
}

// allowSlot applies the installed slot constraint, if any.
func (c *Collection) allowSlot(key string, t soma.Type) error {
	if c.slotCheck == nil {
		return nil
	}
	return c.slotCheck(key, t)
}

// defaultChildURI is where AddNew places a member when the caller does
// not pick a location: directly under the collection, named after the
// sanitized key.
func (c *Collection) defaultChildURI(key string) string {
	return soma.JoinURI(c.URI(), soma.SanitizeKey(key))
}

// addNew binds a freshly created child under key and adopts its handle.
func (c *Collection) addNew(key string, child soma.Object) error {
	if err := c.Set(key, child, soma.URITypeAuto); err != nil {
		return err
	}
	c.open[key] = child
	c.Adopt(child)
	return nil
}

// AddNewCollection creates a collection under the default child URI and
// binds it at key. The child handle is write-mode and owned.
func (c *Collection) AddNewCollection(ctx context.Context, key string) (*Collection, error) {
	if err := c.RequireWrite("add new collection"); err != nil {
		return nil, err
	}
	if err := c.allowSlot(key, soma.TypeCollection); err != nil {
		return nil, err
	}
	child, err := Create(ctx, c.Manager(), c.defaultChildURI(key))
	if err != nil {
		return nil, err
	}
	if err := c.addNew(key, child); err != nil {
		return nil, err
	}
	return child, nil
}

// AddNewDataFrame creates a dataframe under the default child URI and
// binds it at key.
func (c *Collection) AddNewDataFrame(ctx context.Context, key string, sc *arrow.Schema, indexColumns []string) (*dataframe.DataFrame, error) {
	if err := c.RequireWrite("add new dataframe"); err != nil {
		return nil, err
	}
	if err := c.allowSlot(key, soma.TypeDataFrame); err != nil {
		return nil, err
	}
	child, err := dataframe.Create(ctx, c.Manager(), c.defaultChildURI(key), sc, indexColumns)
	if err != nil {
		return nil, err
	}
	if err := c.addNew(key, child); err != nil {
		return nil, err
	}
	return child, nil
}

// AddNewDenseNDArray creates a dense array under the default child URI
// and binds it at key.
func (c *Collection) AddNewDenseNDArray(ctx context.Context, key string, elem arrow.DataType, shape []int64) (*ndarray.DenseNDArray, error) {
	if err := c.RequireWrite("add new dense ndarray"); err != nil {
		return nil, err
	}
	if err := c.allowSlot(key, soma.TypeDenseNDArray); err != nil {
		return nil, err
	}
	child, err := ndarray.CreateDense(ctx, c.Manager(), c.defaultChildURI(key), elem, shape)
	if err != nil {
		return nil, err
	}
	if err := c.addNew(key, child); err != nil {
		return nil, err
	}
	return child, nil
}

// AddNewSparseNDArray creates a sparse array under the default child URI
// and binds it at key.
func (c *Collection) AddNewSparseNDArray(ctx context.Context, key string, elem arrow.DataType, shape []int64) (*ndarray.SparseNDArray, error) {
	if err := c.RequireWrite("add new sparse ndarray"); err != nil {
		return nil, err
	}
	if err := c.allowSlot(key, soma.TypeSparseNDArray); err != nil {
		return nil, err
	}
	child, err := ndarray.CreateSparse(ctx, c.Manager(), c.defaultChildURI(key), elem, shape)
	if err != nil {
		return nil, err
	}
	if err := c.addNew(key, child); err != nil {
		return nil, err
	}
	return child, nil
}
