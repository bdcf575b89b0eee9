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

// Package somadb stores annotated 2D matrix datasets as addressable
// objects behind URIs: heterogeneous collections, schema'd dataframes
// and dense or sparse N-dimensional arrays, composed into experiments
// and measurements.
//
// Every object is created once with an immutable type, then opened in
// read or write mode. Writes accumulate on the handle and become
// visible atomically when it closes; readers holding an open handle
// keep the snapshot they opened. Reads deliver Arrow record batches
// lazily and can be projected, coordinate-sliced, value-filtered,
// ordered and partitioned for concurrent consumers.
//
// Objects live on pluggable storage schemes: mem:// for tests, file://
// for local trees and s3:// for object stores.
package somadb
