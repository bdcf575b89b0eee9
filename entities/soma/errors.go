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

package soma

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when an open or read targets a URI with no
// backing object.
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no SOMA object at %q", e.URI)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// AlreadyExistsError is returned when create targets an occupied URI.
type AlreadyExistsError struct {
	URI string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("object already exists at %q", e.URI)
}

func IsAlreadyExists(err error) bool {
	var e *AlreadyExistsError
	return errors.As(err, &e)
}

// TypeMismatchError is returned when open observes a different stored
// type tag than the caller requested.
type TypeMismatchError struct {
	URI      string
	Expected Type
	Actual   Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("object at %q is a %s, not a %s", e.URI, e.Actual, e.Expected)
}

func IsTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// SchemaError covers unsupported types, reserved-name collisions and
// schema/row mismatches on write.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Msg
}

func Schemaf(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// ModeError is returned for reads on write-mode handles, mutations on
// read-mode handles, and any data operation on a closed handle.
type ModeError struct {
	Op     string
	Mode   Mode
	Closed bool
}

func (e *ModeError) Error() string {
	if e.Closed {
		return fmt.Sprintf("%s: object is closed", e.Op)
	}
	return fmt.Sprintf("%s: not allowed on a handle opened in mode %q", e.Op, e.Mode)
}

func IsModeError(err error) bool {
	var e *ModeError
	return errors.As(err, &e)
}

// CoordError is returned for malformed coordinates and slices: inverted
// bounds, out-of-domain points, wrong dimensionality.
type CoordError struct {
	Msg string
}

func (e *CoordError) Error() string {
	return "coords: " + e.Msg
}

func Coordf(format string, args ...interface{}) *CoordError {
	return &CoordError{Msg: fmt.Sprintf(format, args...)}
}

func IsCoordError(err error) bool {
	var e *CoordError
	return errors.As(err, &e)
}

// ValidationError is returned when a pre-defined field of a composed type
// violates its name/type constraint, or when an unsupported capability
// combination is requested.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
