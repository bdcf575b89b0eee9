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

// Package errorcompounder collects the errors of a multi-step teardown,
// most notably the depth-first close cascade, into a single error.
package errorcompounder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type ErrorCompounder struct {
	errors []error
}

func New() *ErrorCompounder {
	return &ErrorCompounder{}
}

func (ec *ErrorCompounder) Add(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

func (ec *ErrorCompounder) Addf(format string, args ...interface{}) {
	ec.errors = append(ec.errors, fmt.Errorf(format, args...))
}

func (ec *ErrorCompounder) AddWrap(err error, msg string) {
	if err != nil {
		ec.errors = append(ec.errors, errors.Wrap(err, msg))
	}
}

func (ec *ErrorCompounder) Empty() bool {
	return len(ec.errors) == 0
}

func (ec *ErrorCompounder) Len() int {
	return len(ec.errors)
}

// First returns the earliest collected error, which is what callers
// unwrap against.
func (ec *ErrorCompounder) First() error {
	if len(ec.errors) == 0 {
		return nil
	}
	return ec.errors[0]
}

// ToError flattens the collected errors. A single error passes through
// unchanged so that typed errors survive errors.As.
func (ec *ErrorCompounder) ToError() error {
	switch len(ec.errors) {
	case 0:
		return nil
	case 1:
		return ec.errors[0]
	default:
		var sb strings.Builder
		for i, err := range ec.errors[1:] {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(err.Error())
		}
		return errors.Wrap(ec.errors[0], sb.String())
	}
}
