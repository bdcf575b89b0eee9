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
	"strings"

	"github.com/pkg/errors"
)

// ParseURI splits a SOMA URI into its scheme and the backend-interpreted
// remainder, e.g. "s3://bucket/a/b" -> ("s3", "bucket/a/b").
func ParseURI(uri string) (scheme, rest string, err error) {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return "", "", errors.Errorf("invalid URI %q: missing scheme", uri)
	}
	scheme = uri[:i]
	rest = uri[i+3:]
	if strings.HasSuffix(rest, "/") {
		return "", "", errors.Errorf("invalid URI %q: trailing slash", uri)
	}
	return scheme, rest, nil
}

// JoinURI appends a child suffix to a parent URI.
func JoinURI(parent, suffix string) string {
	return strings.TrimSuffix(parent, "/") + "/" + suffix
}

// ValidateSuffix checks that a relative reference is strictly
// child-descending: no absolute paths, no empty segments, no ascension.
func ValidateSuffix(suffix string) error {
	if suffix == "" {
		return Validationf("relative reference must not be empty")
	}
	if strings.HasPrefix(suffix, "/") || strings.Contains(suffix, "://") {
		return Validationf("relative reference %q must be a child path", suffix)
	}
	for _, seg := range strings.Split(suffix, "/") {
		if seg == "" {
			return Validationf("relative reference %q has an empty segment", suffix)
		}
		if seg == ".." || seg == "." {
			return Validationf("relative reference %q may not ascend", suffix)
		}
	}
	return nil
}

// RelativeOf returns the child-relative suffix of child under parent, if
// one exists. Both URIs must share scheme and location prefix.
func RelativeOf(parent, child string) (string, bool) {
	prefix := strings.TrimSuffix(parent, "/") + "/"
	if !strings.HasPrefix(child, prefix) {
		return "", false
	}
	suffix := child[len(prefix):]
	if ValidateSuffix(suffix) != nil {
		return "", false
	}
	return suffix, true
}

// SanitizeKey turns a collection key into a path-safe URI segment for
// default child locations.
func SanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
