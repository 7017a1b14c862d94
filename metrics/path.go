// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Path names a metric as an ordered sequence of non-empty elements. A
// literal string is a single element; Child and Concat compose longer
// paths. A Path constructed from non-empty input is never empty.
type Path struct {
	elems []string
}

// NewPath builds a path from elems, dropping empty elements.
func NewPath(elems ...string) Path {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			out = append(out, e)
		}
	}
	return Path{elems: out}
}

// Child returns the path extended with one trailing element.
func (p Path) Child(elem string) Path {
	return p.Concat(NewPath(elem))
}

// Concat returns the concatenation of p and other, preserving order.
func (p Path) Concat(other Path) Path {
	if len(p.elems) == 0 {
		return other
	}
	if len(other.elems) == 0 {
		return p
	}
	elems := make([]string, 0, len(p.elems)+len(other.elems))
	elems = append(elems, p.elems...)
	elems = append(elems, other.elems...)
	return Path{elems: elems}
}

// Elements returns the path elements in order. The returned slice must not
// be modified.
func (p Path) Elements() []string {
	return p.elems
}

// Len returns the number of elements.
func (p Path) Len() int {
	return len(p.elems)
}

// Join renders the path with delim between elements.
func (p Path) Join(delim string) string {
	return strings.Join(p.elems, delim)
}

func (p Path) String() string {
	return p.Join("/")
}

// Equal reports element-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p.elems) != len(other.elems) {
		return false
	}
	for i, e := range p.elems {
		if e != other.elems[i] {
			return false
		}
	}
	return true
}

// Hash returns a stable hash of the element sequence. The same input hashes
// identically across processes and runs, so path slot lookup is
// deterministic.
func (p Path) Hash() uint64 {
	d := xxhash.New()
	for _, e := range p.elems {
		d.WriteString(e)
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// Tags maps tag keys to metric values. Distinct tag sets select distinct
// live instances under one registered path.
type Tags map[string]Value

// EmptyTags is the canonical untagged permutation.
var EmptyTags = Tags{}

// Equal reports order-independent equality of the two tag sets.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Hash combines each key and value hash commutatively so that insertion
// order cannot influence the result.
func (t Tags) Hash() uint64 {
	var h uint64
	for k, v := range t {
		h += xxhash.Sum64String(k) ^ v.Hash()
	}
	return h
}

// clone gives the registry its own copy of caller-supplied tags.
func (t Tags) clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
