// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

type valueKind uint8

const (
	intKind valueKind = iota
	floatKind
	stringKind
	durationKind
)

// Value is the variant type carried by tag sets and snapshots. It holds an
// integer, a float, a string or a duration and supports widening arithmetic
// across the variants. Every operation is total: undefined combinations
// degrade to a numeric interpretation when one exists and to a no-op
// otherwise, and division by zero yields zero.
type Value struct {
	kind valueKind
	num  int64 // intKind value; durationKind nanoseconds
	fl   float64
	str  string
}

// IntValue returns a Value holding i.
func IntValue(i int64) Value { return Value{kind: intKind, num: i} }

// FloatValue returns a Value holding f.
func FloatValue(f float64) Value { return Value{kind: floatKind, fl: f} }

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: stringKind, str: s} }

// DurationValue returns a Value holding d.
func DurationValue(d time.Duration) Value {
	return Value{kind: durationKind, num: int64(d)}
}

// typeScore ranks variants for arithmetic: when two values combine, the
// higher-scored side drives the result type. Wider beats narrower, float
// beats integer, durations rank with their representation plus a small bias
// and strings rank last.
func (v Value) typeScore() int {
	switch v.kind {
	case intKind:
		return 80
	case floatKind:
		return 160
	case durationKind:
		return 82
	default:
		return 1
	}
}

// Int64 returns the value as an integer, parsing string variants and
// rounding float variants.
func (v Value) Int64() int64 {
	i, _ := v.toInt()
	return i
}

// Float64 returns the value as a float, parsing string variants.
func (v Value) Float64() float64 {
	f, _ := v.toFloat()
	return f
}

// Duration returns the value as a duration. Numeric variants are
// interpreted as nanosecond counts.
func (v Value) Duration() time.Duration {
	switch v.kind {
	case durationKind:
		return time.Duration(v.num)
	default:
		return time.Duration(v.Int64())
	}
}

func (v Value) String() string {
	switch v.kind {
	case intKind:
		return strconv.FormatInt(v.num, 10)
	case floatKind:
		return strconv.FormatFloat(v.fl, 'f', -1, 64)
	case durationKind:
		return strconv.FormatInt(v.num, 10)
	default:
		return v.str
	}
}

func (v Value) toInt() (int64, bool) {
	switch v.kind {
	case intKind, durationKind:
		return v.num, true
	case floatKind:
		return int64(math.Round(v.fl)), true
	default:
		i, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
}

func (v Value) toFloat() (float64, bool) {
	switch v.kind {
	case intKind, durationKind:
		return float64(v.num), true
	case floatKind:
		return v.fl, true
	default:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	}
}

// Hash returns a stable hash of the underlying representation. Two values
// that compare equal across different variants are not required to share a
// hash; cross-variant equality is rare and tag values are homogeneous in
// practice.
func (v Value) Hash() uint64 {
	if v.kind == stringKind {
		return xxhash.Sum64String(v.str)
	}
	var b [9]byte
	b[0] = byte(v.kind)
	switch v.kind {
	case floatKind:
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v.fl))
	default:
		binary.LittleEndian.PutUint64(b[1:], uint64(v.num))
	}
	return xxhash.Sum64(b[:])
}

// Add returns the widening sum of v and o.
func (v Value) Add(o Value) Value {
	if o.typeScore() > v.typeScore() {
		return o.add(v)
	}
	return v.add(o)
}

func (v Value) add(o Value) Value {
	switch v.kind {
	case intKind:
		if i, ok := o.toInt(); ok {
			v.num += i
		} else if f, ok := o.toFloat(); ok {
			v.num += int64(f)
		}
	case floatKind:
		f, _ := o.toFloat()
		v.fl += f
	case durationKind:
		v.num += int64(o.Duration())
	default:
		v.str += o.String()
	}
	return v
}

// Sub returns the widening difference of v and o.
func (v Value) Sub(o Value) Value {
	return v.Add(o.Neg())
}

// Mul returns the widening product of v and o.
func (v Value) Mul(o Value) Value {
	if o.typeScore() > v.typeScore() {
		return o.mul(v)
	}
	return v.mul(o)
}

func (v Value) mul(o Value) Value {
	switch v.kind {
	case intKind:
		if i, ok := o.toInt(); ok {
			v.num *= i
		} else if f, ok := o.toFloat(); ok {
			v.num = int64(float64(v.num) * f)
		}
	case floatKind:
		if f, ok := o.toFloat(); ok {
			v.fl *= f
		}
	case durationKind:
		if f, ok := o.toFloat(); ok {
			v.num = int64(float64(v.num) * f)
		}
	}
	return v
}

// Div returns the widening quotient of v and o. Division by zero yields
// zero rather than a trap.
func (v Value) Div(o Value) Value {
	if o.typeScore() > v.typeScore() {
		return o.div(v)
	}
	return v.div(o)
}

func (v Value) div(o Value) Value {
	switch v.kind {
	case intKind:
		if i, ok := o.toInt(); ok {
			if i == 0 {
				v.num = 0
			} else {
				v.num /= i
			}
		}
	case floatKind:
		if f, ok := o.toFloat(); ok {
			if f == 0 {
				v.fl = 0
			} else {
				v.fl /= f
			}
		}
	case durationKind:
		if f, ok := o.toFloat(); ok {
			if f == 0 {
				v.num = 0
			} else {
				v.num = int64(float64(v.num) / f)
			}
		}
	}
	return v
}

// Neg returns the negation of v. Non-numeric strings are returned
// unchanged.
func (v Value) Neg() Value {
	switch v.kind {
	case intKind, durationKind:
		v.num = -v.num
	case floatKind:
		v.fl = -v.fl
	default:
		if i, ok := v.toInt(); ok {
			v.str = strconv.FormatInt(-i, 10)
		} else if f, ok := v.toFloat(); ok {
			v.str = strconv.FormatFloat(-f, 'f', -1, 64)
		}
	}
	return v
}

// BitNot returns the bitwise complement where defined (integers and
// integral strings); other variants are returned unchanged.
func (v Value) BitNot() Value {
	switch v.kind {
	case intKind:
		v.num = ^v.num
	case stringKind:
		if i, ok := v.toInt(); ok {
			v.str = strconv.FormatInt(^i, 10)
		}
	}
	return v
}

// Compare returns -1, 0 or 1. Numeric variants order numerically and
// strings lexicographically; comparing a numeric variant against a
// non-numeric string yields a deterministic but unspecified sign.
func (v Value) Compare(o Value) int {
	switch v.kind {
	case intKind:
		if i, ok := o.toInt(); ok {
			return cmpInt(v.num, i)
		}
		if f, ok := o.toFloat(); ok {
			return cmpFloat(float64(v.num), f)
		}
		return -1
	case floatKind:
		if f, ok := o.toFloat(); ok {
			return cmpFloat(v.fl, f)
		}
		return -1
	case durationKind:
		return cmpInt(v.num, int64(o.Duration()))
	default:
		os := o.String()
		switch {
		case v.str < os:
			return -1
		case v.str > os:
			return 1
		}
		return 0
	}
}

// Equal reports whether v and o compare equal.
func (v Value) Equal(o Value) bool {
	return v.Compare(o) == 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
