// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package version contains build information set at link time.
package version

import "runtime"

// Version is the canonical semantic version, overridden by the build.
var Version = "0.1.0-dev"

// Build metadata, set via -ldflags.
var (
	Vcs       = ""
	Timestamp = ""
	Hostname  = ""
)

// GoVersion is the version of Go this was built with.
var GoVersion = runtime.Version()
