// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd implements the CLI commands of the metrics daemon.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   "gometrics",
	Short: "In-process metrics instrumentation daemon",
	Long:  "Runs a demo workload instrumented with the gometrics registry and exposes the metrics over HTTP.",
}
