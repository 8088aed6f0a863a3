// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/humanizer/pkg/ux"
	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
)

// newSampleCmd builds `humanizer sample`, which prints one demonstration
// text from the remote when available, otherwise from the built-in set.
func newSampleCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a sample text to try the transform on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			var localOpts []engine.LocalOption
			if cmd.Flags().Changed("seed") {
				localOpts = append(localOpts, engine.WithSeed(seed))
			}
			parts, err := a.buildFacade(engine.NewLocalEngine(localOpts...), nil)
			if err != nil {
				return err
			}
			if parts.prober != nil {
				parts.prober.Probe(cmd.Context())
			}

			outcome := parts.facade.RouteSample(cmd.Context())
			out := cmd.OutOrStdout()
			switch {
			case jsonOut:
				return writeJSON(out, sampleReport{
					Engine:         outcome.Engine,
					FallbackReason: outcome.FallbackReason,
					SampleResponse: datatypes.SampleResponse{SampleText: outcome.Text},
				})
			case a.printer.Machine():
				fmt.Fprintln(out, outcome.Text)
			default:
				a.printer.Box("Sample", outcome.Text)
				fields := []ux.Field{{Key: "Engine", Value: outcome.Engine}}
				if outcome.FallbackReason != "" {
					fields = append(fields, ux.Field{Key: "Fallback reason", Value: outcome.FallbackReason})
				}
				a.printer.KeyValues(fields)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the built-in sample choice")
	return cmd
}
