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
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/humanizer/pkg/ux"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
)

// errRemoteUnavailable makes `humanizer probe` exit non-zero so scripts
// can gate on it.
var errRemoteUnavailable = errors.New("remote engine unavailable")

// newProbeCmd builds `humanizer probe`.
//
// # Description
//
// Runs one health probe against the configured remote and prints the
// resulting availability. Exits non-zero when the remote is unavailable
// or no remote is configured.
//
// # Examples
//
//	humanizer probe --remote-url http://localhost:5000
//	humanizer probe --json
func newProbeCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check whether the remote engine is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			parts, err := a.buildFacade(engine.NewLocalEngine(), nil)
			if err != nil {
				return err
			}
			if parts.prober == nil {
				return errNoRemote
			}

			state := parts.prober.Probe(cmd.Context())
			availability := strings.ToLower(state.String())

			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), probeReport{
					RemoteURL:    parts.remote.BaseURL(),
					Availability: availability,
				}); err != nil {
					return err
				}
			} else {
				a.printer.KeyValues([]ux.Field{
					{Key: "Remote", Value: parts.remote.BaseURL()},
					{Key: "Availability", Value: availability},
				})
			}

			if state != engine.AvailabilityAvailable {
				return errRemoteUnavailable
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
