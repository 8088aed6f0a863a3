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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/humanizer/services/humanizer/datatypes"
	"github.com/AleutianAI/humanizer/services/humanizer/engine"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type transformFlags struct {
	passive   bool   // Enable passive voice rewriting
	synonyms  bool   // Enable synonym substitution
	preserve  bool   // Pass-through preserve_structure
	intensity string // low, medium or high
	style     string // Pass-through style label
	jsonOut   bool   // One JSON object per input
	seed      uint64 // Reproducible local randomness when set
	jobs      int    // Max inputs processed at once
}

// stdinSource names standard input in reports.
const stdinSource = "stdin"

// errEmptyInput is reported for inputs that are blank after trimming.
var errEmptyInput = errors.New("input is empty")

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// newTransformCmd builds `humanizer transform`.
//
// # Description
//
// Reads each file argument (or stdin when there are none, or for "-"),
// trims it and sends it through the facade. Files are processed
// concurrently up to --jobs at a time; output keeps argument order.
// A failed input does not stop the others, but makes the command exit
// non-zero.
//
// # Examples
//
//	humanizer transform essay.txt
//	echo "I don't know." | humanizer transform --passive --synonyms
//	humanizer transform --json --seed 42 a.txt b.txt
//	humanizer transform --remote-url http://localhost:5000 essay.txt
func newTransformCmd(root *rootOptions) *cobra.Command {
	f := &transformFlags{}

	cmd := &cobra.Command{
		Use:   "transform [file...]",
		Short: "Humanize files or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, root, f, args)
		},
	}

	cmd.Flags().BoolVar(&f.passive, "passive", false, "Rewrite simple active constructions into passive voice")
	cmd.Flags().BoolVar(&f.synonyms, "synonyms", false, "Substitute simple words with more formal synonyms")
	cmd.Flags().BoolVar(&f.preserve, "preserve-structure", false, "Request that sentence structure be preserved")
	cmd.Flags().StringVar(&f.intensity, "intensity", string(datatypes.DefaultIntensity), "Rewrite intensity: low, medium, high")
	cmd.Flags().StringVar(&f.style, "style", datatypes.DefaultStyle, "Target style label")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output one JSON object per input")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed the built-in engine for reproducible output")
	cmd.Flags().IntVar(&f.jobs, "jobs", 4, "Maximum inputs processed concurrently")
	return cmd
}

func runTransform(cmd *cobra.Command, root *rootOptions, f *transformFlags, args []string) error {
	intensity := datatypes.Intensity(strings.ToLower(strings.TrimSpace(f.intensity)))
	if !intensity.Valid() {
		return fmt.Errorf("invalid intensity %q: must be one of low, medium, high", f.intensity)
	}
	if f.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", f.jobs)
	}

	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.Close()

	var localOpts []engine.LocalOption
	if cmd.Flags().Changed("seed") {
		localOpts = append(localOpts, engine.WithSeed(f.seed))
	}
	parts, err := a.buildFacade(engine.NewLocalEngine(localOpts...), nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if parts.prober != nil {
		parts.prober.Probe(ctx)
	}

	opts := datatypes.TransformOptions{
		UsePassive:        f.passive,
		UseSynonyms:       f.synonyms,
		PreserveStructure: f.preserve,
		Intensity:         intensity,
		Style:             f.style,
	}.WithDefaults()

	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	// Stdin can only be read once; read it up front.
	var stdinText string
	var stdinErr error
	for _, src := range sources {
		if src == "-" {
			stdinText, stdinErr = readAll(cmd.InOrStdin())
			break
		}
	}

	reports := make([]transformReport, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(f.jobs)
	for i, src := range sources {
		g.Go(func() error {
			source, text, readErr := stdinSource, stdinText, stdinErr
			if src != "-" {
				source = src
				text, readErr = readFile(src)
			}
			reports[i] = transformOne(ctx, parts.facade, source, text, readErr, opts)
			return nil // Per-input failures are reported, not propagated
		})
	}
	_ = g.Wait()

	return writeTransformReports(a, cmd.OutOrStdout(), reports, f.jsonOut)
}

// transformOne humanizes a single input. Read failures and blank inputs
// become unsuccessful reports.
func transformOne(ctx context.Context, facade *engine.Facade, source, text string, readErr error, opts datatypes.TransformOptions) transformReport {
	report := transformReport{Source: source}
	if readErr == nil && strings.TrimSpace(text) == "" {
		readErr = errEmptyInput
	}
	if readErr != nil {
		report.Error = readErr.Error()
		return report
	}

	outcome := facade.Route(ctx, strings.TrimSpace(text), opts)
	report.Engine = outcome.Engine
	report.FallbackReason = outcome.FallbackReason
	report.TransformResponse = datatypes.NewTransformResponse(outcome.Result)
	return report
}

func writeTransformReports(a *app, out io.Writer, reports []transformReport, jsonOut bool) error {
	failed := 0
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}

	p := a.printer
	for _, r := range reports {
		switch {
		case jsonOut:
			if err := writeJSON(out, r); err != nil {
				return err
			}

		case !r.Success:
			p.Error(fmt.Sprintf("%s: %s", r.Source, r.Error))

		case p.Machine():
			if len(reports) > 1 {
				fmt.Fprintf(out, "==> %s <==\n", r.Source)
			}
			fmt.Fprintln(out, r.TransformedText)

		default:
			p.Title(r.Source)
			p.Box("Humanized", r.TransformedText)
			p.KeyValues(statisticsFields(r.Engine, r.FallbackReason, r.Statistics.FromWire()))
		}
	}

	if len(reports) > 1 && !jsonOut {
		p.Summary(len(reports)-failed, failed, len(reports))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(reports))
	}
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
