// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

func newTestPrinter(level PersonalityLevel) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewPrinter(&out, &errOut, level), &out, &errOut
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending, IconArrow, IconBullet} {
		if got := icon.Render(); !strings.Contains(got, string(icon)) {
			t.Errorf("Render() for %q = %q, want it to contain the glyph", icon, got)
		}
	}
}

// =============================================================================
// Machine mode
// =============================================================================

func TestPrinter_Machine(t *testing.T) {
	p, out, errOut := newTestPrinter(PersonalityMachine)

	p.Title("ignored title")
	p.Muted("ignored muted")
	p.Success("done")
	p.Info("plain line")
	p.Warning("careful")
	p.Error("broken")
	p.Box("Result", "text")

	wantOut := "OK: done\nplain line\nResult: text\n"
	if out.String() != wantOut {
		t.Errorf("stdout = %q, want %q", out.String(), wantOut)
	}
	wantErr := "WARN: careful\nERROR: broken\n"
	if errOut.String() != wantErr {
		t.Errorf("stderr = %q, want %q", errOut.String(), wantErr)
	}
}

func TestPrinter_KeyValues_Machine(t *testing.T) {
	p, out, _ := newTestPrinter(PersonalityMachine)

	p.KeyValues([]Field{
		{Key: "Engine", Value: "local"},
		{Key: "Input words", Value: "7"},
	})

	want := "engine=local\ninput_words=7\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestPrinter_Summary_Machine(t *testing.T) {
	p, out, _ := newTestPrinter(PersonalityMachine)

	p.Summary(2, 1, 3)

	if out.String() != "SUMMARY: succeeded=2 failed=1 total=3\n" {
		t.Errorf("unexpected summary %q", out.String())
	}
}

// =============================================================================
// Styled modes
// =============================================================================

func TestPrinter_Minimal(t *testing.T) {
	p, out, errOut := newTestPrinter(PersonalityMinimal)

	p.Success("done")
	p.Warning("careful")
	p.Error("broken")

	got := out.String()
	for _, want := range []string{"✓ done", "⚠ careful", "✗ broken"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("minimal mode should not write to stderr, got %q", errOut.String())
	}
}

func TestPrinter_Full(t *testing.T) {
	p, out, _ := newTestPrinter(PersonalityFull)

	p.Title("Humanized")
	p.Box("Result", "hello")
	p.KeyValues([]Field{{Key: "Engine", Value: "remote"}})

	got := out.String()
	for _, want := range []string{"Humanized", "Result", "hello", "Engine", "remote"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestNewPrinter_NilErrFallsBackToOut(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, nil, PersonalityMachine)

	p.Error("broken")

	if out.String() != "ERROR: broken\n" {
		t.Errorf("expected error on out, got %q", out.String())
	}
}
