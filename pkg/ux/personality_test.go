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
	"os"
	"testing"
)

// =============================================================================
// ParsePersonalityLevel Tests
// =============================================================================

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input string
		want  PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"FULL", PersonalityFull},
		{"f", PersonalityFull},
		{" minimal ", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"plain", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"", PersonalityMinimal},
		{"garbage", PersonalityMinimal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePersonalityLevel(tt.input); got != tt.want {
				t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// DetectPersonality Tests
// =============================================================================

func TestDetectPersonality_EnvOverride(t *testing.T) {
	t.Setenv(EnvOutputLevel, "full")

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := DetectPersonality(f); got != PersonalityFull {
		t.Errorf("expected env override to win, got %v", got)
	}
}

func TestDetectPersonality_FileIsMachine(t *testing.T) {
	t.Setenv(EnvOutputLevel, "")

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := DetectPersonality(f); got != PersonalityMachine {
		t.Errorf("expected machine output for a regular file, got %v", got)
	}
}

func TestIsTerminal_Nil(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("nil file must not be a terminal")
	}
}
