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
	"strings"

	"github.com/mattn/go-isatty"
)

// EnvOutputLevel overrides terminal detection.
const EnvOutputLevel = "HUMANIZER_OUTPUT"

// PersonalityLevel controls how much styling output carries.
type PersonalityLevel string

const (
	// PersonalityFull enables colors, icons and boxes.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityMinimal uses icons and basic formatting only.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain text suitable for scripting and parsing.
	PersonalityMachine PersonalityLevel = "machine"
)

// ParsePersonalityLevel converts user input to a level. Unknown values
// map to PersonalityMinimal.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "plain", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityMinimal
	}
}

// DetectPersonality picks a level for output written to f.
//
// # Description
//
// HUMANIZER_OUTPUT wins when set. Otherwise a terminal (including a
// Cygwin/MSYS pty) gets full styling and anything else, such as a pipe or
// file, gets machine output.
func DetectPersonality(f *os.File) PersonalityLevel {
	if env := os.Getenv(EnvOutputLevel); env != "" {
		return ParsePersonalityLevel(env)
	}
	if IsTerminal(f) {
		return PersonalityFull
	}
	return PersonalityMachine
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
