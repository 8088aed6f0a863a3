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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/humanizer/services/humanizer/config"
)

// errConfigExists stops `config init` from clobbering an edited file.
var errConfigExists = errors.New("config file already exists (use --force to overwrite)")

// newConfigCmd builds `humanizer config`.
func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the humanizer config file",
	}
	cmd.AddCommand(newConfigInitCmd(root), newConfigShowCmd(root))
	return cmd
}

// newConfigInitCmd builds `humanizer config init`.
//
// # Description
//
// Writes the default config to --config, or ~/.humanizer/humanizer.yaml,
// creating the directory if needed. An existing file is left alone unless
// --force is given.
//
// # Examples
//
//	humanizer config init
//	humanizer config init --config ./humanizer.yaml --force
func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := root.resolveConfigPath()
			if err != nil {
				return err
			}

			_, statErr := os.Stat(path)
			switch {
			case statErr == nil && !force:
				return fmt.Errorf("%s: %w", path, errConfigExists)
			case statErr != nil && !errors.Is(statErr, os.ErrNotExist):
				return fmt.Errorf("failed to check %s: %w", path, statErr)
			}

			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			newPrinter(cmd).Success("Wrote " + path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// newConfigShowCmd builds `humanizer config show`, which prints the
// effective config after file, environment and flag overrides.
func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal the config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
