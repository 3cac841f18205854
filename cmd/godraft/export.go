/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"godraft/internal/export"
	"godraft/internal/ui"
)

var exportScale float64
var exportNoGuides bool

func exportOptions() export.Options {
	opts := options()
	eo := export.DefaultOptions()
	eo.Units = opts.Units
	eo.Draw = opts.Draw
	if exportScale > 0 {
		eo.Scale = exportScale
	}
	eo.IncludeGuides = !exportNoGuides
	return eo
}

var exportCmd = &cobra.Command{
	Use:   "export <fixture> <out.svg|out.pdf|out.png>",
	Short: "Render a fixture to SVG, PDF or PNG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := open(args[0])
		if err != nil {
			return err
		}
		if err := export.WriteFile(args[1], export.FromScene(c.Scene, c.Measurements, nil), exportOptions()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "exported", args[1])
		return nil
	},
}

var uiCmd = &cobra.Command{
	Use:   "ui [fixture]",
	Short: "Launch the desktop harness (build with -tags fyne)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return ui.Run(path)
	},
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, replayCmd} {
		c.Flags().Float64Var(&exportScale, "scale", 0, "output units per world unit (default 50)")
		c.Flags().BoolVar(&exportNoGuides, "no-guides", false, "leave alignment guides out of the export")
	}
	rootCmd.AddCommand(exportCmd, uiCmd)
}
