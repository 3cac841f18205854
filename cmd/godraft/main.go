/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command godraft is the command-line front end of the drafting core:
// it inspects fixtures, replays gesture scripts, exports drawings and
// launches the desktop harness.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"godraft/internal/config"
	"godraft/internal/crash"
	"godraft/internal/interaction"
	applog "godraft/internal/log"
	"godraft/internal/telemetry"
	"godraft/internal/version"
)

var (
	cfg       config.AppConfig
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "godraft",
	Short: "Interactive 2D drafting geometry core",
	Long: `godraft places planes, circles, triangles and lines on a drawing plane,
snaps and aligns them while they are dragged, resizes and rotates them
through handles and attaches linear dimensions that follow their shapes.

The CLI inspects scene fixtures, replays gesture scripts headlessly and
exports drawings to SVG, PDF or PNG.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		var path string
		cfg, path, err = config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: config %s: %v (using defaults)\n", path, err)
		}
		lo := applog.FromConfig(cfg.Logging)
		if logLevel != "" {
			lo.Level = logLevel
		}
		if logFormat != "" {
			lo.Format = logFormat
		}
		applog.Init(lo)
		telemetry.NewDefault(telemetry.FromConfig(cfg))
		applog.WithComponent("cli").Debug("start", slog.String("cmd", cmd.CommandPath()), slog.String("config", path))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override the log format (console, json)")
}

// options maps the loaded config onto controller options.
func options() interaction.Options { return interaction.OptionsFromConfig(cfg) }

// parsePoint reads "x,y".
func parsePoint(s string) ([2]float64, error) {
	var p [2]float64
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return p, fmt.Errorf("point %q: want x,y", s)
	}
	for i, part := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%g", &p[i]); err != nil {
			return p, fmt.Errorf("point %q: %w", s, err)
		}
	}
	return p, nil
}

func main() {
	defer crash.Recover(&crash.Session{})
	err := rootCmd.Execute()
	_ = applog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
