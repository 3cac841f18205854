/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"godraft/internal/export"
	"godraft/internal/replay"
	"godraft/internal/telemetry"
)

var (
	replayWatch  bool
	replayExport string
	replayFormat string
)

// errFailures makes the process exit non-zero without printing usage.
var errFailures = errors.New("expectations failed")

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a gesture script against its fixture",
	Long: `Replay drives the interaction controller with the pointer steps of a
gesture script and checks its expectations. The report lists failed
expectations, the final shapes and measurements and the per-handler
latency against the interactive budget.

With --watch the script is replayed again whenever it or its fixture
changes, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		r := replay.NewRunner(options())
		out := cmd.OutOrStdout()

		if replayWatch {
			return r.Watch(ctx, args[0], replay.DefaultDebounce, func(rep *replay.Report, err error) {
				fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
				if rep != nil {
					_ = printReport(out, rep)
				}
			})
		}

		rep, c, err := r.RunFile(ctx, args[0])
		if rep != nil {
			if perr := printReport(out, rep); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}
		client := telemetry.New(telemetry.FromConfig(cfg))
		client.SetSession(rep.Session)
		c.Recorder.Report(client)
		fctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		client.Flush(fctx)
		cancel()
		client.Close()

		if replayExport != "" {
			d := export.FromScene(c.Scene, c.Measurements, c.Overlay().Guides)
			if err := export.WriteFile(replayExport, d, exportOptions()); err != nil {
				return err
			}
			fmt.Fprintln(out, "exported", replayExport)
		}
		if !rep.OK() {
			return errFailures
		}
		return nil
	},
}

func printReport(w io.Writer, rep *replay.Report) error {
	switch replayFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}
	status := "ok"
	if !rep.OK() {
		status = fmt.Sprintf("%d failed", len(rep.Failures))
	}
	fmt.Fprintf(w, "%s: %d steps, %s\n", rep.Script, rep.Steps, status)
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "  step %d (%s): %s\n", f.Step, f.Op, f.Message)
	}
	for _, l := range rep.Latency {
		flag := ""
		if l.Over {
			flag = "  OVER BUDGET"
		}
		fmt.Fprintf(w, "  %-13s n=%-4d p50=%dus p95=%dus max=%dus%s\n", l.Handler, l.Count, l.P50us, l.P95us, l.MaxUs, flag)
	}
	return nil
}

func init() {
	replayCmd.Flags().BoolVar(&replayWatch, "watch", false, "replay again whenever the script or fixture changes")
	replayCmd.Flags().StringVar(&replayExport, "export", "", "write the final drawing to this .svg, .pdf or .png file")
	replayCmd.Flags().StringVarP(&replayFormat, "output", "o", "text", "report format: text, yaml or json")
	rootCmd.AddCommand(replayCmd)
}
