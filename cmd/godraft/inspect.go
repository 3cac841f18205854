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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"godraft/internal/align"
	"godraft/internal/features"
	"godraft/internal/interaction"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/replay"
	"godraft/internal/snap"
	"godraft/internal/vector"
)

func open(path string) (*interaction.Controller, error) {
	return replay.OpenFixture(path, projector.Viewport{Width: 1024, Height: 768}, options())
}

var featuresGuides bool

var featuresCmd = &cobra.Command{
	Use:   "features <fixture>",
	Short: "List the snap points and edges of a fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := open(args[0])
		if err != nil {
			return err
		}
		idx := features.Build(c.Scene.Shapes(), features.Options{IncludeGuides: featuresGuides})
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SHAPE\tKIND\tPOINT\tX\tY")
		for _, p := range idx.Points {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%.4f\n", p.ShapeID, p.ShapeKind, p.Kind, p.Position.X, p.Position.Y)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SHAPE\tEDGE\tGUIDE\tFROM\tTO")
		for _, e := range idx.Edges {
			fmt.Fprintf(w, "%s\t%s\t%v\t(%.4f, %.4f)\t(%.4f, %.4f)\n", e.ShapeID, e.Label, e.Guide, e.Start.X, e.Start.Y, e.End.X, e.End.Y)
		}
		return w.Flush()
	},
}

var snapAt string

var snapCmd = &cobra.Command{
	Use:   "snap <fixture> --at x,y",
	Short: "Resolve the snap target for a world point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := open(args[0])
		if err != nil {
			return err
		}
		at, err := parsePoint(snapAt)
		if err != nil {
			return err
		}
		res, ok := c.SnapAt(vector.P(at[0], at[1]))
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "no snap within", c.Options().Snap.Threshold)
			return nil
		}
		src := "point"
		if res.Source == snap.FromEdge {
			src = "edge " + res.Edge.Label
		}
		fmt.Fprintf(out, "%s %s of %s at (%.4f, %.4f), distance %.4f\n", src, res.Point.Kind, res.Point.ShapeID, res.Point.Position.X, res.Point.Position.Y, res.Distance)
		return nil
	},
}

var (
	alignShape string
	alignTo    string
)

var alignCmd = &cobra.Command{
	Use:   "align <fixture> --shape id --to x,y",
	Short: "Show alignment candidates for moving a shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := open(args[0])
		if err != nil {
			return err
		}
		to, err := parsePoint(alignTo)
		if err != nil {
			return err
		}
		s, ok := c.Scene.Get(alignShape)
		if !ok {
			return fmt.Errorf("no shape %q", alignShape)
		}
		if !align.Supported(s) {
			return fmt.Errorf("shape %q (%s) does not take part in alignment", alignShape, s.Kind())
		}
		out := c.Options().Align.Resolve(s, vector.P(to[0], to[1]), c.Scene.Others(s.ID()))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tTARGET\tVALUE\tDISTANCE")
		for _, cd := range out.Candidates {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n", cd.Type, cd.TargetID, cd.Value, cd.Distance)
		}
		fmt.Fprintf(w, "\nposition\t(%.4f, %.4f)\n", out.Position.X, out.Position.Y)
		for _, g := range out.Guides {
			fmt.Fprintf(w, "guide\t%s %s at %.3f from (%.3f, %.3f) to (%.3f, %.3f)\n", g.Orientation, g.Kind, g.Position, g.From.X, g.From.Y, g.To.X, g.To.Y)
		}
		return w.Flush()
	},
}

var measureFrom, measureTo, measureAt string

var measureCmd = &cobra.Command{
	Use:   "measure <fixture> --from x,y --to x,y [--at x,y]",
	Short: "Place a dimension with the measure tool",
	Long: `Feed three clicks to the measure tool. Endpoints snap to shape
features like in the editor; --at sets the dimension offset and defaults
to the second endpoint, which gives a zero offset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := open(args[0])
		if err != nil {
			return err
		}
		if measureAt == "" {
			measureAt = measureTo
		}
		opts := c.Options()
		tool := measure.NewTool(opts.Measure)
		var m *measure.Measurement
		for _, s := range []string{measureFrom, measureTo, measureAt} {
			p, err := parsePoint(s)
			if err != nil {
				return err
			}
			var done bool
			m, done = tool.Click(vector.P(p[0], p[1]), c.Scene.Shapes())
			if !done && tool.Phase() == measure.PhaseEmpty {
				return fmt.Errorf("click at %s rejected", s)
			}
		}
		if m == nil {
			return fmt.Errorf("no measurement placed")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  from (%.4f, %.4f) to (%.4f, %.4f)  offset %.4f\n",
			measure.FormatLength(m.Distance, opts.Units), m.Start.X, m.Start.Y, m.End.X, m.End.Y, m.Offset)
		for _, a := range []*measure.Attachment{m.StartAttachment, m.EndAttachment} {
			if a != nil {
				fmt.Fprintf(out, "  attached to %s at (%.3f, %.3f)\n", a.ShapeID, a.Normalized.X, a.Normalized.Y)
			}
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().BoolVar(&featuresGuides, "guides", false, "include plane diagonals and centre lines")
	snapCmd.Flags().StringVar(&snapAt, "at", "", "world point x,y")
	_ = snapCmd.MarkFlagRequired("at")
	alignCmd.Flags().StringVar(&alignShape, "shape", "", "id of the dragged shape")
	alignCmd.Flags().StringVar(&alignTo, "to", "", "proposed position x,y")
	alignCmd.MarkFlagsRequiredTogether("shape", "to")
	_ = alignCmd.MarkFlagRequired("shape")
	measureCmd.Flags().StringVar(&measureFrom, "from", "", "first endpoint x,y")
	measureCmd.Flags().StringVar(&measureTo, "to", "", "second endpoint x,y")
	measureCmd.Flags().StringVar(&measureAt, "at", "", "offset click x,y")
	measureCmd.MarkFlagsRequiredTogether("from", "to")
	_ = measureCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(featuresCmd, snapCmd, alignCmd, measureCmd)
}
