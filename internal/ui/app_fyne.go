//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"godraft/internal/config"
	"godraft/internal/crash"
	"godraft/internal/export"
	"godraft/internal/interaction"
	applog "godraft/internal/log"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/replay"
	"godraft/internal/telemetry"
	"godraft/internal/version"
)

// Run opens the desktop harness on the fixture at fixturePath, or on an
// empty drawing when it is empty.
func Run(fixturePath string) error {
	cfg, _, err := config.Load()
	if err != nil {
		applog.L().Warn("config load failed, using defaults", slog.Any("err", err))
	}
	applog.Init(applog.FromConfig(cfg.Logging))
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	opts := interaction.OptionsFromConfig(cfg)
	ctrl, err := replay.OpenFixture(fixturePath, projector.Viewport{Width: 800, Height: 600}, opts)
	if err != nil {
		return err
	}
	ctrl.Recorder = telemetry.NewRecorder(0)
	ctrl.SetLogger(l)

	crashDir := filepath.Join(os.TempDir(), "godraft")
	if p, err := config.ConfigPath(); err == nil {
		crashDir = filepath.Join(filepath.Dir(p), "crashes")
	}
	sess := &crash.Session{
		Dir:     crashDir,
		ID:      uuid.NewString(),
		Fixture: fixturePath,
		Snapshot: func(dir string) (string, error) {
			p := filepath.Join(dir, fmt.Sprintf("drawing-%s.svg", time.Now().Format("20060102-150405")))
			return p, export.WriteFile(p, export.FromScene(ctrl.Scene, ctrl.Measurements, nil), exportOptions(opts))
		},
	}
	defer crash.Recover(sess)

	fyneApp := app.NewWithID("godraft")
	w := fyneApp.NewWindow("godraft")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	dc := NewDraftCanvas(ctrl)

	// Measurement inspector (right)
	var ids []string
	selectedMeasurement := ""
	list := widget.NewList(
		func() int { return len(ids) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if m, ok := ctrl.Measurements.Get(ids[i]); ok {
				o.(*widget.Label).SetText(describe(m, opts.Units))
			}
		},
	)
	refreshList := func() {
		ids = ids[:0]
		for _, m := range ctrl.Measurements.All() {
			ids = append(ids, m.ID)
		}
		sort.Strings(ids)
		list.Refresh()
	}
	lengthEntry := widget.NewEntry()
	lengthEntry.SetPlaceHolder("length, e.g. 2.5 m or 6' 3\"")
	list.OnSelected = func(id widget.ListItemID) {
		selectedMeasurement = ids[id]
		if m, ok := ctrl.Measurements.Get(selectedMeasurement); ok {
			lengthEntry.SetText(measure.FormatLength(m.Distance, opts.Units))
		}
	}
	applyLength := func() {
		ok, err := ctrl.EditLabel(selectedMeasurement, lengthEntry.Text)
		switch {
		case err != nil:
			status.SetText(err.Error())
		case !ok:
			status.SetText("only width and height dimensions drive a shape")
		default:
			status.SetText("resized")
		}
		dc.Refresh()
		refreshList()
	}
	lengthEntry.OnSubmitted = func(string) { applyLength() }

	dc.OnChange = func() {
		refreshList()
		for _, st := range ctrl.Recorder.Stats() {
			if st.OverBudget(telemetry.InteractiveBudget) {
				status.SetText(fmt.Sprintf("%s over budget: p95 %v", st.Name, st.P95))
				return
			}
		}
		status.SetText(fmt.Sprintf("%s | %s", ctrl.Mode(), ctrl.MeasurePhase()))
	}

	tools := widget.NewRadioGroup([]string{"Select", "Measure"}, func(v string) {
		if v == "Measure" {
			ctrl.SetTool(interaction.ToolMeasure)
		} else {
			ctrl.SetTool(interaction.ToolSelect)
		}
		l.Info("tool", slog.String("tool", ctrl.Tool().String()))
		dc.Refresh()
	})
	tools.Horizontal = true
	tools.SetSelected("Select")

	addDim := func(d measure.Dimension, a measure.Anchor) func() {
		return func() {
			if _, ok := ctrl.AddDimension(ctrl.Selected(), measure.Role{Dimension: d, Anchor: a}); !ok {
				status.SetText("select a plane first")
				return
			}
			dc.changed()
		}
	}
	deleteSelected := func() {
		switch {
		case selectedMeasurement != "" && ctrl.DeleteMeasurement(selectedMeasurement):
			selectedMeasurement = ""
			list.UnselectAll()
		case ctrl.Selected() != "":
			ctrl.DeleteShape(ctrl.Selected())
		}
		dc.changed()
	}
	exportDrawing := func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := export.WriteFile(path, export.FromScene(ctrl.Scene, ctrl.Measurements, ctrl.Overlay().Guides), exportOptions(opts)); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("exported " + path)
		}, w)
		d.SetFileName("drawing.svg")
		d.Show()
	}

	toolbar := container.NewHBox(
		tools,
		widget.NewButton("Width dim", addDim(measure.Width, measure.AnchorLeft)),
		widget.NewButton("Height dim", addDim(measure.Height, measure.AnchorBottom)),
		widget.NewButton("Delete", deleteSelected),
		widget.NewButton("Export", exportDrawing),
	)
	right := container.NewBorder(
		container.NewVBox(widget.NewLabel("Measurements"), widget.NewSeparator()),
		container.NewVBox(lengthEntry, widget.NewButton("Apply length", applyLength)),
		nil, nil, list,
	)
	split := container.NewHSplit(dc, right)
	split.Offset = 0.78
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			ctrl.CancelMeasure()
			dc.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			deleteSelected()
		}
	})
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		for _, st := range ctrl.Recorder.Stats() {
			l.Info("latency", slog.String("handler", st.Name), slog.Int("count", st.Count), slog.Duration("p95", st.P95))
		}
	})
	refreshList()
	w.ShowAndRun()
	return nil
}

func exportOptions(opts interaction.Options) export.Options {
	eo := export.DefaultOptions()
	eo.Units = opts.Units
	eo.Draw = opts.Draw
	return eo
}

func describe(m *measure.Measurement, units string) string {
	var b strings.Builder
	b.WriteString(measure.FormatLength(m.Distance, units))
	if m.Role != nil {
		b.WriteString("  " + m.Role.String())
	} else if m.Attached() {
		b.WriteString("  attached")
	}
	return b.String()
}
