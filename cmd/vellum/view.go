package main

import (
	"context"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/internal/cli"
)

// viewer repaints the current frame at the raster size, so a resize
// re-emits against the new viewport.
type viewer struct {
	app *cli.App

	mu    sync.Mutex
	frame *cli.Frame
}

func (v *viewer) setFrame(f *cli.Frame) {
	v.mu.Lock()
	v.frame = f
	v.mu.Unlock()
}

func (v *viewer) draw(w, h int) image.Image {
	target := image.NewRGBA(image.Rect(0, 0, w, h))
	v.mu.Lock()
	frame := v.frame
	v.mu.Unlock()
	if frame == nil || w <= 0 || h <= 0 {
		return target
	}
	if err := frame.Pipeline.Paint(frame.Document, target); err != nil {
		v.app.Log.Debug("partial frame", zap.Error(err))
	}
	return target
}

func newViewCmd(a *cli.App) *cobra.Command {
	var fo cli.FrameOptions
	cmd := &cobra.Command{
		Use:   "view [url-or-path]",
		Short: "Open a window that repaints the document as it is resized",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := &viewer{app: a}
			fa := app.New()
			w := fa.NewWindow("vellum")
			w.Resize(fyne.NewSize(float32(a.Config.Viewport.Width), float32(a.Config.Viewport.Height)))

			raster := canvas.NewRaster(v.draw)
			status := widget.NewLabel("Enter a URL or path and press Enter")

			urlEntry := widget.NewEntry()
			urlEntry.SetPlaceHolder("https://example.com or ./page.html")
			load := func(target string) {
				status.SetText("Loading " + target + "...")
				go func() {
					frame, err := a.Load(context.Background(), target, fo)
					fyne.Do(func() {
						if err != nil {
							status.SetText("Error: " + err.Error())
							return
						}
						v.setFrame(frame)
						raster.Refresh()
						status.SetText(frame.Document.URL)
						w.SetTitle("vellum: " + target)
					})
				}()
			}
			urlEntry.OnSubmitted = load

			top := container.NewBorder(nil, nil, nil, nil, urlEntry)
			w.SetContent(container.NewBorder(top, status, nil, nil, raster))
			w.Canvas().Focus(urlEntry)

			if len(args) == 1 {
				urlEntry.SetText(args[0])
				load(args[0])
			}
			w.ShowAndRun()
			return nil
		},
	}
	cmd.Flags().StringVarP(&fo.Geometry, "geometry", "g", "", "JSON geometry file; enables layout mode")
	cmd.Flags().StringVar(&fo.Mode, "mode", "", "cursor or layout (default from config)")
	return cmd
}
