package cli

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/pkg/dom"
	"vellum/pkg/layout"
	"vellum/pkg/paint"
)

func newRenderCmd(app *App) *cobra.Command {
	var (
		fo     FrameOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "render <url-or-path>",
		Short: "Paint a document to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := app.Load(cmd.Context(), args[0], fo)
			if err != nil {
				return err
			}
			target := image.NewRGBA(image.Rect(0, 0, int(frame.Viewport.Width), int(frame.Viewport.Height)))
			paintErr := frame.Pipeline.Paint(frame.Document, target)

			if err := writePNG(app.fs, output, target); err != nil {
				return err
			}
			app.Log.Info("rendered", zap.String("output", output))
			var nodeErr *paint.NodeError
			if errors.As(paintErr, &nodeErr) {
				// Partial frames are still written.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", paintErr)
				return nil
			}
			return paintErr
		},
	}
	addFrameFlags(cmd, &fo)
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG path")
	return cmd
}

func writePNG(fs afero.Fs, path string, img image.Image) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func newDumpCmd(app *App) *cobra.Command {
	var (
		fo     FrameOptions
		indent bool
	)
	cmd := &cobra.Command{
		Use:   "dump <url-or-path>",
		Short: "Print the paint commands for a document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := app.Load(cmd.Context(), args[0], fo)
			if err != nil {
				return err
			}
			cmds, emitErr := frame.Emit()
			if emitErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", emitErr)
			}
			return EncodeCommands(cmd.OutOrStdout(), cmds, indent)
		},
	}
	addFrameFlags(cmd, &fo)
	cmd.Flags().BoolVar(&indent, "indent", true, "indent the JSON output")
	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	var fo FrameOptions
	cmd := &cobra.Command{
		Use:   "tree <url-or-path>",
		Short: "Print the styled tree with each node's resolved box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := app.Load(cmd.Context(), args[0], fo)
			if err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), frame)
		},
	}
	addFrameFlags(cmd, &fo)
	return cmd
}

// printTree annotates each element with its box: the geometry entry when
// a geometry file was given, otherwise its absolute placement.
func printTree(w io.Writer, frame *Frame) error {
	doc := frame.Document
	return dom.Fprint(w, doc.Tree, func(n *dom.Node) string {
		if n.IsText() {
			return ""
		}
		if doc.Geometry != nil {
			if b, ok := doc.Geometry.Box(n.ID); ok {
				return b.String()
			}
			return ""
		}
		if p, ok := layout.ResolveAbsolute(n, frame.Viewport); ok {
			return p.Box.String()
		}
		return ""
	})
}
