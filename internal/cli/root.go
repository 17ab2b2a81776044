package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vellum/internal/config"
	"vellum/internal/observability"
)

// Version is set at build time.
var Version = "dev"

// CommandFunc builds a subcommand bound to the shared App, which is only
// populated once the command runs.
type CommandFunc func(app *App) *cobra.Command

type rootOptions struct {
	configFile string
	verbose    bool
}

// NewRootCmd returns the vellum command tree. extra adds commands that
// live outside this package, such as the desktop viewer.
func NewRootCmd(fs afero.Fs, extra ...CommandFunc) *cobra.Command {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	var opts rootOptions
	app := &App{}

	root := &cobra.Command{
		Use:           "vellum",
		Short:         "Paint styled HTML documents to pixels",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fs, opts.configFile)
			if err != nil {
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return err
			}
			if opts.verbose {
				cfg.Logger.Level = "debug"
			}
			observability.InitializeLogger(cfg.Logger)
			log := observability.GetLogger()

			built, err := NewApp(cfg, fs, log)
			if err != nil {
				return err
			}
			*app = *built
			log.Debug("configured", zap.String("version", Version), zap.Strings("fonts", app.Fonts.Families()))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ./vellum.yaml if present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newRenderCmd(app),
		newDumpCmd(app),
		newTreeCmd(app),
	)
	for _, fn := range extra {
		root.AddCommand(fn(app))
	}
	return root
}

// loadConfig reads path, or ./vellum.yaml when path is empty and the file
// exists. Environment variables prefixed VELLUM_ override either.
func loadConfig(fs afero.Fs, path string) (*config.Config, error) {
	if path == "" {
		if ok, _ := afero.Exists(fs, "vellum.yaml"); ok {
			path = "vellum.yaml"
		}
	}
	v := viper.New()
	v.SetFs(fs)
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// addFrameFlags registers the flags shared by commands that paint a frame.
func addFrameFlags(cmd *cobra.Command, fo *FrameOptions) {
	cmd.Flags().IntVar(&fo.Width, "width", 0, "viewport width in pixels (default from config)")
	cmd.Flags().IntVar(&fo.Height, "height", 0, "viewport height in pixels (default from config)")
	cmd.Flags().StringVarP(&fo.Geometry, "geometry", "g", "", "JSON geometry file; enables layout mode")
	cmd.Flags().StringVar(&fo.Mode, "mode", "", "cursor or layout (default from config)")
}
