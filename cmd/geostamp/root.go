package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arnauagrupocobra-tech/geostamp/internal/config"
	"github.com/arnauagrupocobra-tech/geostamp/internal/logger"
)

// app holds the state shared by the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	envFiles   []string
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "geostamp",
		Short:         "Stamp photographs with generated camera and GPS metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "configuration file (yaml, toml or json)")
	pf.StringSliceVar(&a.envFiles, "env-file", nil, "environment files to load (default .env)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("profile", "", "device profile")
	pf.String("offset", "", "UTC offset of generated times, such as +01:00")
	pf.Float64("radius", 0, "GPS jitter radius in metres")
	a.bind(root, "log_level", "log-level")
	a.bind(root, "profile", "profile")
	a.bind(root, "offset", "offset")
	a.bind(root, "radius", "radius")

	root.AddCommand(
		newServeCommand(a),
		newStampCommand(a),
		newInspectCommand(a),
		newProfilesCommand(a),
	)
	return root
}

// bind binds the persistent or local flag name of cmd to the configuration key.
func (a *app) bind(cmd *cobra.Command, key, name string) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// load reads the configuration and sets up logging.
func (a *app) load() (*config.Config, error) {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Debug("Configuration loaded: profile %s, offset %s, radius %v m", cfg.Profile, cfg.Offset, cfg.Radius)
	return cfg, nil
}
