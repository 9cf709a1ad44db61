package main

import (
	"github.com/spf13/cobra"

	"github.com/arnauagrupocobra-tech/geostamp"
	"github.com/arnauagrupocobra-tech/geostamp/internal/archive"
	"github.com/arnauagrupocobra-tech/geostamp/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

POST /procesar accepts {"image_base64", "latitude", "longitude"} and
returns {"filename", "image_base64"} with the stamped JPEG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			opt, err := cfg.StamperOptions()
			if err != nil {
				return err
			}
			st, err := geostamp.NewStamper(opt)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			opts := []server.Option{server.WithMaxBodyBytes(cfg.MaxBodyBytes)}
			if cfg.Archive.Enabled() {
				store, err := archive.New(ctx, cfg.Archive)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithArchive(store))
			}

			return server.New(st, opts...).Run(ctx, cfg.Addr())
		},
	}

	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	a.bind(cmd, "host", "host")
	a.bind(cmd, "port", "port")
	return cmd
}
