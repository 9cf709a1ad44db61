package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arnauagrupocobra-tech/geostamp"
)

func newStampCommand(a *app) *cobra.Command {
	var (
		lat, lon float64
		output   string
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "stamp --lat LAT --lon LON [-o output] image",
		Short: "Stamp an image file",
		Args:  cobra.ExactArgs(1),
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

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := st.Stamp(src, geostamp.Coordinate{Lat: lat, Lon: lon})
			if err != nil {
				return errors.Wrap(err, args[0])
			}

			fn := output
			if fn == "" {
				fn = filepath.Join(dir, res.Filename)
			}
			if err := os.WriteFile(fn, res.Image, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d at %v, %s\n",
				fn, res.Width, res.Height, res.Coordinate, res.Time.Format("2006-01-02 15:04:05 -07:00"))
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	f.Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	f.StringVarP(&output, "output", "o", "", "output file (default: generated name in --dir)")
	f.StringVar(&dir, "dir", ".", "output directory")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}
