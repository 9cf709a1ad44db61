package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/cobra"

	"github.com/arnauagrupocobra-tech/geostamp/exif"
	"github.com/arnauagrupocobra-tech/geostamp/internal/logger"
	"github.com/arnauagrupocobra-tech/geostamp/jpeg"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect image...",
		Short: "Print the Exif of JPEG files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, fn := range args {
				if err := inspectFile(cmd.OutOrStdout(), fn); err != nil {
					logger.Error("%s: %v", fn, err)
					failed++
				}
			}
			if failed != 0 {
				return errors.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}

func inspectFile(w io.Writer, fn string) error {
	p, err := os.ReadFile(fn)
	if err != nil {
		return err
	}

	tiff, err := jpeg.ExtractExif(bytes.NewReader(p))
	if err != nil {
		return err
	}
	x, err := exif.DecodeBytes(tiff)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s:\n", fn)
	exif.Fdump(w, x)

	// cross check with an independent decoder
	gx, err := goexif.Decode(bytes.NewReader(tiff))
	if err != nil {
		fmt.Fprintf(w, "goexif: %v\n", err)
		return nil
	}
	if t, err := gx.DateTime(); err == nil {
		fmt.Fprintf(w, "goexif time: %s\n", t.Format("2006-01-02 15:04:05"))
	}
	if lat, lon, err := gx.LatLong(); err == nil {
		fmt.Fprintf(w, "goexif position: %.7f,%.7f\n", lat, lon)
	}
	return nil
}
