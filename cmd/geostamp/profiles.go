package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnauagrupocobra-tech/geostamp/profile"
)

func newProfilesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the device profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			if _, err := cfg.StamperOptions(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMAKE\tMODEL\tEXPOSURE\tF\tISO\tFOCAL")
			for _, name := range profile.Names() {
				p, _ := profile.Lookup(name)
				mark := ""
				if name == cfg.Profile {
					mark = " *"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%v\t%v\t%d\t%v\n",
					name, mark, p.Make, p.Model, p.ExposureTime, p.FNumber, p.ISO, p.FocalLength)
			}
			return tw.Flush()
		},
	}
}
