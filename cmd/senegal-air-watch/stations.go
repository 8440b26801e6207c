package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

func newStationsCmd(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the stations collected by the meteo command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStations(cmd.OutOrStdout(), weather.DefaultRegistry(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	return cmd
}

func printStations(w io.Writer, reg *weather.Registry, output string) error {
	switch output {
	case "json":
		data, err := json.MarshalIndent(reg.All(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text":
		fmt.Fprintf(w, "%-22s %12s %12s\n", "STATION", "LATITUDE", "LONGITUDE")
		fmt.Fprintln(w, strings.Repeat("-", 48))
		for _, st := range reg.All() {
			fmt.Fprintf(w, "%-22s %12.6f %12.6f\n", st.Name, st.Latitude, st.Longitude)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (allowed: text, json)", output)
	}
}
