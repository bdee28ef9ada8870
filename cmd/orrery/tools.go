package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-orrery/internal/app"
	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
	"github.com/coreman2200/arcaluminis-orrery/internal/snapshot"
)

func newAnglesCmd(root *rootOpts) *cobra.Command {
	var (
		t       float64
		sunSpin bool
	)
	cmd := &cobra.Command{
		Use:   "angles",
		Short: "Print every body's angles at simulation time --t",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return err
			}
			opts := orbital.Options{SunSpinEnabled: sunSpin || cfg.Sim.SunSpinEnabled}
			angles := orbital.ComputeBodyAngles(t, table, opts)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BODY\tORBITAL\tSPIN\tINCLINATION")
			for _, b := range table.Bodies() {
				a, ok := angles[b.Name]
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\n", b.Name, a.OrbitalRad, a.SpinRad, a.InclinationRad)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&t, "t", 0, "simulation time in seconds")
	cmd.Flags().BoolVar(&sunSpin, "sun-spin", false, "include the star's self-rotation")
	return cmd
}

func newSnapshotCmd(root *rootOpts) *cobra.Command {
	var (
		t      float64
		out    string
		width  int
		height int
		labels bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the scene at --t through the configured camera to a PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			hw, sim, err := app.FromConfig(cfg, nil)
			if err != nil {
				return err
			}
			core, err := app.InitCore(hw, sim, app.Observers{})
			if err != nil {
				return err
			}
			if err := core.Frame(t); err != nil {
				return err
			}
			img := core.Snapshot(snapshot.Options{Width: width, Height: height, Labels: labels})

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := snapshot.WritePNG(f, img); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info().Str("out", out).Float64("t", t).Int("w", img.Bounds().Dx()).Int("h", img.Bounds().Dy()).Msg("snapshot written")
			return nil
		},
	}
	cmd.Flags().Float64Var(&t, "t", 0, "simulation time in seconds")
	cmd.Flags().StringVar(&out, "out", "orrery.png", "output PNG path")
	cmd.Flags().IntVar(&width, "width", 960, "image width")
	cmd.Flags().IntVar(&height, "height", 540, "image height")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw body names")
	return cmd
}

func newOrbitsCmd(root *rootOpts) *cobra.Command {
	var (
		body    string
		samples int
	)
	cmd := &cobra.Command{
		Use:   "orbits",
		Short: "Print the orbit-path points of --body",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return err
			}
			b, ok := table.Body(body)
			if !ok {
				return fmt.Errorf("unknown body: %s", body)
			}
			pts, err := orbital.OrbitPath(b, samples)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range pts {
				fmt.Fprintf(w, "%.6f %.6f %.6f\n", p.X(), p.Y(), p.Z())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "earth", "body name")
	cmd.Flags().IntVar(&samples, "samples", orbital.DefaultOrbitSamples, "points on the path")
	return cmd
}
