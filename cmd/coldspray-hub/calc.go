// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/coldspray-hub/internal/calc"
)

var criticalCmd = &cobra.Command{
	Use:   "critical-velocity",
	Short: "Estimate the critical impact velocity of a feedstock",
	Long: `Critical-velocity evaluates the Assadi et al. (2003), Assadi et al.
(2011), and Zhang et al. (2025) models for the selected material. Every
material property starts at the material default and can be overridden.

With --sweep one parameter is varied over --lo..--hi (default 3/4 to 5/4 of
its value) and each model is reported at every sample; --plot writes the
sweep as an SVG chart.`,
	RunE: runCritical,
}

func runCritical(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("material")
	m, err := calc.LookupMaterial(name)
	if err != nil {
		return fmt.Errorf("%w (choose from %s)", err, materialKeys())
	}
	in := calc.NewInputs(m)
	fs := cmd.Flags()
	override(fs, "rho", &in.Rho, 1)
	override(fs, "tm", &in.Tm, 1)
	override(fs, "cp", &in.Cp, 1)
	override(fs, "b", &in.B, 1)
	override(fs, "su", &in.Su, 1)
	override(fs, "ti", &in.Ti, 1)
	override(fs, "tp", &in.Tp, 1)
	override(fs, "d", &in.D, 1)
	override(fs, "gamma", &in.Gamma, 1)
	if fs.Changed("dref") {
		dref, _ := fs.GetFloat64("dref")
		in = in.WithReferenceDiameter(dref)
	}

	out := cmd.OutOrStdout()
	if param, _ := fs.GetString("sweep"); param != "" {
		r, n := sweepRange(fs)
		sw, err := calc.SweepCritical(in, param, r, n)
		if err != nil {
			return err
		}
		return emitSweep(cmd, sw)
	}

	v, err := in.Evaluate()
	if err != nil {
		return err
	}
	if asJSON, _ := fs.GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{"inputs": in, "velocity": v})
	}
	fmt.Fprintf(out, "Material: %s\n", m.Name)
	fmt.Fprintf(out, "k1 (d = %g um, dref = %g um): %.4f\n", in.D, in.Dref, v.K1)
	fmt.Fprintf(out, "Assadi et al. (2003): %8.1f m/s\n", v.Assadi2003)
	fmt.Fprintf(out, "Assadi et al. (2011): %8.1f m/s\n", v.Assadi2011)
	fmt.Fprintf(out, "Zhang et al. (2025):  %8.1f m/s\n", v.Zhang2025)
	return nil
}

var particleCmd = &cobra.Command{
	Use:   "particle-velocity",
	Short: "Integrate particle velocity through a de Laval nozzle",
	Long: `Particle-velocity solves the quasi one-dimensional isentropic flow of
the carrier gas through a linearly diverging nozzle and integrates the drag
equation of a spherical particle from the throat to the exit.

Inputs are in calculator units: P0 in Pa, T0 in K, the particle diameter in
um, the nozzle dimensions in mm. Sweep ranges are in SI units, as labelled
on the plot axis.`,
	RunE: runParticle,
}

func runParticle(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	in := calc.DefaultParticleInputs()
	in.Gas, _ = fs.GetString("gas")
	in.Material, _ = fs.GetString("material")
	override(fs, "p0", &in.P0, 1)
	override(fs, "t0", &in.T0, 1)
	override(fs, "dp", &in.Dp, calc.Micrometre)
	override(fs, "dnt", &in.Dnt, calc.Millimetre)
	override(fs, "de", &in.De, calc.Millimetre)
	override(fs, "lf", &in.Lf, calc.Millimetre)
	override(fs, "v0", &in.V0, 1)

	out := cmd.OutOrStdout()
	if param, _ := fs.GetString("sweep"); param != "" {
		r, n := sweepRange(fs)
		sw, err := calc.SweepParticle(in, param, r, n)
		if err != nil {
			return err
		}
		return emitSweep(cmd, sw)
	}

	v, err := in.Solve()
	if err != nil {
		return err
	}
	if asJSON, _ := fs.GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{"inputs": in, "velocity": v})
	}
	fmt.Fprintf(out, "Gas %s, particle %s, P0 %.3g Pa, T0 %.0f K\n", in.Gas, in.Material, in.P0, in.T0)
	fmt.Fprintf(out, "Particle velocity at exit: %.2f m/s\n", v.Exit)
	return nil
}

// override copies a changed flag into dst, scaled to SI units.
func override(fs *pflag.FlagSet, name string, dst *float64, scale float64) {
	if !fs.Changed(name) {
		return
	}
	v, _ := fs.GetFloat64(name)
	*dst = v * scale
}

func sweepRange(fs *pflag.FlagSet) (calc.Range, int) {
	var r calc.Range
	if fs.Changed("lo") || fs.Changed("hi") {
		r.Lo, _ = fs.GetFloat64("lo")
		r.Hi, _ = fs.GetFloat64("hi")
	}
	n, _ := fs.GetInt("points")
	return r, n
}

func emitSweep(cmd *cobra.Command, sw calc.Sweep) error {
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("plot"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating plot: %w", err)
		}
		if err := sw.WriteSVG(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing plot: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, sw)
	}
	return formatSweep(out, sw)
}

func formatSweep(w io.Writer, sw calc.Sweep) error {
	fmt.Fprintln(w, sw.Title)
	fmt.Fprintf(w, "%-14s", sw.Label)
	for _, s := range sw.Series {
		fmt.Fprintf(w, "  %22s", s.Name)
	}
	fmt.Fprintln(w)
	for i, x := range sw.X {
		fmt.Fprintf(w, "%-14.6g", x)
		for _, s := range sw.Series {
			fmt.Fprintf(w, "  %22.2f", s.Y[i])
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func materialKeys() string {
	var keys []string
	for _, m := range calc.Materials() {
		keys = append(keys, m.Key)
	}
	return strings.Join(keys, ", ")
}

func addSweepFlags(c *cobra.Command, params []string) {
	c.Flags().String("sweep", "", "parameter to vary: "+strings.Join(params, ", "))
	c.Flags().Float64("lo", 0, "sweep lower bound (with --hi)")
	c.Flags().Float64("hi", 0, "sweep upper bound (with --lo)")
	c.Flags().Int("points", calc.SweepPoints, "sweep samples")
	c.Flags().String("plot", "", "write the sweep as SVG to this file")
	c.Flags().Bool("json", false, "output as JSON")
}

func init() {
	cf := criticalCmd.Flags()
	cf.String("material", "Cu", "feedstock material: Cu or Al")
	cf.Float64("rho", 0, "density (g/cm3)")
	cf.Float64("tm", 0, "melting temperature (C)")
	cf.Float64("cp", 0, "specific heat (J/kg K)")
	cf.Float64("b", 0, "bulk modulus (GPa)")
	cf.Float64("su", 0, "ultimate tensile strength (MPa)")
	cf.Float64("ti", 0, "initial particle temperature (C)")
	cf.Float64("tp", 0, "particle impact temperature (C)")
	cf.Float64("d", 0, "particle diameter (um)")
	cf.Float64("gamma", 0, "Zhang et al. fitting constant")
	cf.Float64("dref", 0, "reference particle diameter (um)")
	addSweepFlags(criticalCmd, calc.CriticalParams())

	pf := particleCmd.Flags()
	pf.String("gas", "N2", "carrier gas: N2, He, Air")
	pf.String("material", "Cu", "particle material: Cu or Al")
	pf.Float64("p0", 0, "stagnation pressure (Pa)")
	pf.Float64("t0", 0, "stagnation temperature (K)")
	pf.Float64("dp", 0, "particle diameter (um)")
	pf.Float64("dnt", 0, "throat diameter (mm)")
	pf.Float64("de", 0, "exit diameter (mm)")
	pf.Float64("lf", 0, "divergent length (mm)")
	pf.Float64("v0", 0, "particle velocity at the throat (m/s)")
	addSweepFlags(particleCmd, calc.ParticleParams())

	rootCmd.AddCommand(criticalCmd)
	rootCmd.AddCommand(particleCmd)
}
