package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dante-U/nervi/pkg/bim"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/spiral"
	"github.com/Dante-U/nervi/pkg/stair"
)

// planOpts holds the flags of the plan command.
type planOpts struct {
	name      string
	typ       string
	width     float64   // m
	totalRise []float64 // m, one stair per value
	steps     int       // 0 derives the count
	rise      float64   // mm
	run       float64   // mm
	landing   float64   // mm
	family    string
	material  string
	mount     string
	sides     []string
}

// requests converts the flags into one stair request per total rise.
// Several rises number the stairs name-1, name-2, ...
func (o planOpts) requests() ([]stair.Request, error) {
	reqs := make([]stair.Request, 0, len(o.totalRise))
	for i, rise := range o.totalRise {
		req, err := o.request(rise)
		if err != nil {
			return nil, err
		}
		if len(o.totalRise) > 1 {
			req.Name = fmt.Sprintf("%s-%d", o.name, i+1)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// request converts the flags into a stair request.
func (o planOpts) request(totalRise float64) (stair.Request, error) {
	req := stair.Request{
		Name:              o.name,
		WidthM:            o.width,
		TotalRiseM:        totalRise,
		TheoreticalRiseMM: o.rise,
		RunMM:             o.run,
		LandingSizeMM:     o.landing,
		Material:          o.material,
	}
	var err error
	if req.Type, err = stair.ParseType(o.typ); err != nil {
		return req, err
	}
	if req.Family, err = material.ParseFamily(o.family); err != nil {
		return req, err
	}
	if req.Mount, err = stair.ParseMount(o.mount); err != nil {
		return req, err
	}
	if len(o.sides) > 0 {
		if req.Sides, err = stair.ParseSides(o.sides); err != nil {
			return req, err
		}
	}
	if o.steps > 0 {
		n := o.steps
		req.StepCount = &n
	}
	return req, nil
}

func (c *CLI) planCommand() *cobra.Command {
	opts := planOpts{
		name:   "stairs",
		typ:    "straight",
		width:  1.0,
		family: "wood",
		mount:  "standard",
	}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the layout of a stair",
		Long: `Compute the step count, effective rise, section partition and footprint
of a straight, L- or U-shaped stair, along with its volume, weight and cost.`,
		Example: `  nervi plan --total-rise 2.8
  nervi plan --total-rise 2.6,2.8,3.0 --run 260
  nervi plan --type l-shaped --width 0.9 --total-rise 3.1 --family masonry --sides left,right`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := opts.requests()
			if err != nil {
				return err
			}
			cat, err := c.cfg.Catalog()
			if err != nil {
				return err
			}
			results, err := stair.BuildAll(cmd.Context(), reqs, stair.WithCatalog(cat), stair.WithSettings(c.cfg.StairSettings()))
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			for i, res := range results {
				logger.Debug("built stair", "name", res.Info.Name, "nodes", res.Graph.NodeCount())
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printStairPlan(cmd.OutOrStdout(), res.Plan, res.Info)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.name, "name", "n", opts.name, "stair name")
	f.StringVarP(&opts.typ, "type", "t", opts.typ, "stair type: straight, l-shaped, u-shaped")
	f.Float64VarP(&opts.width, "width", "w", opts.width, "stair width (m)")
	f.Float64SliceVarP(&opts.totalRise, "total-rise", "r", nil, "floor to floor height (m), comma separated to compare several")
	f.IntVar(&opts.steps, "steps", 0, "force the step count")
	f.Float64Var(&opts.rise, "rise", 0, "theoretical rise (mm)")
	f.Float64Var(&opts.run, "run", 0, "run / going (mm)")
	f.Float64Var(&opts.landing, "landing", 0, "landing length (mm, defaults to the width)")
	f.StringVarP(&opts.family, "family", "f", opts.family, "material family: wood, metal, masonry")
	f.StringVarP(&opts.material, "material", "m", "", "material name (family default when empty)")
	f.StringVar(&opts.mount, "mount", opts.mount, "mount: standard, flush")
	f.StringSliceVar(&opts.sides, "sides", nil, "handrail sides: left, right")
	_ = cmd.MarkFlagRequired("total-rise")

	cmd.AddCommand(c.planSpiralCommand())
	return cmd
}

// spiralOpts holds the flags of the plan spiral command.
type spiralOpts struct {
	name         string
	radius       float64 // mm
	innerRadius  float64 // mm
	totalRise    float64 // m
	stepsPerTurn int
	turns        float64
	family       string
	material     string
	mount        string
	ccw          bool
	handrail     bool
}

func (o spiralOpts) request() (spiral.Request, error) {
	req := spiral.Request{
		Name:          o.name,
		RadiusMM:      o.radius,
		InnerRadiusMM: o.innerRadius,
		TotalRiseM:    o.totalRise,
		StepsPerTurn:  o.stepsPerTurn,
		Turns:         o.turns,
		Material:      o.material,
		CCW:           o.ccw,
		Handrail:      o.handrail,
	}
	var err error
	if req.Family, err = material.ParseFamily(o.family); err != nil {
		return req, err
	}
	if req.Mount, err = stair.ParseMount(o.mount); err != nil {
		return req, err
	}
	return req, nil
}

func (c *CLI) planSpiralCommand() *cobra.Command {
	opts := spiralOpts{
		name:         "spiral",
		radius:       1000,
		innerRadius:  100,
		stepsPerTurn: 12,
		turns:        1,
		family:       "metal",
		mount:        "standard",
	}

	cmd := &cobra.Command{
		Use:     "spiral",
		Short:   "Compute the layout of a spiral stair",
		Example: `  nervi plan spiral --total-rise 3 --radius 900 --steps-per-turn 14 --ccw`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			cat, err := c.cfg.Catalog()
			if err != nil {
				return err
			}
			res, err := spiral.Build(req, spiral.WithCatalog(cat), spiral.WithSettings(c.cfg.SpiralSettings()))
			if err != nil {
				return err
			}
			printSpiralPlan(cmd.OutOrStdout(), res.Plan, res.Info)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.name, "name", "n", opts.name, "stair name")
	f.Float64Var(&opts.radius, "radius", opts.radius, "outer radius (mm)")
	f.Float64Var(&opts.innerRadius, "inner-radius", opts.innerRadius, "column radius (mm, 0 for none)")
	f.Float64VarP(&opts.totalRise, "total-rise", "r", 0, "floor to floor height (m)")
	f.IntVar(&opts.stepsPerTurn, "steps-per-turn", opts.stepsPerTurn, "treads per full turn")
	f.Float64Var(&opts.turns, "turns", opts.turns, "number of turns")
	f.StringVarP(&opts.family, "family", "f", opts.family, "material family: wood, metal, masonry")
	f.StringVarP(&opts.material, "material", "m", "", "material name (family default when empty)")
	f.StringVar(&opts.mount, "mount", opts.mount, "mount: standard, flush")
	f.BoolVar(&opts.ccw, "ccw", false, "climb counter-clockwise")
	f.BoolVar(&opts.handrail, "handrail", false, "add balusters and a helical rail")
	_ = cmd.MarkFlagRequired("total-rise")
	return cmd
}

func printStairPlan(w io.Writer, p stair.Plan, info bim.Info) {
	printTitle(w, fmt.Sprintf("%s · %s stair", info.Name, p.Type))
	printKeyValue(w, "steps", fmt.Sprintf("%d (mount offset %d)", p.StepCount, p.MountOffset))
	printKeyValue(w, "rise", fmt.Sprintf("%.1f mm", p.EffectiveRiseMM))
	printKeyValue(w, "run", fmt.Sprintf("%.0f mm", p.RunMM))
	printKeyValue(w, "angle", fmt.Sprintf("%.1f°", p.AngleDeg))
	printKeyValue(w, "sections", joinInts(p.Sections))
	if len(p.Landings) > 0 {
		printKeyValue(w, "landings", joinFloats(p.Landings, "mm"))
	}
	printKeyValue(w, "total rise", fmt.Sprintf("%.0f mm", p.TotalRiseMM))
	printKeyValue(w, "footprint", fmt.Sprintf("%.0f × %.0f mm", p.TotalWidthMM, p.TotalLengthMM))
	printInfo(w, "%s", "metadata")
	printBIM(w, info)
}

func printSpiralPlan(w io.Writer, p spiral.Plan, info bim.Info) {
	printTitle(w, fmt.Sprintf("%s · spiral stair", info.Name))
	printKeyValue(w, "steps", fmt.Sprintf("%d", p.TotalSteps))
	printKeyValue(w, "step angle", fmt.Sprintf("%.2f°", p.StepAngleDeg))
	printKeyValue(w, "step rise", fmt.Sprintf("%.1f mm", p.StepRiseMM))
	printKeyValue(w, "tread sweep", fmt.Sprintf("%.2f°", p.TreadSweepDeg))
	printKeyValue(w, "radius", fmt.Sprintf("%.0f / %.0f mm", p.InnerRadiusMM, p.RadiusMM))
	printKeyValue(w, "total rise", fmt.Sprintf("%.0f mm", p.TotalRiseMM))
	printInfo(w, "%s", "metadata")
	printBIM(w, info)
}

func printBIM(w io.Writer, info bim.Info) {
	for _, kv := range info.Pairs() {
		printKeyValue(w, "  "+kv[0], kv[1])
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " + ")
}

func joinFloats(v []float64, unit string) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%.0f %s", f, unit)
	}
	return strings.Join(parts, ", ")
}
