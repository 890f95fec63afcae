package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dante-U/nervi/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	output   string
	format   string
	detailed bool
}

func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:     "graph [file]",
		Short:   "Write the scene graph of a design script as DOT or SVG",
		Example: `  nervi graph examples/house.nervi --format svg --detailed`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("unknown format %q (want dot or svg)", opts.format)
			}
			if opts.output == "" {
				opts.output = outputPath(args[0], "."+opts.format)
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := newPipeline(c.cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			res := p.Evaluate(string(source))
			if !report(w, args[0], res) {
				return errDesign
			}

			out := []byte(render.ToDOT(res.Graph, render.Options{Detailed: opts.detailed}))
			if opts.format == formatSVG {
				if out, err = render.SVG(ctx, string(out)); err != nil {
					return err
				}
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return err
			}
			printSuccess(w, "Wrote %d nodes", res.Graph.NodeCount())
			printFile(w, opts.output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	f.StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	f.BoolVar(&opts.detailed, "detailed", false, "show dimensions, placement and metadata in node labels")
	return cmd
}
