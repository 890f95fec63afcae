package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dante-U/nervi/pkg/kernel"
)

// errDesign is returned when a script evaluates with errors; the errors
// themselves have already been printed.
var errDesign = errors.New("design has errors")

func (c *CLI) renderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a design script to STL",
		Long: `Evaluate a design script, validate its scene graph, tessellate every part
in parallel and write the meshes as an ASCII STL file.`,
		Example: `  nervi render examples/house.nervi -o house.stl`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = outputPath(args[0], ".stl")
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .stl)")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, input, output string) error {
	logger := loggerFromContext(ctx)
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	p, err := newPipeline(c.cfg, logger)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	res := p.Render(ctx, string(source))
	if err := ctx.Err(); err != nil {
		return err
	}
	if !report(w, input, res) {
		return errDesign
	}
	prog.done(fmt.Sprintf("Tessellated %d parts", len(res.Meshes)))

	if err := writeSTL(output, res.Meshes); err != nil {
		return err
	}
	printSuccess(w, "Rendered %d parts", len(res.Meshes))
	printFile(w, output)
	return nil
}

// report prints the diagnostics of a run and reports whether it succeeded.
func report(w io.Writer, input string, res *Result) bool {
	for _, d := range res.Warnings {
		printWarning(w, "%s", d.Message)
	}
	for _, d := range res.Errors {
		loc := input
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", input, d.Line)
		}
		if d.Code != "" {
			printError(w, "%s: [%s] %s", loc, d.Code, d.Message)
		} else {
			printError(w, "%s: %s", loc, d.Message)
		}
	}
	return res.OK()
}

func writeSTL(path string, meshes []*kernel.Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := kernel.WriteSTL(f, meshes); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// outputPath swaps the extension of input for ext, in the current directory.
func outputPath(input, ext string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
