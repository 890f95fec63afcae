package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dante-U/nervi/pkg/material"
)

func (c *CLI) materialsCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List the material catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.cfg.Catalog()
			if err != nil {
				return err
			}
			list := cat.List()
			if family != "" {
				f, err := material.ParseFamily(family)
				if err != nil {
					return err
				}
				list = filterFamily(list, f)
			}
			printMaterials(cmd.OutOrStdout(), cat, list)
			return nil
		},
	}

	cmd.Flags().StringVarP(&family, "family", "f", "", "only list one family: wood, metal, masonry")
	return cmd
}

func filterFamily(list []material.Material, f material.Family) []material.Material {
	out := list[:0:0]
	for _, m := range list {
		if m.Family == f {
			out = append(out, m)
		}
	}
	return out
}

func printMaterials(w io.Writer, cat *material.Catalog, list []material.Material) {
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		name := m.Name
		if cat.DefaultName(m.Family) == m.Name {
			name += " *"
		}
		rows = append(rows, []string{
			m.Family.String(),
			name,
			fmt.Sprintf("%.0f", m.Density),
			fmt.Sprintf("%g", m.CompressiveStrength),
			m.StrengthClass,
			fmt.Sprintf("%.0f", m.Price),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Family", "Name", "kg/m³", "MPa", "Class", "Price/m³"}, rows))
	fmt.Fprintln(w, StyleDim.Render("* family default"))
}
