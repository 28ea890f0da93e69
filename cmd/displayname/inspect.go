package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gnana997/displayname/pkg/transformer"
)

// inspectedComponent is one row of `inspect` output.
type inspectedComponent struct {
	transformer.Component
	Labeled bool `json:"labeled"`
}

func (a *app) newInspectCmd() *cobra.Command {
	var (
		fileName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "List the components in a file and whether they are labeled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := a.readSource(args[0], fileName)
			if err != nil {
				return err
			}

			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.Transform(cmd.Context(), name, src)
			if err != nil {
				return err
			}
			resp := transformer.NewResponse(src, res)
			comps := mergeComponents(resp.Labels, resp.Skipped)

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(comps)
			}
			printComponentsHuman(a.stdout, a.display(name), comps)
			return nil
		},
	}
	cmd.Flags().StringVar(&fileName, "filename", "stdin.tsx", "file name used to pick the grammar when reading stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// mergeComponents combines unlabeled and labeled components in source order.
func mergeComponents(missing, labeled []transformer.Component) []inspectedComponent {
	out := make([]inspectedComponent, 0, len(missing)+len(labeled))
	for _, c := range missing {
		out = append(out, inspectedComponent{Component: c})
	}
	for _, c := range labeled {
		out = append(out, inspectedComponent{Component: c, Labeled: true})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// printComponentsHuman prints one aligned row per component and a summary line.
func printComponentsHuman(w io.Writer, name string, comps []inspectedComponent) {
	fmt.Fprintln(w, name)
	if len(comps) == 0 {
		fmt.Fprintln(w, "  no components")
		return
	}

	nameWidth, kindWidth := 0, 0
	for _, c := range comps {
		nameWidth = max(nameWidth, len(c.Name))
		kindWidth = max(kindWidth, len(c.Kind))
	}

	missing := 0
	for _, c := range comps {
		status := "labeled"
		if !c.Labeled {
			status = "missing"
			missing++
		}
		exported := ""
		if c.Exported {
			exported = "  exported"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %d:%d  %s%s\n",
			nameWidth, c.Name, kindWidth, c.Kind, c.Line, c.Column, status, exported)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d components, %d missing a label\n", len(comps), missing)
}
