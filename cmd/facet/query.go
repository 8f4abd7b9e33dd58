package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/chazu/facet/pkg/part"
	"github.com/chazu/facet/pkg/topo"
	"github.com/spf13/cobra"
)

func newQueryCmd(c *cli) *cobra.Command {
	var (
		partName string
		suggest  bool
	)
	cmd := &cobra.Command{
		Use:   "query SCRIPT QUERY",
		Short: "Show what a query selects in one of a script's parts",
		Long: `Evaluate SCRIPT and run QUERY against one of its parts.

Queries combine a quantity, a shape kind and label filters, for example
"*f" (every face), "[0:2]e" (the first two edges) or "1f,l(top)".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.app().EvaluateFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := printErrors(w, rep); err != nil {
				return err
			}
			p, err := pickPart(rep, partName)
			if err != nil {
				return err
			}
			found, err := p.QueryShapes(args[1])
			if err != nil {
				return err
			}

			counts := kindCounts(found)
			var kinds []string
			for _, k := range slices.Sorted(maps.Keys(counts)) {
				kinds = append(kinds, fmt.Sprintf("%d %s", counts[k], k))
			}
			fmt.Fprintf(w, "%d entities", len(found))
			if len(kinds) > 0 {
				fmt.Fprintf(w, " (%s)", strings.Join(kinds, ", "))
			}
			fmt.Fprintln(w)
			for i, s := range found {
				fmt.Fprintf(w, "  [%d] %s %s\n", i, s.Kind(), topo.Of(s))
				if suggest {
					for _, q := range part.SuggestQueries(p, s) {
						fmt.Fprintf(w, "      %s\n", q)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&partName, "part", "p", "", "part to query (default: the only or last part)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "print queries that select each entity")
	return cmd
}

// printErrors prints script errors and returns errScript if there were any.
func printErrors(w io.Writer, rep *Report) error {
	for _, e := range rep.Result.Errors {
		fmt.Fprintf(w, "%s: error: %s\n", rep.Source, e.Error())
	}
	if rep.Failed() {
		return errScript
	}
	return nil
}

// pickPart resolves the part a query runs against: the named one, or the
// last part the script defined.
func pickPart(rep *Report, name string) (*part.Part, error) {
	d := rep.Result.Design
	if name != "" {
		p := d.Lookup(name)
		if p == nil {
			return nil, fmt.Errorf("%s defines no part named %q", rep.Source, name)
		}
		return p, nil
	}
	parts := d.Parts()
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s defines no parts", rep.Source)
	}
	return parts[len(parts)-1].Part, nil
}
