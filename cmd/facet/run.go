package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		outDir   string
		perSolid bool
		manifest string
		noExport bool
	)
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Evaluate a script and export its parts as STL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				c.cfg.Export.Dir = outDir
			}
			if cmd.Flags().Changed("per-solid") {
				c.cfg.Export.PerSolid = perSolid
			}
			a := c.app()
			rep, err := a.EvaluateFile(args[0])
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if !noExport {
				if err := a.Export(rep, c.cfg.Export.Dir); err != nil {
					return err
				}
				for _, f := range rep.Files {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f)
				}
			}
			if manifest != "" {
				if err := WriteManifest(manifest, rep.Manifest); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", manifest)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for STL files (default from config)")
	cmd.Flags().BoolVar(&perSolid, "per-solid", false, "write one file per solid or labelled child")
	cmd.Flags().StringVar(&manifest, "manifest", "", "write a YAML label manifest to this path")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "evaluate only")
	return cmd
}

// printReport summarises a run, returning errScript when the script
// failed.
func printReport(w io.Writer, rep *Report) error {
	if err := printErrors(w, rep); err != nil {
		return err
	}
	for _, warn := range rep.Result.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", rep.Source, warn)
	}
	fmt.Fprintf(w, "%s: %d parts, %d meshes (run %s)\n",
		rep.Source, rep.Result.Design.PartCount(), len(rep.Meshes), rep.RunID)
	return nil
}
