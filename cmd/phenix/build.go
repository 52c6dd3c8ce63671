package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/phenix/compiler"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "compile the schema once and write generated Go source",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}
		if opts.RootPath == "" {
			return fmt.Errorf("--root (or root: in --config) is required")
		}

		c := compiler.New(opts)
		result, err := c.Compile()
		if err != nil {
			return err
		}

		for _, f := range result.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		for _, d := range result.Diagnostics {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.File, d.Message)
		}
		return nil
	},
}
