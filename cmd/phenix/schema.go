package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kungfusheep/phenix/db"
	"github.com/kungfusheep/phenix/project"
)

// schemaCmd dumps the resolved project model instead of generating source —
// the supplemented feature grounded in cmd/glint's own SchemaCmd, which
// prints a document's inferred schema rather than converting it.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "print the resolved module graph and type ids as YAML, without generating source",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}
		if opts.RootPath == "" {
			return fmt.Errorf("--root (or root: in --config) is required")
		}

		database := db.NewDatabase(db.OSFileSystem{})
		database.SetTraceQueries(opts.TraceQueries)

		proj, err := project.Lower(database, opts.RootPath)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(proj)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		if opts.TraceQueries {
			for call, deps := range database.Dump() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %v\n", call, deps)
			}
		}
		return nil
	},
}
