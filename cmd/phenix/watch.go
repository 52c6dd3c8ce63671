package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/phenix/compiler"
	"github.com/kungfusheep/phenix/db"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "compile the schema, then recompile on every change to a reachable schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}
		if opts.RootPath == "" {
			return fmt.Errorf("--root (or root: in --config) is required")
		}

		paths, err := reachableSchemaFiles(opts.RootPath)
		if err != nil {
			return err
		}

		w, err := compiler.NewFileWatcher(paths, 0)
		if err != nil {
			return err
		}
		defer w.Close()

		c := compiler.New(opts)
		return c.Watch(w, func(result compiler.Result, err error) {
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
			for _, f := range result.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
		})
	},
}

// reachableSchemaFiles resolves the full set of files a change to which
// should trigger a recompile: the root file and everything it transitively
// imports.
func reachableSchemaFiles(rootPath string) ([]string, error) {
	database := db.NewDatabase(db.OSFileSystem{})
	root := database.InternFile(rootPath)

	ids, err := database.Reachable(root)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		paths = append(paths, database.LookupFile(id))
	}
	return paths, nil
}
