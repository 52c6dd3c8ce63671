package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kungfusheep/phenix/compiler"
)

// globalFlags holds the flags shared by every subcommand, re-hosting the
// teacher's per-command DefineFlags shape (cmd/glint/glint.go) onto cobra's
// persistent-flag mechanism instead of stdlib flag.FlagSet.
type globalFlags struct {
	configPath   string
	root         string
	outputDir    string
	importPath   string
	rootPackage  string
	traceQueries bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "phenix",
	Short: "phenix compiles .phenix schema files into generated Go source",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a phenix.yaml project file")
	rootCmd.PersistentFlags().StringVar(&flags.root, "root", "", "root .phenix schema file")
	rootCmd.PersistentFlags().StringVar(&flags.outputDir, "output", "", "directory generated source is written to")
	rootCmd.PersistentFlags().StringVar(&flags.importPath, "import-path", "", "Go import path rooted at --output")
	rootCmd.PersistentFlags().StringVar(&flags.rootPackage, "package", "", "Go package name for the root module")
	rootCmd.PersistentFlags().BoolVar(&flags.traceQueries, "trace-queries", false, "record and report the incremental database's query dependency graph")

	rootCmd.AddCommand(buildCmd, watchCmd, schemaCmd)
}

// resolveOptions merges a loaded phenix.yaml (if --config was given) with
// flag overrides: flags win, matching glint's own flag-takes-precedence
// command behavior.
func resolveOptions() (compiler.Options, error) {
	var cfg compiler.Config
	if flags.configPath != "" {
		loaded, err := compiler.LoadConfig(flags.configPath)
		if err != nil {
			return compiler.Options{}, err
		}
		cfg = loaded
	}

	opts := compiler.Options{
		RootPath:     firstNonEmpty(flags.root, cfg.Root),
		OutputDir:    firstNonEmpty(flags.outputDir, cfg.OutputDir),
		ImportPath:   firstNonEmpty(flags.importPath, cfg.ImportPath),
		RootPackage:  firstNonEmpty(flags.rootPackage, cfg.RootPackage),
		TraceQueries: flags.traceQueries,
		Log:          logrus.StandardLogger(),
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
