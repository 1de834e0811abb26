// Command cartula inspects the tables of a catalog and renders flashcard
// templates from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cours-de-latin/cartula"
)

var (
	configPath string
	verbose    bool
	semeFlags  []string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cartula",
	Short:         "Inflection tables and flashcard rendering",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var annotateCmd = &cobra.Command{
	Use:   "annotate <table>",
	Short: "Print the annotated cells of one configured table",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <table> <axis=value[,value]>...",
	Short: "Resolve a feature query against a flat table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

var entriesCmd = &cobra.Command{
	Use:   "entries <table> [axis=value[,value]]...",
	Short: "List the entries of a table consistent with a partial query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEntries,
}

var renderCmd = &cobra.Command{
	Use:   "render <language> <tree>",
	Short: "Render a bracketed syntax tree",
	Long: `Render a bracketed syntax tree with the engine of one language.

Semes are given as --seme name.axis=value[,value], repeated as needed:

  cartula render english '{clause [np role=subject @subject [n cat]] [vp role=verb [v eat]]}' \
      --seme subject.number=plural`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cartula.yaml", "Catalog configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	renderCmd.Flags().StringArrayVar(&semeFlags, "seme", nil, "Seme binding name.axis=value[,value]")

	rootCmd.AddCommand(annotateCmd, lookupCmd, entriesCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadCatalog() (*cartula.Catalog, error) {
	cfg, err := cartula.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cartula.Load(cfg, cartula.WithLogger(logger))
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := cartula.LoadConfig(configPath)
	if err != nil {
		return err
	}
	t, ok := cfg.Table(args[0])
	if !ok {
		return fmt.Errorf("table %q is not configured", args[0])
	}
	table, err := cartula.ReadTableFile(cfg.TablePath(t), cfg.Source)
	if err != nil {
		return err
	}
	ann, err := cfg.Annotation(t)
	if err != nil {
		return err
	}
	cells, err := ann.Annotate(table)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range cells {
		fmt.Fprintf(out, "%d:%d\t%s\t%s\n", c.Row, c.Column, c.Binding, c.Text)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	store, ok := catalog.Flat(args[0])
	if !ok {
		return fmt.Errorf("flat table %q is not loaded", args[0])
	}
	query, err := parseBinding(args[1:])
	if err != nil {
		return err
	}
	value, err := store.Lookup(query)
	if err != nil {
		var ambiguous *cartula.AmbiguousKeyError
		if errors.As(err, &ambiguous) {
			for _, c := range ambiguous.Candidates {
				fmt.Fprintln(cmd.ErrOrStderr(), "candidate:", c)
			}
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runEntries(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	query, err := parseBinding(args[1:])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	name := args[0]
	if store, ok := catalog.Flat(name); ok {
		for _, e := range store.Entries(query) {
			fmt.Fprintf(out, "%s\t%s\n", e.Binding, e.Value)
		}
		return nil
	}
	if store, ok := catalog.List(name); ok {
		for _, e := range store.Entries(query) {
			fmt.Fprintf(out, "%s\t%v\n", e.Binding, e.Value)
		}
		return nil
	}
	if store, ok := catalog.Set(name); ok {
		for _, e := range store.Entries(query) {
			fmt.Fprintln(out, e.Binding)
		}
		return nil
	}
	return fmt.Errorf("table %q is not loaded", name)
}

func runRender(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	engine, ok := catalog.Engine(args[0])
	if !ok {
		return fmt.Errorf("language %q is not configured", args[0])
	}
	tree, err := cartula.ParseTree(args[1])
	if err != nil {
		return err
	}
	semes, err := parseSemes(semeFlags)
	if err != nil {
		return err
	}
	out := engine.Map(tree, semes, nil)
	for _, e := range out.Errors {
		logger.Warn("unresolved", zap.Error(e))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Text)
	if !out.Complete() {
		return fmt.Errorf("%d part(s) did not resolve", len(out.Errors))
	}
	return nil
}
