package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-docent/pkg/docent"
)

var (
	catalogMatch string
	catalogCount int
	catalogJSON  bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List exhibits or preview a selection",
	Long: `List the exhibits the guide can visit.

With --match the guide's selector runs against the given visitor text and
prints the exhibits it would pick. Keyword matches are marked; the rest is
random padding.

Examples:
  docent catalog
  docent catalog --json
  docent catalog --match "I love dinosaurs and space" -n 3`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogMatch, "match", "", "Visitor text to preview a selection for")
	catalogCmd.Flags().IntVarP(&catalogCount, "count", "n", 0, "Exhibits to select (default: tour size)")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := docent.New(cfg, docent.Options{})
	if err != nil {
		return err
	}
	if err := app.InitCore(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	cat := app.Catalog()

	if catalogMatch == "" {
		if catalogJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.Exhibits())
		}
		printInfo(out, "%d exhibits", cat.Len())
		for _, e := range cat.Exhibits() {
			fmt.Fprintf(out, "  %-32s ", e.Name)
			dimColor.Fprintln(out, strings.Join(e.Keywords, ", "))
		}
		return nil
	}

	n := catalogCount
	if n <= 0 {
		n = cfg.Tour.Size
	}
	names, err := app.Selector().Select(cmd.Context(), catalogMatch, nil, n)
	if err != nil {
		return err
	}
	if catalogJSON {
		return json.NewEncoder(out).Encode(names)
	}

	lowered := strings.ToLower(catalogMatch)
	for i, name := range names {
		e, _ := cat.Lookup(name)
		fmt.Fprintf(out, "%d. %s", i+1, name)
		if e.Matches(lowered) {
			successColor.Fprintln(out, "  (match)")
		} else {
			dimColor.Fprintln(out, "  (random)")
		}
	}
	return nil
}
