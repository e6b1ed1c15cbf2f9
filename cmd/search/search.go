package search

import (
	"fmt"
	"strings"

	"github.com/craftnet/rconsole/catalog"
	"github.com/craftnet/rconsole/config"
	"github.com/craftnet/rconsole/fuzzy"
	"github.com/craftnet/rconsole/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dataDir     = tools.GetenvDefault(config.EnvPrefix+"DATA_DIR", config.DefaultDataDir)
	catalogType string
	limit       int
	minScore    int

	Cmd = &cobra.Command{
		Use:   "search <query>...",
		Short: "Fuzzy-search a catalog for items, effects or enchantments",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
)

func init() {
	Cmd.Flags().StringVarP(&dataDir, "data", "d", dataDir, "catalog data directory")
	Cmd.Flags().StringVarP(&catalogType, "type", "t", "item", "catalog type (item, effect, enchantment)")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 5, "maximum results")
	Cmd.Flags().IntVar(&minScore, "min-score", 30, "minimum similarity score (0-100)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ix := catalog.NewIndex(dataDir, log.Logger)
	if err := ix.Load(); err != nil {
		return err
	}

	cat, ok := ix.Catalog(catalogType)
	if !ok {
		return fmt.Errorf("unknown catalog type %q (have: %s)", catalogType, strings.Join(ix.Types(), ", "))
	}

	query := strings.Join(args, " ")
	for _, m := range fuzzy.Search(query, cat, limit, minScore) {
		fmt.Printf("%3d  %-30s %s\n", m.Score, m.Entry.DisplayName, m.Entry.ID)
	}
	return nil
}
