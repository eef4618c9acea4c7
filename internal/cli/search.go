// internal/cli/search.go
package noteweave

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/spf13/cobra"
)

var searchTopK int

// searchCmd embeds a query and prints the best-matching chunks.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the vault chunks most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return err
		}
		defer logging.Close()

		v, err := openVault(cfg)
		if err != nil {
			return err
		}
		client := newLLMClient(cfg)
		m := newIndexManager(cfg, v, client)

		snapshot := m.Snapshot()
		if snapshot.Len() == 0 {
			return fmt.Errorf("the index is empty; run 'noteweave index' first")
		}

		query := strings.Join(args, " ")
		queryVec, err := client.Embed(context.Background(), query)
		if err != nil {
			return err
		}

		topK := searchTopK
		if topK <= 0 {
			topK = cfg.ResolvedTopK()
		}
		results := snapshot.Search(queryVec, topK)

		pathStyle := color.New(color.FgCyan, color.Bold)
		scoreStyle := color.New(color.FgGreen)
		for i, match := range results {
			pathStyle.Printf("%d. %s", i+1, match.Chunk.Path)
			fmt.Printf(" (lines %d-%d) ", match.Chunk.StartLine+1, match.Chunk.EndLine+1)
			scoreStyle.Printf("score %.3f\n", match.Score)
			fmt.Printf("   %s\n", snippet(match.Chunk.Text, 160))
		}
		return nil
	},
}

// snippet collapses a chunk to a single preview line.
func snippet(text string, maxChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "…"
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 0, "number of results (defaults to configured topK)")
	rootCmd.AddCommand(searchCmd)
}
