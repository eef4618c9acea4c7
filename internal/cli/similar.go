// internal/cli/similar.go
package noteweave

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/mwiater/noteweave/internal/discovery"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/spf13/cobra"
)

var (
	similarThreshold float64
	similarHubPath   string
)

// similarCmd ranks vault notes by semantic similarity to a reference note.
var similarCmd = &cobra.Command{
	Use:   "similar <note>",
	Short: "Find notes related to a reference note",
	Long: `The 'similar' command embeds a reference note and ranks every other indexed
note by the mean similarity of its chunks. Notes at or above the threshold are
marked selected; --hub writes a hub note linking the selection.`,
	Args: cobra.ExactArgs(1),
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
		if m.Snapshot().Len() == 0 {
			return fmt.Errorf("the index is empty; run 'noteweave index' first")
		}

		note, ok := v.Resolve(args[0])
		if !ok {
			return fmt.Errorf("note %q not found in vault", args[0])
		}

		threshold := similarThreshold
		if !cmd.Flags().Changed("threshold") {
			threshold = cfg.ResolvedThreshold()
		}

		engine := discovery.New(v, client, m)
		session, err := engine.FindRelated(context.Background(), note, threshold)
		if err != nil {
			return err
		}

		if len(session.Documents) == 0 {
			fmt.Printf("No other indexed notes to compare against %s\n", note.Path)
			return nil
		}

		selectedStyle := color.New(color.FgGreen, color.Bold)
		dimStyle := color.New(color.Faint)
		fmt.Printf("Notes related to %s (threshold %.2f):\n", note.Path, threshold)
		for _, doc := range session.Documents {
			line := fmt.Sprintf("  %.3f  %s", doc.Score, doc.Path)
			if doc.Selected {
				selectedStyle.Println(line + "  *")
			} else {
				dimStyle.Println(line)
			}
		}

		if similarHubPath != "" {
			hub, err := engine.CreateHub(session, similarHubPath)
			if err != nil {
				return err
			}
			fmt.Printf("Hub note written to %s\n", hub.Path)
		}
		return nil
	},
}

func init() {
	similarCmd.Flags().Float64VarP(&similarThreshold, "threshold", "t", 0.7, "similarity threshold for selection (0-1)")
	similarCmd.Flags().StringVar(&similarHubPath, "hub", "", "write a hub note at this vault-relative path")
	rootCmd.AddCommand(similarCmd)
}
