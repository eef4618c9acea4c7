// internal/cli/chat.go
package noteweave

import (
	"github.com/mwiater/noteweave/cli"
	"github.com/spf13/cobra"
)

var startChat = cli.StartChat

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a chat session grounded in your notes",
	Long:  `The 'chat' command starts an interactive chat session with a large language model, retrieving relevant passages from your vault as context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startChat(GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
