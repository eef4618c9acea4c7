// internal/cli/show_config.go
package noteweave

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd prints the merged configuration after file, env, and flag
// overrides have been applied.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := viper.ConfigFileUsed()
		if file == "" {
			fmt.Println("No config file loaded (using defaults).")
		} else {
			fmt.Printf("Config file: %s\n\n", file)
		}

		cfg := *GetConfig()
		if cfg.APIKey != "" {
			cfg.APIKey = "********"
		}
		pp.Println(cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
