// internal/cli/root.go
package noteweave

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mwiater/noteweave/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "noteweave",
	Short: "Semantic search, related notes, and grounded chat for a Markdown vault",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		for _, name := range []string{"debug", "semanticSearch"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}

		// 3) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults). This gives other packages a stable snapshot.
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		currentConfig = &cfg

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// --config (defaults to your existing path)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("semanticSearch", true, "retrieve vault context during chat")
	rootCmd.PersistentFlags().String("vaultPath", "", "path to the note vault")

	// Bind flags to Viper keys (flags override config)
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("semanticSearch", rootCmd.PersistentFlags().Lookup("semanticSearch"))
	_ = viper.BindPFlag("vaultPath", rootCmd.PersistentFlags().Lookup("vaultPath"))
}

func initConfig() {
	// .env is optional; it carries NOTEWEAVE_API_KEY for people who keep the
	// credential out of the config file.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	viper.SetDefault("debug", false)
	viper.SetDefault("semanticSearch", true)

	if raw, err := os.ReadFile(cfgFile); err == nil {
		if err := appconfig.ValidateDocument(raw); err != nil {
			return fmt.Errorf("config file %q: %w", cfgFile, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled reflects the merged Viper state.
func DebugEnabled() bool { return viper.GetBool("debug") }
