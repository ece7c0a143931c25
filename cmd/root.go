package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"droplog/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "droplog",
	Short: "Collects Dropbox team event logs and caches them locally.",
	Long: `droplog downloads Dropbox Business team event logs through the
team_log API and stores every response page as a file in a local cache
directory. Each invocation fetches a time window (the last N days, or an
explicit timestamp range) and exits, so it can be run one-shot or from a
scheduler.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.droplog.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 0, "Verbosity level: 0=warnings only, 1=info, 2=debug, 3=trace")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".droplog")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// Defaults registered before the read so an auto-created config file
	// carries them.
	viper.SetDefault("dropbox.token", "")
	viper.SetDefault("fetch.start_days", 1)
	viper.SetDefault("fetch.retry_max", 4)
	viper.SetDefault("cache.dir", "/var/tmp/droplog")
	viper.SetDefault("cache.on_write_error", "abort")
	viper.SetDefault("poll.interval", "1h")
	viper.SetDefault("ledger.path", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.droplog.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	level, _ := rootCmd.PersistentFlags().GetInt("verbosity")
	utils.SetVerbosity(level)
}
