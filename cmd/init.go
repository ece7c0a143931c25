package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	homedir "github.com/mitchellh/go-homedir"
)

// initCmd writes a starter config file from interactive answers, refusing
// to overwrite one that already exists.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			out = home + "/.droplog.yaml"
		}

		reader := bufio.NewReader(os.Stdin)
		ask := func(prompt, def string) string {
			if def != "" {
				fmt.Printf("%s [%s]: ", prompt, def)
			} else {
				fmt.Printf("%s: ", prompt)
			}
			line, _ := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" {
				return def
			}
			return line
		}

		cacheDir := ask("Cache directory", "/var/tmp/droplog")
		bearer := ask("Bearer token (or aws:ssm:<region>:<name>)", "")
		days, err := strconv.Atoi(ask("Days of history per run", "1"))
		if err != nil || days < 0 {
			return fmt.Errorf("days of history must be a non-negative integer")
		}

		v := viper.New()
		v.Set("dropbox.token", bearer)
		v.Set("cache.dir", cacheDir)
		v.Set("fetch.start_days", days)
		v.Set("cache.on_write_error", "abort")

		if err := v.SafeWriteConfigAs(out); err != nil {
			return err
		}
		fmt.Println("Complete! Written:", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("out", "", "Where to write the config file (default $HOME/.droplog.yaml)")
}
