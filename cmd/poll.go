package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"droplog/internal/utils"
	"droplog/pkg/dropbox"
	"droplog/pkg/whttp"
)

// pollCmd implements: droplog poll
//
// Runs the fetch path immediately and then on every interval tick until
// interrupted. Transient failures are logged and the next tick tries
// again; configuration and authentication errors stop the loop, since no
// amount of polling fixes a bad token.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Fetch on an interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
		if proxy != "" {
			if err := whttp.SetupProxy(proxy); err != nil {
				return err
			}
		}

		interval, err := resolveInterval(cmd)
		if err != nil {
			return err
		}

		opts := resolveFetchOptions(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		utils.Log.Info("polling every ", interval)
		for {
			if err := runFetch(ctx, opts); err != nil {
				var authErr *dropbox.AuthError
				var cfgErr *dropbox.ConfigError
				if errors.As(err, &authErr) || errors.As(err, &cfgErr) {
					return err
				}
				utils.Log.Error("fetch failed: ", err)
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
	},
}

func resolveInterval(cmd *cobra.Command) (time.Duration, error) {
	raw := stringSetting(cmd, "interval", "poll.interval")
	interval, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, errors.New("poll interval must be positive")
	}
	return interval, nil
}

func init() {
	rootCmd.AddCommand(pollCmd)
	addFetchFlags(pollCmd)
	pollCmd.Flags().String("interval", "", "Time between fetches (Go duration, e.g. 30m, 1h; default 1h)")
}
