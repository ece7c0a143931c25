package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"droplog/internal/utils"
	"droplog/pkg/cache"
	"droplog/pkg/dropbox"
	"droplog/pkg/storage"
	"droplog/pkg/token"
	"droplog/pkg/whttp"
)

// Exit code for unresolvable configuration, kept from the original tool.
const exitConfig = 10

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download team event logs for a time window",
	Long: `Fetches Dropbox team event log pages for the requested window and
writes each page to the cache directory. The window defaults to the last
--start days ending now; --timestamps and --since-last override it.`,
	Run: func(cmd *cobra.Command, args []string) {
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
		if proxy != "" {
			if err := whttp.SetupProxy(proxy); err != nil {
				utils.Log.Error("invalid proxy string: ", err)
				os.Exit(1)
			}
		}

		opts := resolveFetchOptions(cmd)
		if err := runFetch(cmd.Context(), opts); err != nil {
			utils.Log.Error(err)
			var cfgErr *dropbox.ConfigError
			if errors.As(err, &cfgErr) {
				os.Exit(exitConfig)
			}
			os.Exit(1)
		}
	},
}

type fetchOptions struct {
	token        string
	startDays    int
	timestamps   string
	sinceLast    bool
	cacheDir     string
	onWriteError string
	retryMax     int
	dbPath       string
}

// addFetchFlags registers the flags shared by fetch and poll.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("token", "t", "", "Dropbox API bearer token, or aws:ssm:<region>:<parameter-name>")
	cmd.Flags().IntP("start", "s", 1, "Days of history to fetch, ending now")
	cmd.Flags().String("timestamps", "", "Explicit window as <start>#<end> (2006-01-02T15:04:05Z), overrides --start")
	cmd.Flags().Bool("since-last", false, "Start the window at the previous successful run's end marker")
	cmd.Flags().StringP("cachedir", "d", "", "Directory for retrieved pages (default /var/tmp/droplog)")
	cmd.Flags().String("on-write-error", "", "Policy when a page cannot be written: abort or skip (default abort)")
	cmd.Flags().Bool("db", false, "Record the run in the SQLite run ledger")
	cmd.Flags().String("dbpath", "", "Path to the run ledger (default "+storage.DefaultPath+")")
}

// stringSetting applies the flag > config file > default precedence for one
// setting. The built-in defaults are registered with viper in initConfig.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}

func resolveFetchOptions(cmd *cobra.Command) fetchOptions {
	opts := fetchOptions{
		token:        stringSetting(cmd, "token", "dropbox.token"),
		startDays:    intSetting(cmd, "start", "fetch.start_days"),
		cacheDir:     stringSetting(cmd, "cachedir", "cache.dir"),
		onWriteError: stringSetting(cmd, "on-write-error", "cache.on_write_error"),
		retryMax:     viper.GetInt("fetch.retry_max"),
	}
	opts.timestamps, _ = cmd.Flags().GetString("timestamps")
	opts.sinceLast, _ = cmd.Flags().GetBool("since-last")

	useDB, _ := cmd.Flags().GetBool("db")
	dbPath, _ := cmd.Flags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("ledger.path")
	}
	if useDB && dbPath == "" {
		dbPath = storage.DefaultPath
	}
	opts.dbPath = dbPath

	return opts
}

// resolveWindow picks the fetch window: explicit timestamps win, then the
// last-run marker when --since-last is set, then the --start day offset.
func resolveWindow(opts fetchOptions, now time.Time) (dropbox.FetchWindow, error) {
	if opts.timestamps != "" {
		return dropbox.ParseTimestamps(opts.timestamps)
	}
	if opts.sinceLast {
		last, ok, err := cache.LastRun(opts.cacheDir)
		if err != nil {
			return dropbox.FetchWindow{}, err
		}
		if ok {
			end := now.UTC().Truncate(time.Second)
			if last.After(end) {
				return dropbox.FetchWindow{}, fmt.Errorf("last-run marker %s is in the future", last.Format(dropbox.TimeFormat))
			}
			return dropbox.FetchWindow{Start: last, End: end}, nil
		}
		utils.Log.Info("no last-run marker in ", opts.cacheDir, ", falling back to --start")
	}
	return dropbox.WindowFromDays(now, opts.startDays)
}

func runFetch(ctx context.Context, opts fetchOptions) error {
	if opts.token == "" {
		return &dropbox.ConfigError{Reason: "no bearer token resolvable from flags or config file (set -t or dropbox.token)"}
	}
	switch opts.onWriteError {
	case "abort", "skip":
	default:
		return &dropbox.ConfigError{Reason: fmt.Sprintf("on-write-error must be abort or skip, got %q", opts.onWriteError)}
	}

	started := time.Now()

	window, err := resolveWindow(opts, started)
	if err != nil {
		return &dropbox.ConfigError{Reason: err.Error()}
	}

	bearer, err := token.Resolve(ctx, opts.token)
	if err != nil {
		return &dropbox.ConfigError{Reason: err.Error()}
	}

	utils.Log.Info("fetch window ", window.Start.Format(dropbox.TimeFormat), " .. ", window.End.Format(dropbox.TimeFormat))

	writer, err := cache.NewWriter(opts.cacheDir, started)
	if err != nil {
		return err
	}

	client := dropbox.NewClient(bearer, whttp.NewClient(opts.retryMax))

	var pages, events, skipped int
	fetchErr := client.FetchEvents(ctx, window, func(p dropbox.Page) error {
		path, werr := writer.WritePage(p.Index, p.Body)
		if werr != nil {
			if opts.onWriteError == "skip" {
				utils.Log.Error("skipping page ", p.Index, ": ", werr)
				skipped++
				return nil
			}
			return werr
		}
		pages++
		events += p.Events
		utils.Log.Debug("cached ", path)
		return nil
	})

	outcome, errText := "ok", ""
	switch {
	case fetchErr != nil:
		outcome, errText = "failed", fetchErr.Error()
	case skipped > 0:
		outcome, errText = "failed", fmt.Sprintf("%d pages skipped on write failure", skipped)
	}

	if opts.dbPath != "" {
		recordRun(ctx, opts.dbPath, storage.Run{
			StartedAt:   started,
			WindowStart: window.Start.Format(dropbox.TimeFormat),
			WindowEnd:   window.End.Format(dropbox.TimeFormat),
			Pages:       pages,
			Events:      events,
			Outcome:     outcome,
			Error:       errText,
		})
	}

	if fetchErr != nil {
		return fetchErr
	}
	if skipped > 0 {
		return fmt.Errorf("%d of %d pages could not be written", skipped, pages+skipped)
	}

	if err := writer.MarkLastRun(window.End); err != nil {
		utils.Log.Warn("could not update last-run marker: ", err)
	}
	utils.Log.Info("retrieved ", pages, " pages, ", events, " events")
	return nil
}

// recordRun appends to the ledger on a best-effort basis: a broken ledger
// never fails a fetch that already succeeded.
func recordRun(ctx context.Context, dbPath string, run storage.Run) {
	db, err := storage.Open(dbPath)
	if err != nil {
		utils.Log.Error("run ledger unavailable: ", err)
		return
	}
	defer db.Close()
	if err := db.RecordRun(ctx, run); err != nil {
		utils.Log.Error("recording run: ", err)
	}
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFetchFlags(fetchCmd)
}
