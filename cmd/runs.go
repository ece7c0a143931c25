package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"droplog/pkg/storage"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		if dbPath == "" {
			dbPath = viper.GetString("ledger.path")
		}
		if dbPath == "" {
			dbPath = storage.DefaultPath
		}
		if _, err := os.Stat(dbPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("run ledger not found: %s", dbPath)
			}
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STARTED\tWINDOW START\tWINDOW END\tPAGES\tEVENTS\tOUTCOME\t")
		for _, r := range runs {
			outcome := r.Outcome
			if r.Error != "" {
				outcome += " (" + r.Error + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t\n",
				r.StartedAt.Format("2006-01-02 15:04:05"), r.WindowStart, r.WindowEnd, r.Pages, r.Events, outcome)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().String("dbpath", "", "Path to the run ledger (default "+storage.DefaultPath+")")
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to print")
}
