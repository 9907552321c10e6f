package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/config"
	"github.com/tsakani-green/envkeep/internal/store"
	"github.com/tsakani-green/envkeep/migrations"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded env-file operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := store.NewSQLiteStore(cfg.DBPath, migrations.FS)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer db.Close()

		revs, err := db.ListRevisions(historyLimit)
		if err != nil {
			return err
		}
		if len(revs) == 0 {
			fmt.Println("No history.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tFILE\tBACKUP\tKEYS")
		for _, r := range revs {
			keys := strings.Join(r.KeysChanged, ",")
			if len(keys) > 40 {
				keys = keys[:37] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Action, r.FilePath, r.BackupName, keys)
		}
		w.Flush()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}
