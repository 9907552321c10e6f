package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage env-file backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current env file",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, st, err := newKeeper(true)
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := k.CreateBackup()
		if err != nil {
			return err
		}
		fmt.Printf("Backed up %s -> %s\n", envFile, b.Name)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _, err := newKeeper(false)
		if err != nil {
			return err
		}
		backups, err := k.Backups().List()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCREATED\tSIZE")
		for _, b := range backups {
			fmt.Fprintf(w, "%s\t%s\t%d\n", b.Name, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Size)
		}
		w.Flush()
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Replace the env file with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, st, err := newKeeper(true)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := k.Restore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Restored %s from %s\n", envFile, args[0])
		return nil
	},
}

var pruneKeep int

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _, err := newKeeper(false)
		if err != nil {
			return err
		}
		removed, err := k.Backups().Prune(pruneKeep)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d backup(s), kept %d\n", removed, pruneKeep)
		return nil
	},
}

func init() {
	backupPruneCmd.Flags().IntVar(&pruneKeep, "keep", 5, "Number of backups to keep")
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}
