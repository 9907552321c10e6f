package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updateNoBackup bool
	updateKeep     bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Regenerate the env file from the template",
	Long: `Rewrites the env file with the documented keys and their defaults.
An existing file is first copied to a timestamped backup. With --keep,
values you have already filled in survive the rewrite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, st, err := newKeeper(true)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := k.Update(updateNoBackup, updateKeep)
		if err != nil {
			return err
		}

		if res.Backup != nil {
			fmt.Printf("Backed up %s -> %s\n", envFile, res.Backup.Name)
		}
		fmt.Printf("Wrote %s\n", envFile)
		if updateKeep {
			fmt.Printf("Kept %d existing value(s)\n", res.KeptValues)
		}
		fmt.Println("Replace placeholder values before deploying.")
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateNoBackup, "no-backup", false, "Skip the backup of an existing file")
	updateCmd.Flags().BoolVar(&updateKeep, "keep", false, "Keep non-placeholder values already in the file")
	rootCmd.AddCommand(updateCmd)
}
