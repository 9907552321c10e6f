package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/envfile"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a key's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := envfile.Load(envFile)
		if err != nil {
			return err
		}
		v, ok := f.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q not set in %s", args[0], envFile)
		}
		fmt.Println(v)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a key (the file is backed up first)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, st, err := newKeeper(true)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := k.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set %s in %s\n", args[0], envFile)
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a key (the file is backed up first)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, st, err := newKeeper(true)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := k.Unset(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s from %s\n", args[0], envFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd, setCmd, unsetCmd)
}
