package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/envfile"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the env-file template",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		rendered := reg.Render()
		if templateOut != "" {
			if err := rendered.WriteFile(templateOut); err != nil {
				return err
			}
			fmt.Printf("Wrote template to %s\n", templateOut)
			return nil
		}
		fmt.Print(rendered.Render())
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show how the env file differs from the template",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		f, err := envfile.Load(envFile)
		if err != nil {
			return err
		}

		changes := f.Diff(reg.Render())
		if len(changes) == 0 {
			fmt.Println("No differences.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tKIND\tFILE\tTEMPLATE")
		for _, c := range changes {
			fileVal, tmplVal := c.Old, c.New
			if reg.IsSecret(c.Key) {
				fileVal, tmplVal = mask(fileVal), mask(tmplVal)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Key, c.Kind, fileVal, tmplVal)
		}
		w.Flush()
		return nil
	},
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return "••••"
}

func init() {
	templateCmd.Flags().StringVar(&templateOut, "out", "", "Write the template to a file instead of stdout")
	rootCmd.AddCommand(templateCmd, diffCmd)
}
