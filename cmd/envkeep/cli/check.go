package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/envfile"
	"github.com/tsakani-green/envkeep/internal/preflight"
	"github.com/tsakani-green/envkeep/internal/report"
	"github.com/tsakani-green/envkeep/internal/secrets"
	"github.com/tsakani-green/envkeep/internal/validate"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the env file against the documented key surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		f, err := envfile.Load(envFile)
		if err != nil {
			return err
		}

		rep := validate.File(f, reg)
		printReport(rep)
		if !rep.OK(validateStrict) {
			return fmt.Errorf("%s failed validation (%d error(s), %d warning(s))",
				envFile, rep.Errors(), rep.Warnings())
		}
		fmt.Printf("%s is valid (%d key(s))\n", envFile, f.Len())
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the env file for live credentials",
	Long: `Flags values that look like real secrets rather than placeholders.
A committed env file must never hold live credentials; anything reported
here needs rotation, not just removal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		f, err := envfile.Load(envFile)
		if err != nil {
			return err
		}

		rep := secrets.Scan(f, reg)
		printReport(rep)
		if rep.Errors() > 0 {
			return fmt.Errorf("%d value(s) in %s look like live credentials", rep.Errors(), envFile)
		}
		fmt.Printf("No live credentials found in %s\n", envFile)
		return nil
	},
}

var (
	preflightDockerfile string
	preflightContext    string
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check the Dockerfile and build context before deploying",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := preflight.Run(preflight.Options{
			Dockerfile: preflightDockerfile,
			Context:    preflightContext,
			EnvFile:    envFile,
		})
		if err != nil {
			return err
		}
		printReport(rep)
		if !rep.OK(false) {
			return fmt.Errorf("preflight failed (%d error(s))", rep.Errors())
		}
		fmt.Println("Preflight passed.")
		return nil
	},
}

func printReport(rep *report.Report) {
	if len(rep.Findings) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tCHECK\tKEY\tMESSAGE")
	for _, f := range rep.Findings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Severity, f.Check, f.Key, f.Message)
	}
	w.Flush()
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as failures")
	preflightCmd.Flags().StringVar(&preflightDockerfile, "dockerfile", "Dockerfile", "Path to the Dockerfile")
	preflightCmd.Flags().StringVar(&preflightContext, "context", "", "Build context directory (default: the Dockerfile's directory)")
	rootCmd.AddCommand(validateCmd, scanCmd, preflightCmd)
}
