package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/config"
	"github.com/tsakani-green/envkeep/internal/hosting"
)

var hostingCmd = &cobra.Command{
	Use:   "hosting",
	Short: "Check the deployment on the hosting provider",
}

var (
	hostingService string
	hostingRootDir string
)

var hostingCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify service settings via the provider API",
	Long: `Fetches the service from a Render-style API and verifies its root
directory and required env vars. Needs RENDER_API_KEY and RENDER_SERVICE_ID
(or --service) in the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		serviceID := hostingService
		if serviceID == "" {
			serviceID = cfg.RenderServiceID
		}
		if cfg.RenderAPIKey == "" || serviceID == "" {
			return fmt.Errorf("set RENDER_API_KEY and RENDER_SERVICE_ID (or --service)")
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		client := hosting.NewClient(cfg.RenderAPIBase, cfg.RenderAPIKey)
		svc, rep, err := client.Check(ctx, hosting.CheckOptions{
			ServiceID:    serviceID,
			WantRootDir:  hostingRootDir,
			RequiredVars: reg.Required(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Service: %s (%s)\n", svc.Name, svc.ID)
		fmt.Printf("Root directory: %s\n", svc.RootDirectory)
		printReport(rep)
		if !rep.OK(false) {
			return fmt.Errorf("service settings have %d error(s)", rep.Errors())
		}
		fmt.Println("Service settings look good.")
		return nil
	},
}

func init() {
	hostingCheckCmd.Flags().StringVar(&hostingService, "service", "", "Service ID (overrides RENDER_SERVICE_ID)")
	hostingCheckCmd.Flags().StringVar(&hostingRootDir, "root-dir", "", "Expected root directory, e.g. app")
	hostingCmd.AddCommand(hostingCheckCmd)
	rootCmd.AddCommand(hostingCmd)
}
