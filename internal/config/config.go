package config

import "os"

// Config is the tool's own runtime configuration, read from env vars.
// The env file it manages is separate and never loaded into the process.
type Config struct {
	Port            string
	EnvFile         string
	BackupDir       string
	DBPath          string
	MasterKey       string
	TemplateOverlay string

	// Hosting provider checks
	RenderAPIBase   string
	RenderAPIKey    string
	RenderServiceID string
}

func Load() Config {
	c := Config{
		Port:          ":8080",
		EnvFile:       ".env",
		DBPath:        "envkeep.db",
		RenderAPIBase: "https://api.render.com",
	}
	if v := os.Getenv("ENVKEEP_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("ENVKEEP_ENV_FILE"); v != "" {
		c.EnvFile = v
	}
	if v := os.Getenv("ENVKEEP_BACKUP_DIR"); v != "" {
		c.BackupDir = v
	}
	if v := os.Getenv("ENVKEEP_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ENVKEEP_MASTER_KEY"); v != "" {
		c.MasterKey = v
	}
	if v := os.Getenv("ENVKEEP_TEMPLATE_OVERLAY"); v != "" {
		c.TemplateOverlay = v
	}
	if v := os.Getenv("RENDER_API_BASE"); v != "" {
		c.RenderAPIBase = v
	}
	if v := os.Getenv("RENDER_API_KEY"); v != "" {
		c.RenderAPIKey = v
	}
	if v := os.Getenv("RENDER_SERVICE_ID"); v != "" {
		c.RenderServiceID = v
	}
	return c
}
