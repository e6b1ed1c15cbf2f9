package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile string // --config flag value

	Cmd = &cobra.Command{
		Use:   "config",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE:  generateConfig,
	}
)

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "output config file path")
}

const defaultConfig = `# rconsole configuration
server:
  host: 127.0.0.1
  port: 25575
  # Prefer RCONSOLE_PASSWORD (or a .env file) over storing the password here.
  password: ""

timeouts:
  connect: 5s
  read: 5s

# How often the online player list is refreshed.
poll_interval: 5s

# Directory holding items.json, effects.json and enchantments.json.
data_dir: data

# Named coordinates for teleport commands.
locations:
  spawn: {x: 0, y: 64, z: 0}
`

func generateConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("refusing to overwrite existing %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	log.Info().Str("path", configFile).Msg("configuration file generated")
	return nil
}
