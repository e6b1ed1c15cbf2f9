package exec

import (
	"context"
	"fmt"
	"strings"

	"github.com/craftnet/rconsole/client"
	"github.com/craftnet/rconsole/config"
	"github.com/craftnet/rconsole/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile = tools.GetenvDefault(config.EnvPrefix+"CONFIG", "config.yaml")

	Cmd = &cobra.Command{
		Use:   "exec <command>...",
		Short: "Execute one command and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExec,
	}
)

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", configFile, "path of config file")
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	manager := client.NewManager(cfg, log.Logger)
	defer manager.Close()

	out, err := manager.Run(context.Background(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("command failed (%s): %w", manager.State(), err)
	}

	fmt.Println(out)
	return nil
}
