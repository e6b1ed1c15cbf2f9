package run

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/craftnet/rconsole/catalog"
	"github.com/craftnet/rconsole/client"
	"github.com/craftnet/rconsole/command"
	"github.com/craftnet/rconsole/config"
	"github.com/craftnet/rconsole/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile = tools.GetenvDefault(config.EnvPrefix+"CONFIG", "config.yaml")

	Cmd = &cobra.Command{
		Use:   "run",
		Short: "Start the interactive admin console",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	}
)

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", configFile, "path of config file")
}

// runConsole connects, starts the player-list poller and feeds operator
// commands from stdin through the same serialized manager entry point.
func runConsole(cmd *cobra.Command, args []string) error {
	logger := log.With().Str("component", "console").Logger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	manager := client.NewManager(cfg, log.Logger)
	defer manager.Close()

	index := catalog.NewIndex(cfg.DataDir, log.Logger)
	if err := index.Load(); err != nil {
		// Catalog verbs will fail to resolve, but raw commands still work.
		logger.Error().Err(err).Msg("loading catalogs failed")
	}
	console := command.NewConsole(manager, index, cfg.Locations, log.Logger)

	if err := manager.EnsureConnected(ctx); err != nil {
		// Surface the diagnostic but keep the console open; the operator
		// can fix the server config and type "reconnect".
		logger.Error().Err(err).Stringer("state", manager.State()).Msg("initial connection failed")
	}

	poller := client.NewPoller(manager, cfg.PollInterval, func(players []string) {
		logger.Info().Strs("online", players).Msg("player list updated")
	}, log.Logger)
	go poller.Run(ctx)

	fmt.Println("Verbs: give, effect, enchant, tp, say. Anything else is sent raw. \"reconnect\" or \"exit\".")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reconnect":
			if err := manager.Reconnect(ctx); err != nil {
				logger.Error().Err(err).Stringer("state", manager.State()).Msg("reconnect failed")
			}
			continue
		}

		out, err := console.Dispatch(ctx, line)
		if err != nil {
			logger.Error().Err(err).Stringer("state", manager.State()).Msg("command failed")
			continue
		}
		if out == "" {
			out = "(no output)"
		}
		fmt.Println(out)
	}
	return scanner.Err()
}
