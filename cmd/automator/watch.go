package main

import (
	"fmt"
	"os"

	"github.com/aretw0/automator/internal/cli"
	"github.com/aretw0/automator/pkg/adapters/redis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [session]",
	Short: "Print a session's change events as they are published",
	Long: `Subscribes to the Redis channel of a session and prints one line per
change event. The editing process must run with redis.enabled so events are
published. The session defaults to the interactive editor's session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := cli.DefaultSessionID
		if len(args) == 1 {
			sessionID = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		pub := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.ChannelPrefix))
		defer pub.Close()
		if err := pub.Ping(ctx); err != nil {
			return cli.NewExitError(cli.ExitUnavailable, fmt.Errorf("redis at %s: %w", cfg.Redis.Address, err))
		}

		logger.Debug("watching session",
			zap.String("session_id", sessionID),
			zap.String("channel", pub.Channel(sessionID)))
		return cli.HandleExecutionError(cli.Watch(ctx, pub, sessionID, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
