package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/showdownlabs/psclient/internal/chatlog"
	"github.com/showdownlabs/psclient/internal/config"
	"github.com/showdownlabs/psclient/internal/log"
	"github.com/showdownlabs/psclient/internal/transport/ws"
	"github.com/showdownlabs/psclient/showdown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:          "psbot",
		Short:        "Connect to a Pokémon Showdown server, log in, and follow chat",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath, overrides)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&overrides.Username, "username", "", "username to log in with")
	cmd.Flags().StringVar(&overrides.Password, "password", "", "password for the username")
	cmd.Flags().StringVar(&overrides.ServerURL, "server", "", "websocket URL of the server")
	cmd.Flags().IntVar(&overrides.LogLevel, "loglevel", 0, "verbosity 0-3")
	cmd.Flags().DurationVar(&overrides.Throttle, "throttle", 0, "minimum interval between sends")
	cmd.Flags().StringSliceVar(&overrides.Rooms, "room", nil, "room to join (repeatable)")
	cmd.Flags().StringVar(&overrides.ChatlogDir, "chatlog-dir", "", "directory for chat logs")
	cmd.Flags().StringVar(&overrides.ChatlogDriver, "chatlog-driver", "", "chat log backend: file or sqlite")

	return cmd
}

func run(ctx context.Context, configPath string, overrides config.Config) error {
	bootLog := log.New(2)
	cfg, path, err := config.Load(bootLog, configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.UpdateFrom(overrides)
	if cfg.Username == "" {
		return fmt.Errorf("no username configured (set --username or edit %s)", path)
	}

	logger := log.New(cfg.LogLevel)

	conn, err := ws.Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info().Str("server", cfg.ServerURL).Msg("connected")

	var chatlogger showdown.Chatlogger
	if cfg.ChatlogDir != "" {
		switch cfg.ChatlogDriver {
		case "sqlite":
			sl, err := chatlog.NewSQLiteLogger(cfg.ChatlogDir, logger)
			if err != nil {
				return err
			}
			defer sl.Close()
			chatlogger = sl
		default:
			fl, err := chatlog.NewFileLogger(cfg.ChatlogDir, logger)
			if err != nil {
				return err
			}
			chatlogger = fl
		}
	}

	session := showdown.NewSession(showdown.SessionConfig{
		Username:   cfg.Username,
		Password:   cfg.Password,
		Transport:  conn,
		Login:      showdown.NewHTTPLogin(nil),
		Chatlogger: chatlogger,
		Logger:     logger,
		Throttle:   cfg.Throttle,
	})

	loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = session.WaitForLogin(loginCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("wait for login: %w", err)
	}

	for _, name := range cfg.Rooms {
		if err := session.NewRoom(name).Join(ctx); err != nil {
			return fmt.Errorf("join %s: %w", name, err)
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- session.Run(ctx)
	}()

	for ev := range session.Events() {
		switch ev.Kind {
		case showdown.EventChat:
			logger.Info().Str("room", roomID(ev)).Str("from", ev.SenderName).Msg(ev.Body)
		case showdown.EventPM:
			logger.Info().Str("from", ev.SenderName).Msg(ev.Body)
		case showdown.EventJoin:
			logger.Debug().Str("room", roomID(ev)).Str("user", ev.SenderName).Msg("joined")
		case showdown.EventLeave:
			logger.Debug().Str("room", roomID(ev)).Str("user", ev.SenderName).Msg("left")
		}
	}

	err = <-runErr
	if err != nil && ctx.Err() != nil {
		// Shutdown via signal is a clean exit.
		return nil
	}
	return err
}

func roomID(ev *showdown.Event) string {
	if ev.Room == nil {
		return ""
	}
	return ev.Room.ID
}
