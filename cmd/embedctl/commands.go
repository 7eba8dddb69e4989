package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/drawembed/internal/config"
	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/relay"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const envConfig = "DRAWEMBED_CONFIG"

var errUsage = errors.New("usage: embedctl <url|serve|check|decode> [flags]")

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if args == nil {
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "embedctl",
		Short:         "Build diagrams.net embed addresses and run the frame relay",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errUsage
			}
			return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+envConfig+")")

	root.AddCommand(
		newURLCmd(&configPath),
		newServeCmd(&configPath),
		newCheckCmd(&configPath),
		newDecodeCmd(),
	)
	return root
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newURLCmd(configPath *string) *cobra.Command {
	var (
		base      string
		configure bool
		params    []string
	)
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the embed address for the configured options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if base != "" {
				cfg.BaseURL = base
			}
			if configure {
				cfg.Configure = true
			}
			for _, kv := range params {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return fmt.Errorf("param %q is not key=value", kv)
				}
				cfg.Parameters.Set(key, value)
			}
			out, err := cfg.EmbedURL()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "override base_url")
	cmd.Flags().BoolVar(&configure, "configure", false, "request the configure handshake")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "key=value parameter, repeatable")
	return cmd
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the relay configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rc, err := cfg.RelayConfig()
			if err != nil {
				return err
			}
			if err := rc.ValidateServerTransport(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok embed_url=%s origin=%s mode=%s\n", rc.EmbedURL, rc.Origin, rc.SecurityMode)
			return err
		},
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Relay.Addr = addr
			}
			rc, err := cfg.RelayConfig()
			if err != nil {
				return err
			}
			srv, err := relay.New(rc)
			if err != nil {
				return err
			}
			log.Info().Str("embed_url", rc.EmbedURL).Str("origin", srv.Config().Origin).Msg("embedctl.serve starting")
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override relay.addr")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Classify newline separated messages read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runDecode classifies newline separated messages as events or actions.
func runDecode(stdin io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	line := 0
	failed := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		desc, ok := describe([]byte(text))
		if !ok {
			failed++
		}
		fmt.Fprintf(stdout, "%d: %s\n", line, desc)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d invalid message(s)", failed)
	}
	return nil
}

func describe(data []byte) (string, bool) {
	ev, err := protocol.DecodeEvent(data)
	if err == nil {
		if protocol.Terminal(ev) {
			return fmt.Sprintf("event %s (terminal)", ev.EventKind()), true
		}
		return fmt.Sprintf("event %s", ev.EventKind()), true
	}
	if !errors.Is(err, protocol.ErrMissingDiscriminant) {
		return fmt.Sprintf("invalid event: %v", err), false
	}
	action, err := protocol.DecodeAction(data)
	if err != nil {
		return fmt.Sprintf("invalid action: %v", err), false
	}
	if kind, ok := protocol.ExpectsReply(action); ok {
		return fmt.Sprintf("action %s (reply %s)", action.ActionKind(), kind), true
	}
	return fmt.Sprintf("action %s", action.ActionKind()), true
}
