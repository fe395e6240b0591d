// ABOUTME: watch subcommand: follows one Snapcast server from the terminal
// ABOUTME: Prints styled now-playing titles, status changes, and errors until interrupted
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/harper/snapmeta/internal/application/config"
	"github.com/harper/snapmeta/internal/application/logging"
	"github.com/harper/snapmeta/internal/domain"
	"github.com/harper/snapmeta/internal/domain/notification"
	"github.com/harper/snapmeta/internal/domain/snapmeta"
	"github.com/harper/snapmeta/internal/infrastructure/frame"
	"github.com/harper/snapmeta/internal/infrastructure/metadata"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

type watchOptions struct {
	port        int
	framing     string
	format      string
	dialTimeout time.Duration
	logLevel    string
	logJSON     bool
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:     "watch HOST",
		Short:   "Print now-playing notifications from one server",
		Example: "  snapmeta watch 192.168.1.20\n  snapmeta watch snapserver.local --framing stream --format '{title} ({album})'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, args[0], opts, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&opts.port, "port", "p", snapmeta.DefaultPort, "Snapcast control port")
	fs.StringVar(&opts.framing, "framing", string(frame.ModeChunk), "Frame decoding: chunk|stream")
	fs.StringVar(&opts.format, "format", metadata.DefaultFormat, "Title template with {key} placeholders")
	fs.DurationVar(&opts.dialTimeout, "dial-timeout", 5*time.Second, "Connect timeout")
	addLogFlags(fs, &opts.logLevel, &opts.logJSON)
	return cmd
}

// runWatch follows host until ctx is done or the connection drops.
func runWatch(ctx context.Context, host string, opts *watchOptions, out io.Writer) error {
	mode, err := frame.ParseMode(opts.framing)
	if err != nil {
		return err
	}

	log := logging.New(config.LoggingConfig{Level: opts.logLevel, JSON: opts.logJSON}).
		With().Str("component", "watch").Str("server", host).Logger()

	client, err := snapmeta.New(host,
		snapmeta.WithPort(opts.port),
		snapmeta.WithFraming(mode),
		snapmeta.WithDialTimeout(opts.dialTimeout),
	)
	if err != nil {
		return err
	}

	formatter := metadata.NewFormatter(metadata.BuildConfig{Format: opts.format, NormalizeWhitespace: true})
	dropped := make(chan error, 1)

	client.OnData(func(md notification.Metadata) {
		title := formatter.Title(md)
		if title == "" {
			title = faintStyle.Render("(no title)")
		}
		fmt.Fprintln(out, titleStyle.Render("♪ ")+title)
		if art := formatter.ArtURL(md); art != "" {
			fmt.Fprintln(out, faintStyle.Render("  "+art))
		}
	})
	client.OnStatus(func(status string) {
		fmt.Fprintln(out, statusStyle.Render("● "+status))
	})
	client.OnError(func(err error) {
		fmt.Fprintln(out, errorStyle.Render("✗ "+err.Error()))
		if domain.IsTransportError(err) {
			select {
			case dropped <- err:
			default:
			}
		}
	})

	if err := client.Open(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", client.Addr(), err)
	}
	log.Info().Str("addr", client.Addr()).Msg("connected")
	fmt.Fprintln(out, faintStyle.Render("connected to "+client.Addr()+", ctrl-c to stop"))

	select {
	case <-ctx.Done():
		if err := client.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}
		log.Info().Msg("closed")
		return nil
	case err := <-dropped:
		if errors.Is(err, domain.ErrConnectionClosed) {
			return fmt.Errorf("server %s closed the connection", client.Addr())
		}
		return err
	}
}
