// ABOUTME: Root cobra command and shared flags
// ABOUTME: Groups the serve and watch subcommands
package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "snapmeta",
		Short:         "Follow Snapcast now-playing notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newWatchCmd())
	return root
}

// addLogFlags registers the logging flags shared by every subcommand.
func addLogFlags(fs *pflag.FlagSet, level *string, json *bool) {
	fs.StringVar(level, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	fs.BoolVar(json, "log-json", false, "Emit JSON logs instead of console output")
}

// splitListen parses host:port for --listen. A bare ":port" keeps the host empty.
func splitListen(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid listen port %q", p)
	}
	return host, port, nil
}
