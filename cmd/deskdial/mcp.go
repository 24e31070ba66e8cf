package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deskdial/deskdial/internal/logging"
	deskmcp "github.com/deskdial/deskdial/internal/mcp"
)

// McpCmd serves the MCP adapter so AI agents can drive a running bridge.
// Default transport is stdio; --http serves streamable HTTP instead. Logging
// is silenced on stdio because stdout belongs to the protocol.
func McpCmd() *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio or HTTP (requires a running bridge)",
		Run: func(cmd *cobra.Command, args []string) {
			logging.Quiet()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			adapter := deskmcp.NewAdapter(clientBase())

			if httpAddr != "" {
				srv := &http.Server{Addr: httpAddr, Handler: adapter.Handler()}
				go func() {
					<-ctx.Done()
					srv.Shutdown(context.Background())
				}()
				fmt.Fprintf(os.Stderr, "MCP server listening at http://%s\n", httpAddr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
					os.Exit(1)
				}
				return
			}

			if err := adapter.Run(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. 127.0.0.1:8792)")
	return cmd
}
