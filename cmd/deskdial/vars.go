package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deskdial/deskdial/internal/config"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile   string
	verbose   bool
	visible   bool
	dataDir   string
	bridgeURL string
)

// AppConfig holds the loaded configuration (set by main)
var AppConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	AppConfig = c

	rootCmd := &cobra.Command{
		Use:   "deskdial",
		Short: "Deskdial - desktop automation bridge for Google Voice",
		Long: `Deskdial embeds the Google Voice web app and exposes a local HTTP
bridge for placing calls, sending SMS, and reading notifications.

Just type 'deskdial' to start the bridge with a headless page session.
Point external tools at http://127.0.0.1:` + fmt.Sprint(config.DefaultPort) + `.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.deskdial)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&bridgeURL, "bridge", "", "bridge address for client commands (default: http://127.0.0.1:<port>)")

	rootCmd.Flags().BoolVar(&visible, "visible", false, "run the browser with a visible window")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(McpCmd())
	rootCmd.AddCommand(CallCmd())
	rootCmd.AddCommand(SmsCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(UnreadCmd())
	rootCmd.AddCommand(MessagesCmd())
	rootCmd.AddCommand(ContactsCmd())
	rootCmd.AddCommand(CallsCmd())
	rootCmd.AddCommand(VoicemailsCmd())
	rootCmd.AddCommand(SearchCmd())
	rootCmd.AddCommand(ThemeCmd())
	rootCmd.AddCommand(ReloadCmd())
	rootCmd.AddCommand(DumpDOMCmd())
	rootCmd.AddCommand(HistoryCmd())

	return rootCmd
}
