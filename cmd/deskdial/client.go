package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskdial/deskdial/internal/logging"
	"github.com/deskdial/deskdial/internal/theme"
)

// Client subcommands talk to a running bridge over its loopback HTTP API and
// print the JSON response. They never touch the browser directly.

func clientBase() string {
	if bridgeURL != "" {
		return strings.TrimRight(bridgeURL, "/")
	}
	return fmt.Sprintf("http://127.0.0.1:%d", AppConfig.Bridge.Port)
}

// clientFail prints a structured error and exits. Connection refused gets
// the hint users actually need.
func clientFail(command string, err error) {
	hint := "check the bridge address and logs"
	if strings.Contains(err.Error(), "connection refused") {
		hint = "make sure the deskdial app is running"
	}
	out, _ := json.MarshalIndent(map[string]string{
		"error": err.Error(),
		"tool":  command,
		"hint":  hint,
	}, "", "  ")
	fmt.Fprintln(os.Stderr, string(out))
	os.Exit(1)
}

func clientGet(command, path string) {
	logging.Quiet()
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(clientBase() + path)
	if err != nil {
		clientFail(command, err)
	}
	printResponse(command, resp)
}

func clientPost(command, path string, body any) {
	logging.Quiet()
	payload, err := json.Marshal(body)
	if err != nil {
		clientFail(command, err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(clientBase()+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		clientFail(command, err)
	}
	printResponse(command, resp)
}

func printResponse(command string, resp *http.Response) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		clientFail(command, err)
	}
	if resp.StatusCode >= 400 {
		clientFail(command, fmt.Errorf("bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Println(pretty.String())
		return
	}
	fmt.Println(string(body))
}

func limitQuery(limit int) string {
	if limit > 0 {
		return fmt.Sprintf("?limit=%d", limit)
	}
	return ""
}

func CallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <number>",
		Short: "Place a call",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			clientPost("call", "/call", map[string]string{"number": args[0]})
		},
	}
}

func SmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sms <number> <text>",
		Short: "Send an SMS",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			clientPost("sms", "/sms", map[string]string{
				"number": args[0],
				"text":   strings.Join(args[1:], " "),
			})
		},
	}
}

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show bridge status",
		Run: func(cmd *cobra.Command, args []string) {
			clientGet("status", "/status")
		},
	}
}

func UnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Show the unread notification count",
		Run: func(cmd *cobra.Command, args []string) {
			clientGet("unread", "/unread")
		},
	}
}

func listCmd(use, short, path string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			clientGet(use, path+limitQuery(limit))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum items to return")
	return cmd
}

func MessagesCmd() *cobra.Command {
	return listCmd("messages", "List recent conversation threads", "/messages")
}

func ContactsCmd() *cobra.Command {
	return listCmd("contacts", "List contacts", "/contacts")
}

func CallsCmd() *cobra.Command {
	return listCmd("calls", "List recent call history", "/calls")
}

func VoicemailsCmd() *cobra.Command {
	return listCmd("voicemails", "List voicemails", "/voicemails")
}

func HistoryCmd() *cobra.Command {
	return listCmd("history", "Show the local command audit log", "/history")
}

func SearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts and conversations",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/search?q=" + url.QueryEscape(strings.Join(args, " "))
			if limit > 0 {
				path += fmt.Sprintf("&limit=%d", limit)
			}
			clientGet("search", path)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results to return")
	return cmd
}

func ThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme <name>",
		Short:     "Switch the UI theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: theme.Names(),
		Run: func(cmd *cobra.Command, args []string) {
			clientPost("theme", "/theme", map[string]string{"theme": args[0]})
		},
	}
}

func ReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the page back to its base URL",
		Run: func(cmd *cobra.Command, args []string) {
			clientPost("reload", "/reload", struct{}{})
		},
	}
}

func DumpDOMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-dom",
		Short: "Capture a diagnostic DOM snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			clientGet("dump-dom", "/dump-dom")
		},
	}
}
