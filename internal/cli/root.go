// Package cli is the ragctl command line client for the orchestrator api.
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	sessionId  string
	timeout    time.Duration
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Chat with your documents from the terminal",
	Long: `ragctl talks to a running DocRAG api. Upload PDF, DOCX or text files
into a session, then ask questions answered from those documents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost"+config.ServerListenAddr, "orchestrator base url")
	rootCmd.PersistentFlags().StringVarP(&sessionId, "session", "s", "", "session id, a new one is created when empty")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print raw JSON")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *Client {
	return NewClient(serverURL, timeout)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
