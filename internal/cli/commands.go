package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the api and its collaborators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		cmd.Printf("%s: %s\n", res.Service, res.Status)
		for name, state := range res.Collaborators {
			cmd.Printf("  %s: %s\n", name, state)
		}
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start a new chat session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().CreateSession(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		cmd.Println(res.SessionId)
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Upload a document into the session",
	Long: `Uploads a PDF, DOCX or text file. A session holds at most five documents;
run reset to free the slots.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Ingest(cmd.Context(), sessionId, args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		doc := res.Result.IngestResponse
		if doc == nil {
			return errors.New("no ingest result in reply")
		}
		cmd.Printf("Indexed %s as %s (%d chunks, %d documents in session)\n", doc.DocumentName, doc.DocumentId, doc.ChunkCount, doc.DocumentCount)
		cmd.Printf("session: %s\n", res.SessionId)
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the uploaded documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Ask(cmd.Context(), sessionId, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		answer := res.Result.RAGExternalResponse
		if answer == nil {
			return errors.New("no answer in reply")
		}
		cmd.Println(answer.Answer)
		if answer.UsedFallback {
			cmd.Println("(fallback answer)")
		}
		cmd.Printf("session: %s\n", res.SessionId)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the questions asked in the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionId == "" {
			return errors.New("--session is required")
		}
		res, err := newClient().History(cmd.Context(), sessionId)
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		if len(res.History) == 0 {
			cmd.Println("No questions yet.")
			return nil
		}
		for i, item := range res.History {
			cmd.Printf("[%d] Q: %s\n    A: %s\n", i+1, item.Query, item.Answer)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the index and the session's document count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Reset(cmd.Context(), sessionId)
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		cmd.Println("Index reset.")
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Unload the language model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Cleanup(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd, res)
		}
		cmd.Println("Model resources released.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd, sessionCmd, ingestCmd, askCmd, historyCmd, resetCmd, cleanupCmd)
}
