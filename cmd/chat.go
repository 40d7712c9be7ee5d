package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/chat"
)

const quitCommand = "/quit"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about one candidate or about the whole candidate pool",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		var session *chat.Session
		if id, _ := cmd.Flags().GetString("candidate"); id != "" {
			session = chat.NewCandidateSession(app.client, backend.CandidateID(id), app.chatOptions()...)
		} else {
			session = chat.NewHRSession(app.client, app.chatOptions()...)
		}
		defer session.Close()

		if err := chatLoop(cmd, session); err != nil {
			app.logger.Fatal("chat stopped", zap.Error(err))
		}
	},
}

// chatLoop reads lines until /quit, an interrupt or end of input.
func chatLoop(cmd *cobra.Command, session *chat.Session) error {
	out := cmd.OutOrStdout()
	for _, m := range session.History() {
		printMessage(out, m)
	}

	prompt := promptui.Prompt{Label: "You"}
	for {
		text, err := prompt.Run()
		if isPromptAbort(err) {
			return nil
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(text) == quitCommand {
			return nil
		}

		reply, ok := session.Send(cmd.Context(), text)
		if !ok {
			continue
		}
		printMessage(out, reply)

		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func printMessage(w io.Writer, m chat.Message) {
	name := "Assistant"
	if m.Sender == chat.RoleUser {
		name = "You"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Format("15:04"), name, m.Text)
}

func init() {
	chatCmd.Flags().String("candidate", "", "candidate id to chat about; without it the HR assistant answers about all candidates")

	rootCmd.AddCommand(chatCmd)
}
