package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hollowaylabs/libris/internal/ollama"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model about your library",
	Long: `Start an interactive chat session using the resolved serving
configuration.

Responses render as markdown. Press Tab to cycle through suggested
prompts, Enter to send, and Ctrl+C to leave. Type /help inside the
session for the available commands.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	env := resolveEnvironment(cfg)

	client := ollama.NewClientFromConfig(env)
	mustValidateOllama(context.Background(), client, true)

	session := ollama.NewSession(client, env.Chat.MaxHistory)

	p := tea.NewProgram(newChatModel(session, env, client.ModelName()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		exitWithError(ExitError, "running chat: %v", err)
	}

	return nil
}
