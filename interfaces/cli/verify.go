package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
)

// newVerifyCmd creates the connectivity check command.
func (a *App) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check provider connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			failures := 0

			lmstudio := model.NewLMStudioProvider(model.ProviderConfig{
				BaseURL:   cfg.LMStudio.BaseURL,
				APIKey:    cfg.LMStudio.APIKey,
				Model:     cfg.Orchestrator.Model,
				MaxTokens: 8,
			})
			if _, err := lmstudio.Complete(cmd.Context(), model.CompletionRequest{
				Model:    cfg.Orchestrator.Model,
				Messages: []model.Message{model.UserMessage("ping")},
			}); err != nil {
				failures++
				fmt.Fprintf(a.stdout, "  FAIL lm_studio (%s): %v\n", cfg.LMStudio.BaseURL, err)
			} else {
				fmt.Fprintf(a.stdout, "  OK   lm_studio (%s)\n", cfg.LMStudio.BaseURL)
			}

			if cfg.Models.GeminiAPIKey == "" {
				fmt.Fprintln(a.stdout, "  SKIP gemini (no API key configured)")
			} else {
				gemini := model.NewGeminiProvider(model.GeminiConfig{
					APIKey:         cfg.Models.GeminiAPIKey,
					Model:          cfg.Models.GeminiModel,
					EmbeddingModel: cfg.VectorStore.EmbeddingModel,
				})
				if _, err := gemini.EmbedQuery(cmd.Context(), "ping"); err != nil {
					failures++
					fmt.Fprintf(a.stdout, "  FAIL gemini: %v\n", err)
				} else {
					fmt.Fprintln(a.stdout, "  OK   gemini")
				}
			}

			if cfg.BraveSearch.APIKey == "" {
				fmt.Fprintln(a.stdout, "  SKIP brave_search (no API key configured)")
			} else {
				fmt.Fprintln(a.stdout, "  OK   brave_search (key configured)")
			}

			if failures > 0 {
				return fmt.Errorf("%d provider check(s) failed", failures)
			}
			return nil
		},
	}
}
