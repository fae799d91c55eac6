package cli

import (
	"fmt"
	"os"

	"specter-vision/config"
	"specter-vision/gemini"
	"specter-vision/imaging"
	"specter-vision/llm"
	"specter-vision/prompt"
	"specter-vision/service"
	"specter-vision/stubllm"
	"specter-vision/version"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the specter command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "specter",
		Short: "Surface hidden attributes of an image with a multimodal model",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version.BuildVersion,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newAnalyzeCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// newProvider returns the model client handle for the configured provider.
func newProvider(cfg *config.Config) *llm.Provider {
	return llm.NewProvider(func() (llm.Client, error) {
		switch cfg.LLMProvider {
		case config.ProviderStub:
			return stubllm.NewClient(), nil
		case config.ProviderGemini:
			if cfg.GoogleAPIKey == "" {
				return nil, &config.ConfigurationError{Setting: "GOOGLE_API_KEY", Message: "required when LLM_PROVIDER=gemini"}
			}
			return gemini.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel), nil
		default:
			return nil, &config.ConfigurationError{Setting: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)}
		}
	})
}

// buildService validates cfg and wires the analysis service. The model
// client is constructed here so configuration problems stop startup.
func buildService(cfg *config.Config) (*service.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts, err := prompt.LoadBuilder(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	provider := newProvider(cfg)
	client, err := provider.Client()
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"provider": cfg.LLMProvider,
		"source":   client.SourceName(),
	}).Info("model client ready")

	return service.NewService(provider, prompts, imaging.NewResizer(cfg.MaxImageDimension)), nil
}
