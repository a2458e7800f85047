package app

import (
	openai "github.com/sashabaranov/go-openai"
)

type Clients struct {
	// OpenAI serves remote transcription and embeddings.
	OpenAI *openai.Client
	// LLM serves question generation; with LLM_BASE_URL set it talks to
	// any OpenAI-compatible endpoint such as a local Ollama.
	LLM *openai.Client
}

func wireClients(cfg Config) Clients {
	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)

	llmClient := openaiClient
	if cfg.LLMBaseURL != "" {
		llmCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		llmCfg.BaseURL = cfg.LLMBaseURL
		llmClient = openai.NewClientWithConfig(llmCfg)
	}
	return Clients{
		OpenAI: openaiClient,
		LLM:    llmClient,
	}
}
