package main

import (
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentforge/agentforge/internal/api"
	"github.com/agentforge/agentforge/pkg/events"
	"github.com/agentforge/agentforge/pkg/memory"
	"github.com/agentforge/agentforge/pkg/tools"
)

func handleServe(args []string) error {
	cfg, logger, _, err := loadConfig("serve", args, nil)
	if err != nil {
		return err
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key is not configured (set openai.api_key or OPENAI_API_KEY)")
	}

	llmConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		llmConfig.BaseURL = cfg.OpenAI.BaseURL
	}
	llm := openai.NewClientWithConfig(llmConfig)

	store, err := memory.NewStore(cfg.Memory.Path, time.Duration(cfg.Memory.HistoryTTL))
	if err != nil {
		return err
	}
	defer store.Close()

	var news tools.NewsSource
	if cfg.News.FeedURL != "" {
		news = tools.NewNewsClient(cfg.News.FeedURL)
	}
	var congress tools.CongressSource
	if cfg.Congress.APIKey != "" {
		congress = tools.NewCongressClient(cfg.Congress.BaseURL, cfg.Congress.APIKey)
	}

	bus := events.NewMemoryBus()
	server := api.NewServer(cfg, llm, store, news, congress, bus, logger)
	return server.Run(cfg.Server.Addr)
}
