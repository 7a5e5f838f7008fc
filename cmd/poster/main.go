package main

import (
	"github.com/fed3c3sa/linkAIin/internal/agent"
	posterconfig "github.com/fed3c3sa/linkAIin/internal/config"
	"github.com/fed3c3sa/linkAIin/internal/delivery"
	"github.com/fed3c3sa/linkAIin/internal/httpapi"
	"github.com/fed3c3sa/linkAIin/internal/pipeline"
	"github.com/fed3c3sa/linkAIin/pkg/clients/linkedin"
	"github.com/fed3c3sa/linkAIin/pkg/config"
	"github.com/fed3c3sa/linkAIin/pkg/email"
	"github.com/fed3c3sa/linkAIin/pkg/llm"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
	"github.com/fed3c3sa/linkAIin/pkg/search"
	"github.com/fed3c3sa/linkAIin/pkg/server"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("poster")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Poster (AI LinkedIn Post Delivery API)")

	cfg := posterconfig.LoadConfig()

	// Web search is optional: without an API key the research agent runs
	// with no search tool and works from model knowledge alone.
	var searchProvider search.Provider
	if cfg.SearchAPIKey != "" {
		provider, err := search.NewTavilyProvider(cfg.SearchAPIKey, cfg.SearchAPIURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to create search provider - web search disabled")
		} else {
			searchProvider = provider
			logger.Info("Web search enabled")
		}
	} else {
		logger.Warn("SEARCH_API_KEY not set - web search disabled")
	}

	// Stage factory. Every request carries its own OpenAI key, so the LLM
	// provider, image client and agents are built per request.
	stages := func(openAIAPIKey string) delivery.Stages {
		provider := llm.NewOpenAIProvider(llm.Config{
			APIKey: openAIAPIKey,
			APIURL: cfg.LLMAPIURL,
			Model:  cfg.LLMModel,
		})
		images := llm.NewImageClient(llm.ImageConfig{
			APIKey:  openAIAPIKey,
			APIURL:  cfg.LLMAPIURL,
			Model:   cfg.ImageModel,
			Size:    cfg.ImageSize,
			Quality: cfg.ImageQuality,
		})
		runner := agent.NewRunner(agent.RunnerConfig{
			Provider:  provider,
			Logger:    logger,
			MaxRounds: cfg.MaxToolRounds,
		})

		searchTool := agent.NewWebSearchTool(searchProvider, cfg.SearchLimit)
		return pipeline.New(pipeline.Config{
			Runner:           runner,
			ResearchAgent:    agent.NewResearchAgent(searchTool, searchProvider != nil),
			ComposeAgent:     agent.NewComposeAgent(),
			ImageAgent:       agent.NewImageAgent(agent.NewGenerateImageTool(images)),
			Images:           images,
			Logger:           logger,
			MinPostLength:    cfg.MinPostLength,
			DefaultMaxLength: cfg.DefaultMaxLength,
			MaxHashtags:      cfg.MaxHashtags,
			StageTimeout:     cfg.StageTimeout,
		})
	}

	linkedinAdapter := delivery.NewLinkedInAdapter(func(accessToken string) delivery.LinkedInAPI {
		return linkedin.NewClient(accessToken)
	}, logger)

	emailAdapter := delivery.NewEmailAdapter(func(account, appPassword string) delivery.MailSender {
		return email.NewSender(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     account,
			Password: appPassword,
			From:     account,
		})
	}, logger)

	router := delivery.NewRouter(stages, linkedinAdapter, emailAdapter, logger)

	engine := server.SetupRouter(logger, "poster")
	httpapi.NewHandler(router, cfg.DefaultMaxLength, logger).RegisterRoutes(engine)

	srvConfig := server.DefaultConfig("poster", cfg.Port)
	if err := server.Start(srvConfig, engine, logger); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
