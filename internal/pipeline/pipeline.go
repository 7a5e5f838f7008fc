package pipeline

import (
	"context"
	"time"

	"github.com/fed3c3sa/linkAIin/internal/agent"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

const (
	defaultMinPostLength    = 100
	defaultMaxPostLength    = 3000
	defaultMaxHashtags      = 5
	defaultStageTimeout     = 60 * time.Second
	composedTextPreviewSize = 300
)

// AgentRunner drives one agent invocation to completion.
type AgentRunner interface {
	Run(ctx context.Context, ag agent.Agent, payload string) (agent.Result, error)
}

type Config struct {
	Runner        AgentRunner
	ResearchAgent agent.Agent
	ComposeAgent  agent.Agent
	ImageAgent    agent.Agent
	// Images is the direct image-generation backend used by the fallback
	// levels that bypass the image agent.
	Images agent.ImageGenerator
	Logger logging.Logger

	MinPostLength    int
	DefaultMaxLength int
	MaxHashtags      int
	StageTimeout     time.Duration
}

// Pipeline owns the three remote stages (research, compose, image) for one
// request. It is cheap to construct because the LLM credential travels with
// the request.
type Pipeline struct {
	runner        AgentRunner
	researchAgent agent.Agent
	composeAgent  agent.Agent
	imageAgent    agent.Agent
	images        agent.ImageGenerator
	logger        logging.Logger

	minPostLength    int
	defaultMaxLength int
	maxHashtags      int
	stageTimeout     time.Duration
}

func New(cfg Config) *Pipeline {
	minLen := cfg.MinPostLength
	if minLen <= 0 {
		minLen = defaultMinPostLength
	}
	maxLen := cfg.DefaultMaxLength
	if maxLen <= 0 {
		maxLen = defaultMaxPostLength
	}
	maxTags := cfg.MaxHashtags
	if maxTags <= 0 {
		maxTags = defaultMaxHashtags
	}
	timeout := cfg.StageTimeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}
	return &Pipeline{
		runner:           cfg.Runner,
		researchAgent:    cfg.ResearchAgent,
		composeAgent:     cfg.ComposeAgent,
		imageAgent:       cfg.ImageAgent,
		images:           cfg.Images,
		logger:           cfg.Logger,
		minPostLength:    minLen,
		defaultMaxLength: maxLen,
		maxHashtags:      maxTags,
		stageTimeout:     timeout,
	}
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.stageTimeout)
}
