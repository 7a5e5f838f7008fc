package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

type researchPayload struct {
	Topic string   `json:"topic"`
	Links []string `json:"links"`
}

// Search runs the research agent for the topic and returns a fact bundle.
// Links, when present, are passed through so the agent can separate
// verified findings from open-search ones.
func (p *Pipeline) Search(ctx context.Context, topic string, links []string) (FactBundle, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	if links == nil {
		links = []string{}
	}
	payload, err := json.Marshal(researchPayload{Topic: topic, Links: links})
	if err != nil {
		return FactBundle{}, &SearchError{Err: err}
	}

	start := time.Now()
	result, err := p.runner.Run(ctx, p.researchAgent, string(payload))
	stageDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		agentRunsTotal.WithLabelValues("research", "error").Inc()
		return FactBundle{}, &SearchError{Err: err}
	}
	agentRunsTotal.WithLabelValues("research", "success").Inc()

	bundle := parseFactBundle(result.FinalOutput)
	if p.logger != nil {
		p.logger.WithField("topic", topic).Debug("Research stage complete")
	}
	return bundle, nil
}

// parseFactBundle decodes the agent's final output leniently: structured
// JSON when the agent followed instructions, otherwise the raw text becomes
// the bundle summary.
func parseFactBundle(output string) FactBundle {
	raw := stripCodeFence(output)

	var bundle FactBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err == nil {
		if bundle.Summary != "" || len(bundle.Verified) > 0 || len(bundle.Additional) > 0 || len(bundle.Stats) > 0 {
			return bundle
		}
	}
	return FactBundle{Summary: strings.TrimSpace(output)}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
