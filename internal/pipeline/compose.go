package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Compose turns the fact bundle into post text no longer than maxLength.
// An out-of-range maxLength is clamped silently rather than rejected.
func (p *Pipeline) Compose(ctx context.Context, topic string, bundle FactBundle, maxLength int) (ComposedPost, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	maxLength = p.clampLength(maxLength)
	prompt := p.buildComposePrompt(topic, bundle, maxLength)

	start := time.Now()
	result, err := p.runner.Run(ctx, p.composeAgent, prompt)
	stageDuration.WithLabelValues("compose").Observe(time.Since(start).Seconds())
	if err != nil {
		agentRunsTotal.WithLabelValues("compose", "error").Inc()
		return ComposedPost{}, &ComposeError{Err: err}
	}
	agentRunsTotal.WithLabelValues("compose", "success").Inc()

	text := strings.TrimSpace(result.FinalOutput)
	if text == "" {
		return ComposedPost{}, &ComposeError{Err: errors.New("agent returned empty post content")}
	}

	// Hard character slice when the agent overshoots. The contract
	// guarantees a length bound, not semantic completeness, so this may cut
	// mid-sentence.
	if len(text) > maxLength {
		if p.logger != nil {
			p.logger.WithField("length", len(text)).Debug("Composed post over limit, truncating")
		}
		text = text[:maxLength]
	}

	return ComposedPost{Text: text, MaxLength: maxLength}, nil
}

func (p *Pipeline) clampLength(maxLength int) int {
	if maxLength < p.minPostLength {
		return p.minPostLength
	}
	if maxLength > p.defaultMaxLength {
		return p.defaultMaxLength
	}
	return maxLength
}

func (p *Pipeline) buildComposePrompt(topic string, bundle FactBundle, maxLength int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a LinkedIn post about %s within %d characters.\n\n", topic, maxLength)
	b.WriteString("Use these search results:\n")

	if len(bundle.Verified) > 0 {
		b.WriteString("\nVERIFIED FACTS (from the specified links):\n")
		writeFacts(&b, bundle.Verified)
	}
	if len(bundle.Additional) > 0 {
		b.WriteString("\nADDITIONAL FACTS:\n")
		writeFacts(&b, bundle.Additional)
	}
	if len(bundle.Stats) > 0 {
		b.WriteString("\nSTATS:\n")
		for _, stat := range bundle.Stats {
			encoded, err := json.Marshal(stat)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", encoded)
		}
	}
	if bundle.Summary != "" {
		fmt.Fprintf(&b, "\nSUMMARY:\n%s\n", bundle.Summary)
	}

	fmt.Fprintf(&b, "\nUse maximum %d hashtags and follow LinkedIn best practices.", p.maxHashtags)
	return b.String()
}

func writeFacts(b *strings.Builder, facts []Fact) {
	for _, fact := range facts {
		encoded, err := json.Marshal(fact)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "- %s\n", encoded)
	}
}
