package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fed3c3sa/linkAIin/pkg/llm"
)

const minSalvagedPromptLength = 40

// GenerateImage produces a hosted image URL for the post. Acquisition is an
// ordered fallback chain; each level runs only when the previous one yielded
// no valid URL:
//
//  1. the image agent's own final output
//  2. the direct image API with a prompt salvaged from the agent transcript
//  3. the direct image API with a generic prompt built from the topic
//
// The first level to yield an "http..." URL wins. When all levels fail the
// stage returns ImageGenerationError; a non-URL value is never returned as
// success.
func (p *Pipeline) GenerateImage(ctx context.Context, topic, composedText string) (string, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		stageDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	}()

	payload := buildImagePayload(topic, composedText)
	result, runErr := p.runner.Run(ctx, p.imageAgent, payload)
	if runErr != nil {
		agentRunsTotal.WithLabelValues("image", "error").Inc()
	} else {
		agentRunsTotal.WithLabelValues("image", "success").Inc()
	}

	attempts := []struct {
		level string
		run   func(ctx context.Context) (string, error)
	}{
		{
			level: "agent",
			run: func(ctx context.Context) (string, error) {
				if runErr != nil {
					return "", runErr
				}
				return result.FinalOutput, nil
			},
		},
		{
			level: "salvaged_prompt",
			run: func(ctx context.Context) (string, error) {
				prompt := salvagePrompt(result.Transcript)
				if prompt == "" {
					return "", errors.New("no salvageable prompt in agent transcript")
				}
				if p.images == nil {
					return "", errors.New("image backend is not configured")
				}
				return p.images.Generate(ctx, prompt)
			},
		},
		{
			level: "generic_prompt",
			run: func(ctx context.Context) (string, error) {
				if p.images == nil {
					return "", errors.New("image backend is not configured")
				}
				return p.images.Generate(ctx, "Professional business image related to "+topic)
			},
		},
	}

	var lastErr error
	for _, attempt := range attempts {
		url, err := attempt.run(ctx)
		if err == nil && strings.HasPrefix(url, "http") {
			imageFallbacksTotal.WithLabelValues(attempt.level).Inc()
			if p.logger != nil {
				p.logger.WithField("level", attempt.level).Debug("Image acquired")
			}
			return url, nil
		}
		if err == nil {
			err = fmt.Errorf("result %q is not a URL", truncateRunes(url, 80))
		}
		lastErr = err
		if p.logger != nil {
			p.logger.WithError(err).WithField("level", attempt.level).Warn("Image attempt failed, falling back")
		}
	}

	imageFallbacksTotal.WithLabelValues("exhausted").Inc()
	return "", &ImageGenerationError{Err: lastErr}
}

func buildImagePayload(topic, composedText string) string {
	preview := truncateRunes(composedText, composedTextPreviewSize)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed prompt for a professional LinkedIn image about %s.\n\n", topic)
	fmt.Fprintf(&b, "The post content is:\n%s... (shortened for brevity)\n\n", preview)
	b.WriteString("Create a detailed, specific prompt designed to produce a visually appealing, business-appropriate image.\n")
	b.WriteString("Then call the generate_image tool with your prompt and return the image URL from the tool.")
	return b.String()
}

// salvagePrompt scans intermediate agent messages for a line long enough to
// be a usable image prompt, skipping anything that looks like a tool-call
// echo.
func salvagePrompt(transcript []llm.Message) string {
	for _, msg := range transcript {
		if msg.Role != "assistant" {
			continue
		}
		for _, line := range strings.Split(msg.Content, "\n") {
			line = strings.TrimSpace(line)
			if len(line) <= minSalvagedPromptLength {
				continue
			}
			if looksLikeToolEcho(line) {
				continue
			}
			return line
		}
	}
	return ""
}

func looksLikeToolEcho(line string) bool {
	if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
		return true
	}
	if strings.HasPrefix(line, "Tool ") {
		return true
	}
	lower := strings.ToLower(line)
	return strings.Contains(lower, "generate_image")
}

func truncateRunes(input string, limit int) string {
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
