package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fed3c3sa/linkAIin/pkg/llm"
	"github.com/fed3c3sa/linkAIin/pkg/search"
)

const (
	WebSearchToolName     = "web_search"
	GenerateImageToolName = "generate_image"

	maxWebSearchResults = 10
)

type webSearchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// NewWebSearchTool binds a search provider as the research agent's
// web_search tool.
func NewWebSearchTool(provider search.Provider, defaultLimit int) Tool {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return Tool{
		Definition: llm.Tool{
			Name:        WebSearchToolName,
			Description: "Search the web for current information about a topic. Returns titles, URLs and snippets.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results",
					},
				},
				"required": []string{"query"},
			},
		},
		Execute: func(ctx context.Context, arguments string) (string, error) {
			if provider == nil {
				return "", errors.New("search provider is not configured")
			}

			var input webSearchInput
			if err := json.Unmarshal([]byte(arguments), &input); err != nil {
				return "", fmt.Errorf("parse web_search arguments: %w", err)
			}
			query := strings.TrimSpace(input.Query)
			if query == "" {
				return "", errors.New("search query is required")
			}

			limit := input.Limit
			if limit <= 0 {
				limit = defaultLimit
			}
			if limit > maxWebSearchResults {
				limit = maxWebSearchResults
			}

			results, err := provider.Search(ctx, query, search.Options{Limit: limit})
			if err != nil {
				return "", err
			}
			return formatSearchResults(query, results), nil
		},
	}
}

func formatSearchResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No web search results found for %q.", query)
	}

	var builder strings.Builder
	builder.WriteString("Web search results:\n")
	for i, result := range results {
		title := result.Title
		if title == "" {
			title = result.URL
		}
		fmt.Fprintf(&builder, "%d. %s\n", i+1, title)
		if result.URL != "" {
			fmt.Fprintf(&builder, "URL: %s\n", result.URL)
		}
		if result.Content != "" {
			fmt.Fprintf(&builder, "Snippet: %s\n", snippet(result.Content))
		}
		if i < len(results)-1 {
			builder.WriteString("\n")
		}
	}
	return strings.TrimSpace(builder.String())
}

const maxSnippetRuneCount = 320

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= maxSnippetRuneCount {
		return content
	}
	return string(runes[:maxSnippetRuneCount-1]) + "…"
}

type generateImageInput struct {
	Prompt string `json:"prompt"`
}

// ImageGenerator creates an image from a prompt and returns its URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerateImageTool binds an image generator as the image agent's
// generate_image tool.
func NewGenerateImageTool(generator ImageGenerator) Tool {
	return Tool{
		Definition: llm.Tool{
			Name:        GenerateImageToolName,
			Description: "Generate a business-appropriate image from a detailed prompt and return its URL.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "A detailed description of the desired image",
					},
				},
				"required": []string{"prompt"},
			},
		},
		Execute: func(ctx context.Context, arguments string) (string, error) {
			if generator == nil {
				return "", errors.New("image generator is not configured")
			}

			var input generateImageInput
			if err := json.Unmarshal([]byte(arguments), &input); err != nil {
				return "", fmt.Errorf("parse generate_image arguments: %w", err)
			}
			if strings.TrimSpace(input.Prompt) == "" {
				return "", errors.New("image prompt is required")
			}

			return generator.Generate(ctx, input.Prompt)
		},
	}
}
