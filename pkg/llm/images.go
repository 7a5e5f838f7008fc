package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultImageModel = "dall-e-3"

// ImageConfig holds settings for the OpenAI image generation API.
type ImageConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Size    string
	Quality string
}

// ImageClient calls the /v1/images/generations endpoint directly, bypassing
// the chat completion surface. It backs the image-generation tool and the
// direct fallback path when the image agent fails to produce a usable URL.
type ImageClient struct {
	client  *http.Client
	apiKey  string
	apiURL  string
	model   string
	size    string
	quality string
}

func NewImageClient(cfg ImageConfig) *ImageClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultOpenAIURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultImageModel
	}
	size := cfg.Size
	if size == "" {
		size = "1024x1024"
	}
	quality := cfg.Quality
	if quality == "" {
		quality = "standard"
	}
	return &ImageClient{
		client:  &http.Client{Timeout: 120 * time.Second},
		apiKey:  cfg.APIKey,
		apiURL:  apiURL,
		model:   model,
		size:    size,
		quality: quality,
	}
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate creates a single image from the prompt and returns its hosted URL.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("openai: image prompt is required")
	}

	payload, err := json.Marshal(imageRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       1,
		Size:    c.size,
		Quality: c.quality,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai: image generation status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("openai: decode image response: %w", err)
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].URL) == "" {
		return "", errors.New("openai: image generation returned no URL")
	}

	return decoded.Data[0].URL, nil
}
