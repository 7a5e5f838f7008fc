package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fed3c3sa/linkAIin/pkg/clients/linkedin"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

// LinkedInAPI is the slice of the LinkedIn client the adapter uses.
type LinkedInAPI interface {
	Me(ctx context.Context) (linkedin.UserInfo, error)
	RegisterUpload(ctx context.Context, memberID string) (linkedin.Upload, error)
	UploadImage(ctx context.Context, uploadURL string, data []byte) error
	CreateTextPost(ctx context.Context, memberID, text string) (linkedin.Post, error)
	CreateImagePost(ctx context.Context, memberID, text, assetURN string) (linkedin.Post, error)
}

// LinkedInClientFactory builds an API client bound to a caller's token.
type LinkedInClientFactory func(accessToken string) LinkedInAPI

// LinkedInAdapter publishes composed posts as UGC shares. The image path
// degrades: any failure while downloading, registering or uploading the
// image demotes the share to text-only rather than failing the delivery.
type LinkedInAdapter struct {
	newClient  LinkedInClientFactory
	httpClient *http.Client
	logger     logging.Logger
}

func NewLinkedInAdapter(newClient LinkedInClientFactory, logger logging.Logger) *LinkedInAdapter {
	return &LinkedInAdapter{
		newClient:  newClient,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Publish creates a share for the token's member and returns its public
// URL. An invalid token fails the delivery; image problems do not.
func (a *LinkedInAdapter) Publish(ctx context.Context, accessToken, text, imageURL string) (string, error) {
	client := a.newClient(accessToken)

	user, err := client.Me(ctx)
	if err != nil {
		return "", err
	}

	var post linkedin.Post
	if imageURL != "" {
		post, err = a.createImagePost(ctx, client, user.ID, text, imageURL)
	} else {
		post, err = client.CreateTextPost(ctx, user.ID, text)
	}
	if err != nil {
		return "", err
	}

	return linkedin.PostURL(post), nil
}

// createImagePost runs the three-step image share flow, falling back to a
// text-only share when any step fails.
func (a *LinkedInAdapter) createImagePost(ctx context.Context, client LinkedInAPI, memberID, text, imageURL string) (linkedin.Post, error) {
	data, err := a.downloadImage(ctx, imageURL)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to download image, posting text only")
		return client.CreateTextPost(ctx, memberID, text)
	}

	upload, err := client.RegisterUpload(ctx, memberID)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to register image upload, posting text only")
		return client.CreateTextPost(ctx, memberID, text)
	}

	if err := client.UploadImage(ctx, upload.UploadURL, data); err != nil {
		a.logger.WithError(err).Warn("Failed to upload image, posting text only")
		return client.CreateTextPost(ctx, memberID, text)
	}

	post, err := client.CreateImagePost(ctx, memberID, text, upload.AssetURN)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to create image post, posting text only")
		return client.CreateTextPost(ctx, memberID, text)
	}
	return post, nil
}

func (a *LinkedInAdapter) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download image: empty body")
	}
	return data, nil
}
