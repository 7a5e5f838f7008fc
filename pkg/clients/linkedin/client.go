package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.linkedin.com/v2"

// APIError reports a non-2xx response from the LinkedIn API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("linkedin returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin wrapper around the LinkedIn UGC REST API, scoped to the
// operations the poster needs: identity lookup, image upload registration
// and share creation.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

type Option func(*Client)

func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// UserInfo is the authenticated member identity from GET /me.
type UserInfo struct {
	ID string `json:"id"`
}

// Me returns the authenticated user, validating the access token.
func (c *Client) Me(ctx context.Context) (UserInfo, error) {
	var info UserInfo
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/me", nil, &info); err != nil {
		return UserInfo{}, fmt.Errorf("get user info: %w", err)
	}
	if info.ID == "" {
		return UserInfo{}, fmt.Errorf("get user info: response missing member id")
	}
	return info, nil
}

// Upload holds the destination for image bytes and the asset URN to
// reference from a share.
type Upload struct {
	UploadURL string
	AssetURN  string
}

type registerUploadRequest struct {
	RegisterUploadRequest registerUploadBody `json:"registerUploadRequest"`
}

type registerUploadBody struct {
	Recipes              []string              `json:"recipes"`
	Owner                string                `json:"owner"`
	ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type registerUploadResponse struct {
	Value struct {
		UploadMechanism struct {
			MediaUploadHTTPRequest struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
		Asset string `json:"asset"`
	} `json:"value"`
}

// RegisterUpload registers a feed-share image upload for the member.
func (c *Client) RegisterUpload(ctx context.Context, memberID string) (Upload, error) {
	reqBody := registerUploadRequest{
		RegisterUploadRequest: registerUploadBody{
			Recipes: []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			Owner:   "urn:li:person:" + memberID,
			ServiceRelationships: []serviceRelationship{
				{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
			},
		},
	}

	var decoded registerUploadResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/assets?action=registerUpload", reqBody, &decoded); err != nil {
		return Upload{}, fmt.Errorf("register upload: %w", err)
	}

	upload := Upload{
		UploadURL: decoded.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL,
		AssetURN:  decoded.Value.Asset,
	}
	if upload.UploadURL == "" || upload.AssetURN == "" {
		return Upload{}, fmt.Errorf("register upload: response missing upload URL or asset")
	}
	return upload, nil
}

// UploadImage PUTs raw image bytes to the registered upload URL. The upload
// URL is pre-signed, so no Authorization header is sent.
func (c *Client) UploadImage(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// Post is a created UGC share.
type Post struct {
	ID string `json:"id"`
}

type ugcPostRequest struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent specificContent `json:"specificContent"`
	Visibility      visibility      `json:"visibility"`
}

type specificContent struct {
	ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
}

type shareContent struct {
	ShareCommentary    shareText    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type shareText struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status      string    `json:"status"`
	Description shareText `json:"description"`
	Media       string    `json:"media"`
}

type visibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// CreateTextPost publishes a text-only share for the member.
func (c *Client) CreateTextPost(ctx context.Context, memberID, text string) (Post, error) {
	reqBody := ugcPostRequest{
		Author:         "urn:li:person:" + memberID,
		LifecycleState: "PUBLISHED",
		SpecificContent: specificContent{
			ShareContent: shareContent{
				ShareCommentary:    shareText{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: visibility{MemberNetworkVisibility: "PUBLIC"},
	}

	var post Post
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/ugcPosts", reqBody, &post); err != nil {
		return Post{}, fmt.Errorf("create text post: %w", err)
	}
	return post, nil
}

// CreateImagePost publishes a share referencing an already uploaded asset.
func (c *Client) CreateImagePost(ctx context.Context, memberID, text, assetURN string) (Post, error) {
	reqBody := ugcPostRequest{
		Author:         "urn:li:person:" + memberID,
		LifecycleState: "PUBLISHED",
		SpecificContent: specificContent{
			ShareContent: shareContent{
				ShareCommentary:    shareText{Text: text},
				ShareMediaCategory: "IMAGE",
				Media: []shareMedia{
					{
						Status:      "READY",
						Description: shareText{Text: "Generated image for the post"},
						Media:       assetURN,
					},
				},
			},
		},
		Visibility: visibility{MemberNetworkVisibility: "PUBLIC"},
	}

	var post Post
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/ugcPosts", reqBody, &post); err != nil {
		return Post{}, fmt.Errorf("create image post: %w", err)
	}
	return post, nil
}

// PostURL returns the public feed URL for a created post, falling back to
// the feed root when the post id is missing.
func PostURL(post Post) string {
	if post.ID == "" {
		return "https://www.linkedin.com/feed"
	}
	return "https://www.linkedin.com/feed/update/" + post.ID
}

func (c *Client) doJSON(ctx context.Context, method, url string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
