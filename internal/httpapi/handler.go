package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fed3c3sa/linkAIin/internal/delivery"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

// Deliverer runs one validated post-and-deliver job.
type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) (delivery.Response, error)
}

// Handler exposes the poster over HTTP.
type Handler struct {
	deliverer        Deliverer
	defaultMaxLength int
	logger           logging.Logger
}

func NewHandler(deliverer Deliverer, defaultMaxLength int, logger logging.Logger) *Handler {
	return &Handler{
		deliverer:        deliverer,
		defaultMaxLength: defaultMaxLength,
		logger:           logger,
	}
}

// RegisterRoutes mounts the poster endpoint. Non-POST methods on the route
// are answered with 405 rather than gin's default 404.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"error":   "Only POST requests are supported",
		})
	})

	router.POST("/post", h.handlePost)
}

// postRequest is the request envelope. MaxLength is a pointer so an absent
// field gets the configured default while an explicit low value is still
// passed through for clamping.
type postRequest struct {
	OpenAIAPIKey     string   `json:"openai_api_key"`
	Topic            string   `json:"topic"`
	Links            []string `json:"links"`
	GenerateImage    bool     `json:"generate_image"`
	MaxLength        *int     `json:"max_length"`
	PostToLinkedIn   *bool    `json:"post_to_linkedin"`
	SendEmail        bool     `json:"send_email"`
	LinkedInToken    string   `json:"linkedin_token"`
	EmailAppPassword string   `json:"email_app_password"`
	DestinationEmail string   `json:"destination_email"`
}

func (h *Handler) handlePost(c *gin.Context) {
	var body postRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Request body must contain valid JSON",
		})
		return
	}

	maxLength := h.defaultMaxLength
	if body.MaxLength != nil {
		maxLength = *body.MaxLength
	}

	req := delivery.Request{
		OpenAIAPIKey:     body.OpenAIAPIKey,
		Topic:            body.Topic,
		Links:            body.Links,
		GenerateImage:    body.GenerateImage,
		MaxLength:        maxLength,
		PostToLinkedIn:   body.PostToLinkedIn,
		SendEmail:        body.SendEmail,
		LinkedInToken:    body.LinkedInToken,
		EmailAppPassword: body.EmailAppPassword,
		DestinationEmail: body.DestinationEmail,
	}

	resp, err := h.deliverer.Deliver(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var verr *delivery.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		} else {
			h.logger.WithError(err).Error("Delivery failed")
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
