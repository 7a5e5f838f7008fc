package delivery

import (
	"context"

	"github.com/fed3c3sa/linkAIin/internal/pipeline"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

// Channel identifies the single outbound channel a request resolved to.
type Channel string

const (
	ChannelLinkedIn Channel = "linkedin"
	ChannelEmail    Channel = "email"
)

// Request is a single post-and-deliver job. Every credential it needs
// travels with it; the service holds no ambient account secrets.
//
// PostToLinkedIn is a tri-state flag: nil means "not specified", which is
// distinct from an explicit false. An unspecified flag defaults to LinkedIn
// delivery, but only an explicit true conflicts with SendEmail.
type Request struct {
	OpenAIAPIKey  string
	Topic         string
	Links         []string
	GenerateImage bool
	MaxLength     int

	PostToLinkedIn *bool
	SendEmail      bool

	LinkedInToken    string
	EmailAppPassword string
	DestinationEmail string
}

// Response reports a completed delivery. Exactly one of PostURL (LinkedIn)
// or EmailSent (email) is populated, matching the resolved channel.
type Response struct {
	Success          bool                      `json:"success"`
	Channel          Channel                   `json:"delivery_method"`
	PostURL          string                    `json:"post_url,omitempty"`
	EmailSent        bool                      `json:"email_sent,omitempty"`
	DestinationEmail string                    `json:"destination_email,omitempty"`
	Engagement       pipeline.EngagementReport `json:"engagement_analysis"`
	PostContent      string                    `json:"post_content"`
	ImageURL         string                    `json:"image_url,omitempty"`
}

// Stages is the content-generation pipeline for one request.
type Stages interface {
	Search(ctx context.Context, topic string, links []string) (pipeline.FactBundle, error)
	Compose(ctx context.Context, topic string, bundle pipeline.FactBundle, maxLength int) (pipeline.ComposedPost, error)
	GenerateImage(ctx context.Context, topic, composedText string) (string, error)
}

// StagesFactory builds a pipeline bound to the caller's LLM credential.
type StagesFactory func(openAIAPIKey string) Stages

// LinkedInPublisher publishes composed content as a LinkedIn share and
// returns the public post URL.
type LinkedInPublisher interface {
	Publish(ctx context.Context, accessToken, text, imageURL string) (string, error)
}

// EmailContent is everything the email channel needs for one message.
type EmailContent struct {
	AppPassword string
	Destination string
	Topic       string
	PostText    string
	Engagement  pipeline.EngagementReport
	ImageURL    string
}

// EmailPublisher sends composed content to the caller's own mailbox.
type EmailPublisher interface {
	Send(ctx context.Context, content EmailContent) error
}

// Router validates a request, runs the generation pipeline and hands the
// result to exactly one channel.
type Router struct {
	stages   StagesFactory
	linkedin LinkedInPublisher
	email    EmailPublisher
	logger   logging.Logger
}

func NewRouter(stages StagesFactory, linkedin LinkedInPublisher, email EmailPublisher, logger logging.Logger) *Router {
	return &Router{
		stages:   stages,
		linkedin: linkedin,
		email:    email,
		logger:   logger,
	}
}

// resolveChannel validates the request and picks its single channel.
// Validation order matters: common parameters first, then the channel
// conflict, then channel credentials.
func resolveChannel(req Request) (Channel, *ValidationError) {
	if req.OpenAIAPIKey == "" {
		return "", missingParameter("openai_api_key", "Missing OpenAI API key")
	}
	if req.Topic == "" {
		return "", missingParameter("topic", "Missing post topic")
	}

	postToLinkedIn := req.PostToLinkedIn == nil || *req.PostToLinkedIn
	if req.PostToLinkedIn != nil && *req.PostToLinkedIn && req.SendEmail {
		return "", &ValidationError{
			Kind:    KindConflictingChannels,
			Message: "Cannot both post to LinkedIn and send email - please choose one delivery method",
		}
	}
	if req.SendEmail {
		postToLinkedIn = false
	}
	// Explicit false on both flags falls back to the LinkedIn default so
	// exactly one channel is always active.
	if !postToLinkedIn && !req.SendEmail {
		postToLinkedIn = true
	}

	if postToLinkedIn {
		if req.LinkedInToken == "" {
			return "", missingCredential("linkedin_token", "Missing LinkedIn token for LinkedIn posting")
		}
		return ChannelLinkedIn, nil
	}

	if req.EmailAppPassword == "" {
		return "", missingCredential("email_app_password", "Missing email app password for email delivery")
	}
	if req.DestinationEmail == "" {
		return "", missingCredential("destination_email", "Missing destination email for email delivery")
	}
	return ChannelEmail, nil
}

// Deliver runs the full job: validate, research, compose, optionally
// generate an image, score locally, then publish through the resolved
// channel. Stage errors abort before any external delivery happens.
func (r *Router) Deliver(ctx context.Context, req Request) (Response, error) {
	channel, verr := resolveChannel(req)
	if verr != nil {
		validationFailuresTotal.WithLabelValues(string(verr.Kind)).Inc()
		return Response{}, verr
	}

	log := r.logger.WithFields(logging.Fields{
		"topic":   req.Topic,
		"channel": channel,
	})

	stages := r.stages(req.OpenAIAPIKey)

	log.Info("Searching for content")
	bundle, err := stages.Search(ctx, req.Topic, req.Links)
	if err != nil {
		deliveriesTotal.WithLabelValues(string(channel), "pipeline_error").Inc()
		return Response{}, err
	}

	log.Info("Generating post content")
	post, err := stages.Compose(ctx, req.Topic, bundle, req.MaxLength)
	if err != nil {
		deliveriesTotal.WithLabelValues(string(channel), "pipeline_error").Inc()
		return Response{}, err
	}

	var imageURL string
	if req.GenerateImage {
		log.Info("Generating image for post")
		imageURL, err = stages.GenerateImage(ctx, req.Topic, post.Text)
		if err != nil {
			deliveriesTotal.WithLabelValues(string(channel), "pipeline_error").Inc()
			return Response{}, err
		}
	}

	engagement := pipeline.AnalyzeEngagement(post.Text)

	resp := Response{
		Success:     true,
		Channel:     channel,
		Engagement:  engagement,
		PostContent: post.Text,
		ImageURL:    imageURL,
	}

	switch channel {
	case ChannelLinkedIn:
		log.Info("Posting content to LinkedIn")
		postURL, err := r.linkedin.Publish(ctx, req.LinkedInToken, post.Text, imageURL)
		if err != nil {
			deliveriesTotal.WithLabelValues(string(channel), "delivery_error").Inc()
			return Response{}, &ChannelDeliveryError{Channel: channel, Err: err}
		}
		resp.PostURL = postURL

	case ChannelEmail:
		log.WithField("destination", req.DestinationEmail).Info("Sending content via email")
		err := r.email.Send(ctx, EmailContent{
			AppPassword: req.EmailAppPassword,
			Destination: req.DestinationEmail,
			Topic:       req.Topic,
			PostText:    post.Text,
			Engagement:  engagement,
			ImageURL:    imageURL,
		})
		if err != nil {
			deliveriesTotal.WithLabelValues(string(channel), "delivery_error").Inc()
			return Response{}, &ChannelDeliveryError{Channel: channel, Err: err}
		}
		resp.EmailSent = true
		resp.DestinationEmail = req.DestinationEmail
	}

	deliveriesTotal.WithLabelValues(string(channel), "success").Inc()
	return resp, nil
}
