package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fed3c3sa/linkAIin/internal/pipeline"
	"github.com/fed3c3sa/linkAIin/pkg/email"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

// MailSender delivers one assembled message.
type MailSender interface {
	Send(ctx context.Context, msg email.Message) error
}

// MailSenderFactory builds a sender authenticated as the destination
// account. The caller mails the post to themselves, so sender and recipient
// are the same address.
type MailSenderFactory func(account, appPassword string) MailSender

// EmailAdapter renders composed posts into an HTML email and sends it to
// the caller's mailbox. Image handling degrades twice before giving up on
// the image: inline embed when the bytes download, a linked image tag when
// they don't. The email itself never fails over the image.
type EmailAdapter struct {
	newSender  MailSenderFactory
	httpClient *http.Client
	logger     logging.Logger
}

func NewEmailAdapter(newSender MailSenderFactory, logger logging.Logger) *EmailAdapter {
	return &EmailAdapter{
		newSender:  newSender,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *EmailAdapter) Send(ctx context.Context, content EmailContent) error {
	var imageData []byte
	if content.ImageURL != "" {
		data, err := a.downloadImage(ctx, content.ImageURL)
		if err != nil {
			a.logger.WithError(err).Warn("Failed to download image, embedding link instead")
		} else {
			imageData = data
		}
	}

	htmlBody, err := renderPostEmail(content, imageData)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	msg := email.Message{
		To:       content.Destination,
		Subject:  "AI-Generated Post: " + content.Topic,
		TextBody: buildPlainBody(content),
		HTMLBody: htmlBody,
	}
	if imageData != nil {
		msg.Image = &email.Attachment{
			Filename:    "image.jpg",
			ContentType: "image/jpeg",
			Data:        imageData,
		}
	}

	sender := a.newSender(content.Destination, content.AppPassword)
	return sender.Send(ctx, msg)
}

func (a *EmailAdapter) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
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

// buildPlainBody is the text/plain fallback part. It always carries the
// literal post text so the email is useful without an HTML renderer.
func buildPlainBody(content EmailContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI-Generated Post: %s\n\n", content.Topic)
	b.WriteString(content.PostText)
	b.WriteString("\n\n=== ENGAGEMENT ANALYSIS ===\n")
	fmt.Fprintf(&b, "Engagement Score: %.1f\n", content.Engagement.Score)
	for _, s := range content.Engagement.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	if len(content.Engagement.Hashtags) > 0 {
		fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(content.Engagement.Hashtags, " "))
	}
	if content.ImageURL != "" {
		fmt.Fprintf(&b, "\nImage URL: %s\n", content.ImageURL)
	} else {
		b.WriteString("\nNo image generated\n")
	}
	return b.String()
}

type postEmailData struct {
	Topic      string
	PostHTML   template.HTML
	Engagement []engagementRow
	// ImageSource is template.URL because the inline embed uses a data: URI,
	// which html/template's URL sanitizer would otherwise reject.
	ImageSource template.URL
	ImageLink   string
}

type engagementRow struct {
	Label string
	Items []string
	Value string
}

func renderPostEmail(content EmailContent, imageData []byte) (string, error) {
	data := postEmailData{
		Topic:      content.Topic,
		PostHTML:   formatPostHTML(content.PostText),
		Engagement: formatEngagementRows(content.Engagement),
	}

	if content.ImageURL != "" {
		if imageData != nil {
			data.ImageSource = template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData))
		} else {
			data.ImageSource = template.URL(content.ImageURL)
			data.ImageLink = content.ImageURL
		}
	}

	tpl, err := template.New("post_email").Parse(postEmailTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// formatPostHTML escapes the post text and preserves its line breaks.
func formatPostHTML(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func formatEngagementRows(report pipeline.EngagementReport) []engagementRow {
	titler := cases.Title(language.English)
	rows := []engagementRow{
		{Label: titler.String("engagement score"), Value: fmt.Sprintf("%.1f", report.Score)},
	}
	if len(report.Suggestions) > 0 {
		rows = append(rows, engagementRow{Label: titler.String("suggested improvements"), Items: report.Suggestions})
	}
	if len(report.Hashtags) > 0 {
		rows = append(rows, engagementRow{Label: titler.String("hashtag suggestions"), Items: report.Hashtags})
	}
	return rows
}

const postEmailTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>AI-Generated Post</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
<div style="max-width: 800px; margin: 0 auto; padding: 20px;">

<div style="background-color: #0077B5; color: white; padding: 15px; border-radius: 5px; margin-bottom: 20px;">
    <h2 style="margin: 0;">AI-Generated LinkedIn Post: {{.Topic}}</h2>
</div>

<div style="font-weight: bold; margin-top: 20px; margin-bottom: 10px; font-size: 18px;">Post Content</div>
<div style="background-color: #f9f9f9; border: 1px solid #ddd; border-radius: 5px; padding: 15px; margin-bottom: 20px;">
    {{.PostHTML}}
</div>

<div style="font-weight: bold; margin-top: 20px; margin-bottom: 10px; font-size: 18px;">Engagement Analysis</div>
<div style="background-color: #f0f0f0; border: 1px solid #ddd; border-radius: 5px; padding: 15px; margin-bottom: 20px;">
    {{range .Engagement}}
    <strong>{{.Label}}:</strong>
    {{if .Items}}<br>{{range .Items}}&bull; {{.}}<br>{{end}}{{else}} {{.Value}}{{end}}<br>
    {{end}}
</div>

{{if .ImageSource}}
<div style="margin: 20px 0;">
    {{if .ImageLink}}<a href="{{.ImageLink}}" target="_blank"><img src="{{.ImageSource}}" style="max-width: 100%; height: auto;" alt="Generated image for post"></a>
    {{else}}<img src="{{.ImageSource}}" style="max-width: 100%; height: auto;" alt="Generated image for post">{{end}}
</div>
{{end}}

<div style="font-style: italic; color: #666; margin-top: 20px; font-size: 0.9em;">
    * You can copy and paste this content directly to LinkedIn. The engagement analysis is for your reference only.
</div>

</div>
</body>
</html>`
