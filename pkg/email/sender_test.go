package email

import (
	"strings"
	"testing"
)

func TestBuildMessagePlainAndHTML(t *testing.T) {
	t.Parallel()

	body, err := buildMessage("me@example.com", Message{
		To:       "you@example.com",
		Subject:  "AI-Generated Post: Topic",
		TextBody: "plain content here",
		HTMLBody: "<html><body>rich content</body></html>",
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	raw := string(body)

	for _, want := range []string{
		"From: me@example.com",
		"To: you@example.com",
		"Subject: AI-Generated Post: Topic",
		"multipart/mixed",
		"multipart/alternative",
		"text/plain; charset=UTF-8",
		"text/html; charset=UTF-8",
		"plain content here",
		"rich content",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestBuildMessageWithImage(t *testing.T) {
	t.Parallel()

	body, err := buildMessage("me@example.com", Message{
		To:       "you@example.com",
		Subject:  "subject",
		TextBody: "text",
		Image:    &Attachment{Data: []byte{0xFF, 0xD8, 0xFF}},
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	raw := string(body)

	if !strings.Contains(raw, "Content-Disposition: attachment") {
		t.Fatalf("expected attachment part:\n%s", raw)
	}
	if !strings.Contains(raw, "image/jpeg") {
		t.Fatalf("expected default image content type:\n%s", raw)
	}
	if !strings.Contains(raw, "Content-Transfer-Encoding: base64") {
		t.Fatalf("expected base64 encoding header:\n%s", raw)
	}
}

func TestBuildMessageSanitizesHeaders(t *testing.T) {
	t.Parallel()

	body, err := buildMessage("me@example.com", Message{
		To:       "you@example.com",
		Subject:  "subject\r\nBcc: evil@example.com",
		TextBody: "text",
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	if strings.Contains(string(body), "Bcc:") {
		t.Fatalf("header injection not stripped:\n%s", body)
	}
	if !strings.Contains(string(body), "Subject: subject\r\n") {
		t.Fatalf("subject not truncated at the injected newline:\n%s", body)
	}
}
