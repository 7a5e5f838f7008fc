package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fed3c3sa/linkAIin/internal/delivery"
	"github.com/fed3c3sa/linkAIin/internal/pipeline"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

type fakeDeliverer struct {
	resp delivery.Response
	err  error
	got  delivery.Request
}

func (f *fakeDeliverer) Deliver(_ context.Context, req delivery.Request) (delivery.Response, error) {
	f.got = req
	if f.err != nil {
		return delivery.Response{}, f.err
	}
	return f.resp, nil
}

func newTestServer(deliverer Deliverer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logging.NewLogger()
	logger.SetOutput(io.Discard)

	router := gin.New()
	NewHandler(deliverer, 3000, logger).RegisterRoutes(router)
	return router
}

func doPost(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlePostSuccess(t *testing.T) {
	deliverer := &fakeDeliverer{
		resp: delivery.Response{
			Success:     true,
			Channel:     delivery.ChannelLinkedIn,
			PostURL:     "https://www.linkedin.com/feed/update/urn:li:share:1",
			PostContent: "the post",
			Engagement: pipeline.EngagementReport{
				Score:    2,
				Hashtags: []string{"#ai"},
			},
		},
	}
	router := newTestServer(deliverer)

	w := doPost(router, `{
		"openai_api_key": "sk-test",
		"topic": "artificial intelligence",
		"linkedin_token": "li-token"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v", resp["success"])
	}
	if resp["delivery_method"] != "linkedin" {
		t.Errorf("delivery_method = %v", resp["delivery_method"])
	}
	if resp["post_url"] != deliverer.resp.PostURL {
		t.Errorf("post_url = %v", resp["post_url"])
	}
	if _, ok := resp["engagement_analysis"]; !ok {
		t.Error("engagement_analysis missing from response")
	}
	if deliverer.got.MaxLength != 3000 {
		t.Errorf("default MaxLength = %d, want 3000", deliverer.got.MaxLength)
	}
}

func TestHandlePostExplicitMaxLength(t *testing.T) {
	deliverer := &fakeDeliverer{resp: delivery.Response{Success: true}}
	router := newTestServer(deliverer)

	w := doPost(router, `{"openai_api_key":"k","topic":"t","linkedin_token":"l","max_length":150}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if deliverer.got.MaxLength != 150 {
		t.Errorf("MaxLength = %d, want 150", deliverer.got.MaxLength)
	}
}

func TestHandlePostTriStateChannelFlag(t *testing.T) {
	deliverer := &fakeDeliverer{resp: delivery.Response{Success: true}}
	router := newTestServer(deliverer)

	doPost(router, `{"openai_api_key":"k","topic":"t","linkedin_token":"l"}`)
	if deliverer.got.PostToLinkedIn != nil {
		t.Error("absent post_to_linkedin should stay nil")
	}

	doPost(router, `{"openai_api_key":"k","topic":"t","linkedin_token":"l","post_to_linkedin":false}`)
	if deliverer.got.PostToLinkedIn == nil || *deliverer.got.PostToLinkedIn {
		t.Error("explicit false should arrive as a non-nil false")
	}
}

func TestHandlePostInvalidJSON(t *testing.T) {
	router := newTestServer(&fakeDeliverer{})

	w := doPost(router, "not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Request body must contain valid JSON") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandlePostValidationErrorMapsTo400(t *testing.T) {
	deliverer := &fakeDeliverer{
		err: &delivery.ValidationError{
			Kind:    delivery.KindMissingParameter,
			Field:   "topic",
			Message: "Missing post topic",
		},
	}
	router := newTestServer(deliverer)

	w := doPost(router, `{"openai_api_key":"k"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Missing post topic") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandlePostPipelineErrorMapsTo500(t *testing.T) {
	deliverer := &fakeDeliverer{
		err: &pipeline.ComposeError{Err: errors.New("model unavailable")},
	}
	router := newTestServer(deliverer)

	w := doPost(router, `{"openai_api_key":"k","topic":"t","linkedin_token":"l"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to generate post content") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandlePostDeliveryErrorMapsTo500(t *testing.T) {
	deliverer := &fakeDeliverer{
		err: &delivery.ChannelDeliveryError{
			Channel: delivery.ChannelEmail,
			Err:     errors.New("auth failed"),
		},
	}
	router := newTestServer(deliverer)

	w := doPost(router, `{"openai_api_key":"k","topic":"t","send_email":true,"email_app_password":"p","destination_email":"me@example.com"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to send email") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandlePostMethodNotAllowed(t *testing.T) {
	router := newTestServer(&fakeDeliverer{})

	req := httptest.NewRequest(http.MethodGet, "/post", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Only POST requests are supported") {
		t.Errorf("body = %s", w.Body.String())
	}
}
