package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fed3c3sa/linkAIin/internal/agent"
	"github.com/fed3c3sa/linkAIin/pkg/llm"
)

// fakeRunner returns canned results keyed by agent name and records the
// payload each agent received.
type fakeRunner struct {
	results  map[string]agent.Result
	errs     map[string]error
	payloads map[string]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results:  make(map[string]agent.Result),
		errs:     make(map[string]error),
		payloads: make(map[string]string),
	}
}

func (r *fakeRunner) Run(_ context.Context, ag agent.Agent, payload string) (agent.Result, error) {
	r.payloads[ag.Name] = payload
	if err := r.errs[ag.Name]; err != nil {
		return r.results[ag.Name], err
	}
	return r.results[ag.Name], nil
}

type fakeImages struct {
	url     string
	err     error
	prompts []string
}

func (f *fakeImages) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newTestPipeline(runner AgentRunner, images agent.ImageGenerator) *Pipeline {
	return New(Config{
		Runner:        runner,
		ResearchAgent: agent.Agent{Name: "research"},
		ComposeAgent:  agent.Agent{Name: "compose"},
		ImageAgent:    agent.Agent{Name: "image"},
		Images:        images,
	})
}

func TestSearchParsesStructuredOutput(t *testing.T) {
	runner := newFakeRunner()
	runner.results["research"] = agent.Result{
		FinalOutput: `{"verified":[{"text":"fact one","url":"https://a.example"}],"summary":"short summary"}`,
	}
	p := newTestPipeline(runner, nil)

	bundle, err := p.Search(context.Background(), "golang", []string{"https://a.example"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(bundle.Verified) != 1 || bundle.Verified[0].Text != "fact one" {
		t.Errorf("unexpected verified facts: %+v", bundle.Verified)
	}
	if bundle.Summary != "short summary" {
		t.Errorf("summary = %q", bundle.Summary)
	}
	if !strings.Contains(runner.payloads["research"], `"links":["https://a.example"]`) {
		t.Errorf("payload missing links: %s", runner.payloads["research"])
	}
}

func TestSearchStripsCodeFence(t *testing.T) {
	runner := newFakeRunner()
	runner.results["research"] = agent.Result{
		FinalOutput: "```json\n{\"summary\":\"fenced\"}\n```",
	}
	p := newTestPipeline(runner, nil)

	bundle, err := p.Search(context.Background(), "golang", nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if bundle.Summary != "fenced" {
		t.Errorf("summary = %q, want fenced", bundle.Summary)
	}
}

func TestSearchFallsBackToRawSummary(t *testing.T) {
	runner := newFakeRunner()
	runner.results["research"] = agent.Result{FinalOutput: "Just prose, no JSON here."}
	p := newTestPipeline(runner, nil)

	bundle, err := p.Search(context.Background(), "golang", nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if bundle.Summary != "Just prose, no JSON here." {
		t.Errorf("summary = %q", bundle.Summary)
	}
}

func TestSearchNilLinksBecomeEmptyArray(t *testing.T) {
	runner := newFakeRunner()
	runner.results["research"] = agent.Result{FinalOutput: "{}"}
	p := newTestPipeline(runner, nil)

	if _, err := p.Search(context.Background(), "golang", nil); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !strings.Contains(runner.payloads["research"], `"links":[]`) {
		t.Errorf("payload should carry an empty links array: %s", runner.payloads["research"])
	}
}

func TestSearchWrapsRunnerError(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["research"] = errors.New("provider down")
	p := newTestPipeline(runner, nil)

	_, err := p.Search(context.Background(), "golang", nil)
	var searchErr *SearchError
	if !errors.As(err, &searchErr) {
		t.Fatalf("err = %v, want *SearchError", err)
	}
	if !strings.Contains(err.Error(), "failed to search and analyze web content") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestComposeClampsMaxLength(t *testing.T) {
	runner := newFakeRunner()
	runner.results["compose"] = agent.Result{FinalOutput: "A fine post."}
	p := newTestPipeline(runner, nil)

	cases := []struct {
		name string
		in   int
		want int
	}{
		{"below minimum", 10, 100},
		{"above maximum", 9000, 3000},
		{"zero", 0, 100},
		{"negative", -5, 100},
		{"in range", 1500, 1500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post, err := p.Compose(context.Background(), "golang", FactBundle{}, tc.in)
			if err != nil {
				t.Fatalf("Compose returned error: %v", err)
			}
			if post.MaxLength != tc.want {
				t.Errorf("MaxLength = %d, want %d", post.MaxLength, tc.want)
			}
		})
	}
}

func TestComposeTruncatesOverlongOutput(t *testing.T) {
	runner := newFakeRunner()
	runner.results["compose"] = agent.Result{FinalOutput: strings.Repeat("x", 500)}
	p := newTestPipeline(runner, nil)

	post, err := p.Compose(context.Background(), "golang", FactBundle{}, 120)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if len(post.Text) != 120 {
		t.Errorf("len(Text) = %d, want 120", len(post.Text))
	}
}

func TestComposePromptCarriesBundleSections(t *testing.T) {
	runner := newFakeRunner()
	runner.results["compose"] = agent.Result{FinalOutput: "post"}
	p := newTestPipeline(runner, nil)

	bundle := FactBundle{
		Verified:   []Fact{{Text: "v1"}},
		Additional: []Fact{{Text: "a1"}},
		Stats:      []Stat{{Text: "90% of gophers"}},
		Summary:    "overall picture",
	}
	if _, err := p.Compose(context.Background(), "golang", bundle, 500); err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	prompt := runner.payloads["compose"]
	for _, want := range []string{
		"Generate a LinkedIn post about golang within 500 characters.",
		"VERIFIED FACTS",
		"ADDITIONAL FACTS",
		"STATS",
		"overall picture",
		"Use maximum 5 hashtags",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposeRejectsEmptyOutput(t *testing.T) {
	runner := newFakeRunner()
	runner.results["compose"] = agent.Result{FinalOutput: "   \n"}
	p := newTestPipeline(runner, nil)

	_, err := p.Compose(context.Background(), "golang", FactBundle{}, 500)
	var composeErr *ComposeError
	if !errors.As(err, &composeErr) {
		t.Fatalf("err = %v, want *ComposeError", err)
	}
}

func TestGenerateImageUsesAgentURL(t *testing.T) {
	runner := newFakeRunner()
	runner.results["image"] = agent.Result{FinalOutput: "https://img.example/pic.jpg"}
	images := &fakeImages{url: "https://img.example/direct.jpg"}
	p := newTestPipeline(runner, images)

	url, err := p.GenerateImage(context.Background(), "golang", "post text")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if url != "https://img.example/pic.jpg" {
		t.Errorf("url = %q", url)
	}
	if len(images.prompts) != 0 {
		t.Errorf("direct backend should not be called, got prompts %v", images.prompts)
	}
}

func TestGenerateImageSalvagesPromptFromTranscript(t *testing.T) {
	runner := newFakeRunner()
	runner.results["image"] = agent.Result{
		FinalOutput: "I was unable to produce an image.",
		Transcript: []llm.Message{
			{Role: "user", Content: "ignored"},
			{Role: "assistant", Content: "A sleek modern office with engineers collaborating around holographic dashboards"},
		},
	}
	images := &fakeImages{url: "https://img.example/salvaged.jpg"}
	p := newTestPipeline(runner, images)

	url, err := p.GenerateImage(context.Background(), "golang", "post text")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if url != "https://img.example/salvaged.jpg" {
		t.Errorf("url = %q", url)
	}
	if len(images.prompts) != 1 || !strings.Contains(images.prompts[0], "holographic dashboards") {
		t.Errorf("prompts = %v, want the salvaged transcript line", images.prompts)
	}
}

func TestGenerateImageFallsBackToGenericPrompt(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["image"] = errors.New("agent blew up")
	images := &fakeImages{url: "https://img.example/generic.jpg"}
	p := newTestPipeline(runner, images)

	url, err := p.GenerateImage(context.Background(), "golang", "post text")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if url != "https://img.example/generic.jpg" {
		t.Errorf("url = %q", url)
	}
	last := images.prompts[len(images.prompts)-1]
	if last != "Professional business image related to golang" {
		t.Errorf("generic prompt = %q", last)
	}
}

func TestGenerateImageExhaustedReturnsTypedError(t *testing.T) {
	runner := newFakeRunner()
	runner.results["image"] = agent.Result{FinalOutput: "no url here"}
	images := &fakeImages{err: errors.New("image api down")}
	p := newTestPipeline(runner, images)

	_, err := p.GenerateImage(context.Background(), "golang", "post text")
	var imgErr *ImageGenerationError
	if !errors.As(err, &imgErr) {
		t.Fatalf("err = %v, want *ImageGenerationError", err)
	}
}

func TestGenerateImageSkipsToolEchoLines(t *testing.T) {
	runner := newFakeRunner()
	runner.results["image"] = agent.Result{
		FinalOutput: "failed",
		Transcript: []llm.Message{
			{Role: "assistant", Content: `{"prompt":"this json line is long enough to pass the length check"}`},
			{Role: "assistant", Content: "Calling generate_image with a prompt describing the desired scene"},
			{Role: "assistant", Content: "A wide shot of a bustling startup office bathed in morning light"},
		},
	}
	images := &fakeImages{url: "https://img.example/ok.jpg"}
	p := newTestPipeline(runner, images)

	if _, err := p.GenerateImage(context.Background(), "golang", "post"); err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if !strings.Contains(images.prompts[0], "bustling startup office") {
		t.Errorf("salvaged prompt = %q, should skip JSON and tool mentions", images.prompts[0])
	}
}

func TestGenerateImagePayloadTruncatesPostPreview(t *testing.T) {
	runner := newFakeRunner()
	runner.results["image"] = agent.Result{FinalOutput: "https://img.example/pic.jpg"}
	p := newTestPipeline(runner, nil)

	long := strings.Repeat("word ", 200)
	if _, err := p.GenerateImage(context.Background(), "golang", long); err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	payload := runner.payloads["image"]
	if strings.Contains(payload, long) {
		t.Error("payload should not carry the full post text")
	}
	if !strings.Contains(payload, "... (shortened for brevity)") {
		t.Error("payload should mark the preview as shortened")
	}
}
