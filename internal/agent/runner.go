package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fed3c3sa/linkAIin/pkg/llm"
	"github.com/fed3c3sa/linkAIin/pkg/logging"
)

const defaultMaxToolRounds = 6

// Tool pairs a model-visible tool definition with its local executor.
type Tool struct {
	Definition llm.Tool
	Execute    func(ctx context.Context, arguments string) (string, error)
}

// Agent is a named instruction set plus the tools the model may call.
type Agent struct {
	Name         string
	Instructions string
	Tools        []Tool
}

// Result is the outcome of one agent invocation. Transcript holds every
// assistant and tool message produced during the run, in order, so callers
// can inspect intermediate output.
type Result struct {
	FinalOutput string
	Transcript  []llm.Message
}

// InvocationError reports a failed agent run: the model call errored or the
// agent finished without producing usable output.
type InvocationError struct {
	Agent string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent %q invocation failed: %v", e.Agent, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

type RunnerConfig struct {
	Provider  llm.Provider
	Logger    logging.Logger
	MaxRounds int
}

// Runner drives agents to completion. A single Run call is fully
// synchronous: the calling goroutine drains the model stream and executes
// tools itself, so there is never a second concurrent driver for the same
// logical invocation regardless of what scheduling context the caller
// already runs in.
type Runner struct {
	provider  llm.Provider
	logger    logging.Logger
	maxRounds int
}

func NewRunner(cfg RunnerConfig) *Runner {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	return &Runner{
		provider:  cfg.Provider,
		logger:    cfg.Logger,
		maxRounds: maxRounds,
	}
}

// Run invokes the agent with the payload and returns its final output.
func (r *Runner) Run(ctx context.Context, ag Agent, payload string) (Result, error) {
	if r == nil || r.provider == nil {
		return Result{}, &InvocationError{Agent: ag.Name, Err: errors.New("llm provider is required")}
	}

	toolDefs := make([]llm.Tool, 0, len(ag.Tools))
	toolsByName := make(map[string]Tool, len(ag.Tools))
	for _, tool := range ag.Tools {
		toolDefs = append(toolDefs, tool.Definition)
		toolsByName[tool.Definition.Name] = tool
	}

	messages := []llm.Message{
		{Role: "system", Content: ag.Instructions},
		{Role: "user", Content: payload},
	}

	var transcript []llm.Message
	finalOutput := ""

	for round := 0; round < r.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, &InvocationError{Agent: ag.Name, Err: err}
		}

		content, toolCalls, err := r.completeOnce(ctx, messages, toolDefs)
		if err != nil {
			return Result{}, &InvocationError{Agent: ag.Name, Err: err}
		}

		assistant := llm.Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
		messages = append(messages, assistant)
		transcript = append(transcript, assistant)
		if content != "" {
			finalOutput = content
		}

		if len(toolCalls) == 0 {
			break
		}

		for _, call := range toolCalls {
			output := r.executeTool(ctx, ag.Name, toolsByName, call)
			toolMsg := llm.Message{
				Role:       "tool",
				Content:    output,
				Name:       call.Name,
				ToolCallID: call.ID,
			}
			messages = append(messages, toolMsg)
			transcript = append(transcript, toolMsg)
		}
	}

	finalOutput = strings.TrimSpace(finalOutput)
	if finalOutput == "" {
		return Result{Transcript: transcript}, &InvocationError{Agent: ag.Name, Err: errors.New("empty final output")}
	}

	if r.logger != nil {
		r.logger.WithFields(logging.Fields{
			"agent":         ag.Name,
			"output_length": len(finalOutput),
		}).Debug("Agent run complete")
	}

	return Result{FinalOutput: finalOutput, Transcript: transcript}, nil
}

// completeOnce issues one model call and drains it to completion.
func (r *Runner) completeOnce(ctx context.Context, messages []llm.Message, tools []llm.Tool) (string, []llm.ToolCall, error) {
	stream, err := r.provider.Complete(ctx, messages, tools)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	var content strings.Builder
	var toolCalls []llm.ToolCall
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", nil, recvErr
		}
		content.WriteString(chunk.Content)
		if len(chunk.ToolCalls) > 0 {
			toolCalls = mergeToolCalls(toolCalls, chunk.ToolCalls)
		}
	}

	return strings.TrimSpace(content.String()), toolCalls, nil
}

func (r *Runner) executeTool(ctx context.Context, agentName string, tools map[string]Tool, call llm.ToolCall) string {
	tool, ok := tools[call.Name]
	if !ok {
		return fmt.Sprintf("Tool %s is not available", call.Name)
	}

	output, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).WithFields(logging.Fields{
				"agent": agentName,
				"tool":  call.Name,
			}).Warn("Tool execution failed")
		}
		return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
	}
	return output
}

// mergeToolCalls folds streamed tool-call deltas into complete calls. A
// delta carrying an ID starts a new call; subsequent deltas append argument
// fragments to the most recent one.
func mergeToolCalls(existing []llm.ToolCall, deltas []llm.ToolCall) []llm.ToolCall {
	for _, delta := range deltas {
		if delta.ID != "" {
			existing = append(existing, delta)
			continue
		}
		if len(existing) == 0 {
			existing = append(existing, delta)
			continue
		}
		last := &existing[len(existing)-1]
		if delta.Name != "" {
			last.Name = delta.Name
		}
		last.Arguments += delta.Arguments
	}
	return existing
}
