package agent

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/agentforge/agentforge/pkg/memory"
	"github.com/agentforge/agentforge/pkg/tools"
)

// scriptedLLM replays a fixed sequence of responses.
type scriptedLLM struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (s *scriptedLLM) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return openai.ChatCompletionResponse{}, fmt.Errorf("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func toolCallResponse(id, name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{
					{ID: id, Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}},
				},
			}},
		},
	}
}

type echoTool struct {
	name   string
	output string
	err    error
	calls  int
}

func (t *echoTool) Name() string                { return t.name }
func (t *echoTool) Description() string         { return "test tool" }
func (t *echoTool) Parameters() map[string]any  { return map[string]any{"type": "object"} }
func (t *echoTool) Execute(context.Context, map[string]any) (string, error) {
	t.calls++
	return t.output, t.err
}

func testAgent(llm ChatCompleter) *Agent {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(llm, "gpt-4o-mini", nil, logger)
}

func testRegistry(t *testing.T, toolList ...tools.Tool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolList {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	return registry
}

func TestRunDirectAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []openai.ChatCompletionResponse{textResponse("Hello! How can I help?")}}

	result, err := testAgent(llm).Run(context.Background(), "hi", nil, testRegistry(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Text != "Hello! How can I help?" {
		t.Errorf("Text = %q", result.Text)
	}
	if len(result.ToolsUsed) != 0 {
		t.Errorf("ToolsUsed = %v, want none", result.ToolsUsed)
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
}

func TestRunWithToolCall(t *testing.T) {
	tool := &echoTool{name: "portfolio_analysis", output: "Total value: $45,678.90"}
	llm := &scriptedLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "portfolio_analysis", `{"range":"ytd"}`),
		textResponse("Your portfolio is worth $45,678.90."),
	}}

	result, err := testAgent(llm).Run(context.Background(), "how is my portfolio doing?", nil, testRegistry(t, tool))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tool.calls != 1 {
		t.Errorf("tool calls = %d, want 1", tool.calls)
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != "portfolio_analysis" {
		t.Errorf("ToolsUsed = %v", result.ToolsUsed)
	}
	if len(result.ToolOutputs) != 1 || result.ToolOutputs[0] != "Total value: $45,678.90" {
		t.Errorf("ToolOutputs = %v", result.ToolOutputs)
	}

	// The second request must carry the tool result back to the model.
	last := llm.requests[1].Messages[len(llm.requests[1].Messages)-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call-1" {
		t.Errorf("last message = %+v, want tool result for call-1", last)
	}
}

func TestRunToolFailureBecomesOutput(t *testing.T) {
	tool := &echoTool{name: "market_data", err: fmt.Errorf("symbol profile: backend returned 500")}
	llm := &scriptedLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "market_data", `{"symbol":"AAPL"}`),
		textResponse("I could not fetch market data right now."),
	}}

	result, err := testAgent(llm).Run(context.Background(), "price of AAPL?", nil, testRegistry(t, tool))
	if err != nil {
		t.Fatalf("Run() error = %v, tool failures should not abort the run", err)
	}
	if len(result.ToolOutputs) != 1 || !strings.HasPrefix(result.ToolOutputs[0], "Error:") {
		t.Errorf("ToolOutputs = %v, want error output", result.ToolOutputs)
	}
}

func TestRunUnknownTool(t *testing.T) {
	llm := &scriptedLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "time_travel", `{}`),
		textResponse("Sorry, I cannot do that."),
	}}

	result, err := testAgent(llm).Run(context.Background(), "go back in time", nil, testRegistry(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(result.ToolOutputs[0], "unknown tool") {
		t.Errorf("ToolOutputs[0] = %q", result.ToolOutputs[0])
	}
}

func TestRunIterationBound(t *testing.T) {
	tool := &echoTool{name: "market_data", output: "data"}
	var responses []openai.ChatCompletionResponse
	for i := 0; i < maxIterations+1; i++ {
		responses = append(responses, toolCallResponse(fmt.Sprintf("call-%d", i), "market_data", `{}`))
	}
	llm := &scriptedLLM{responses: responses}

	_, err := testAgent(llm).Run(context.Background(), "loop", nil, testRegistry(t, tool))
	if err == nil || !strings.Contains(err.Error(), "exceeded") {
		t.Errorf("Run() error = %v, want iteration bound error", err)
	}
}

func TestRunReplaysHistory(t *testing.T) {
	llm := &scriptedLLM{responses: []openai.ChatCompletionResponse{textResponse("As I said, EUR.")}}
	history := []memory.HistoryEntry{
		{Role: "user", Content: "set my currency to EUR"},
		{Role: "assistant", Content: "Done, your base currency is EUR."},
	}

	_, err := testAgent(llm).Run(context.Background(), "what currency did I pick?", history, testRegistry(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	msgs := llm.requests[0].Messages
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want system + 2 history + user", len(msgs))
	}
	if msgs[1].Content != "set my currency to EUR" || msgs[2].Role != openai.ChatMessageRoleAssistant {
		t.Errorf("history not replayed in order: %+v", msgs[1:3])
	}
}
