package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/agentforge/agentforge/pkg/events"
	"github.com/agentforge/agentforge/pkg/memory"
	"github.com/agentforge/agentforge/pkg/tools"
)

const systemPrompt = `You are a personal finance assistant for a portfolio tracking application.
You answer questions about the user's portfolio, holdings, transactions, dividends,
accounts, market data, and market news, using the tools provided. Ground every
number you state in tool output; never invent figures. If a question is outside
personal finance and portfolio management, politely decline and explain that you
can only help with portfolio-related questions. Ask for confirmation before
creating or deleting orders. Format tabular data as markdown tables.`

// maxIterations bounds the tool-calling loop so a confused model cannot
// spin forever.
const maxIterations = 8

// ChatCompleter is the slice of the OpenAI client the agent needs.
// Satisfied by *openai.Client; faked in tests.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Result is one completed agent run: the final text plus the tool trail the
// verification layer scores.
type Result struct {
	Text        string
	ToolsUsed   []string
	ToolOutputs []string
	Iterations  int
}

// Agent drives the model through a bounded tool-calling loop.
type Agent struct {
	llm   ChatCompleter
	model string
	bus   events.EventBus
	log   *logrus.Entry
}

// New creates an agent for the given model.
func New(llm ChatCompleter, model string, bus events.EventBus, logger *logrus.Logger) *Agent {
	return &Agent{
		llm:   llm,
		model: model,
		bus:   bus,
		log:   logger.WithField("component", "agent"),
	}
}

// Run answers one user message, calling tools from the registry as the model
// requests them. Prior conversation turns are replayed ahead of the message.
func (a *Agent) Run(ctx context.Context, message string, history []memory.HistoryEntry, registry *tools.Registry) (Result, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, entry := range history {
		role := openai.ChatMessageRoleUser
		if entry.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: entry.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	defs := toolDefinitions(registry)
	result := Result{}

	for iteration := 0; iteration < maxIterations; iteration++ {
		result.Iterations = iteration + 1

		resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return result, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return result, fmt.Errorf("chat completion returned no choices")
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			result.Text = choice.Content
			return result, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			output := a.executeCall(ctx, registry, call)
			result.ToolsUsed = append(result.ToolsUsed, call.Function.Name)
			result.ToolOutputs = append(result.ToolOutputs, output)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	return result, fmt.Errorf("tool loop exceeded %d iterations", maxIterations)
}

// executeCall runs one tool call. Failures become tool output rather than
// run errors, so the model can recover and the confidence scorer sees them.
func (a *Agent) executeCall(ctx context.Context, registry *tools.Registry, call openai.ToolCall) string {
	start := time.Now()
	log := a.log.WithField("tool", call.Function.Name)

	tool, err := registry.Resolve(call.Function.Name)
	if err != nil {
		log.Warnf("unknown tool requested: %v", err)
		a.publishToolEvent(events.EventToolError, call.Function.Name, start, err)
		return fmt.Sprintf("Error: unknown tool %q", call.Function.Name)
	}

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.Warnf("bad tool arguments: %v", err)
			a.publishToolEvent(events.EventToolError, call.Function.Name, start, err)
			return fmt.Sprintf("Error: invalid arguments for %q: %v", call.Function.Name, err)
		}
	}

	output, err := tool.Execute(ctx, args)
	if err != nil {
		log.Warnf("tool failed: %v", err)
		a.publishToolEvent(events.EventToolError, call.Function.Name, start, err)
		return fmt.Sprintf("Error: %v", err)
	}

	log.WithField("duration", time.Since(start)).Debug("tool call completed")
	a.publishToolEvent(events.EventToolCall, call.Function.Name, start, nil)
	return output
}

func (a *Agent) publishToolEvent(typ events.EventType, tool string, start time.Time, err error) {
	if a.bus == nil {
		return
	}
	data := map[string]any{"tool": tool}
	if err != nil {
		data["error"] = err.Error()
	}
	event := events.NewEvent(typ, data)
	event.Duration = time.Since(start)
	a.bus.Publish(event)
}

// toolDefinitions converts the registry into OpenAI function definitions.
func toolDefinitions(registry *tools.Registry) []openai.Tool {
	list := registry.List()
	defs := make([]openai.Tool, 0, len(list))
	for _, tool := range list {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}
