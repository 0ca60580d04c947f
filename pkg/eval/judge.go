package eval

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const judgePrompt = `You are grading a portfolio assistant's answer.

User question:
%s

Assistant answer:
%s

Does the answer directly and helpfully address the question, without
fabricating data? Reply with exactly one word: PASS or FAIL, optionally
followed by a short reason.`

// JudgeCompleter is the slice of the OpenAI client the judge needs.
type JudgeCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Judge scores responses with an LLM for quality aspects the pattern checks
// cannot express.
type Judge struct {
	client JudgeCompleter
	model  string
}

// NewJudge creates a judge using the given client and model.
func NewJudge(client JudgeCompleter, model string) *Judge {
	return &Judge{client: client, model: model}
}

// Score asks the judge model whether output satisfies input. The verdict is
// the first word of the reply; anything other than PASS fails.
func (j *Judge) Score(ctx context.Context, input, output string) (bool, string, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(judgePrompt, input, output)},
		},
		Temperature: 0,
	})
	if err != nil {
		return false, "", fmt.Errorf("judge completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, "", fmt.Errorf("judge returned no choices")
	}

	verdict := strings.TrimSpace(resp.Choices[0].Message.Content)
	passed := strings.HasPrefix(strings.ToUpper(verdict), "PASS")
	return passed, "llm_judge: " + verdict, nil
}
