package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL   = "https://openrouter.ai/api/v1"
	DefaultModel     = "openai/gpt-4o"
	defaultMaxRounds = 12
)

var (
	ErrEmptyResponse = errors.New("model returned no choices")
	ErrTooManyRounds = errors.New("model kept requesting tools")
)

// Runner produces the agent's final text answer for one prompt.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// OpenAIRunner drives an OpenAI-compatible chat completions endpoint,
// executing tool calls until the model answers in text.
type OpenAIRunner struct {
	client    openai.Client
	model     string
	sources   []ToolSource
	maxRounds int
}

func NewOpenAIRunner(apiKey, baseURL, model string, sources ...ToolSource) *OpenAIRunner {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIRunner{
		client:    openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:     model,
		sources:   sources,
		maxRounds: defaultMaxRounds,
	}
}

func (r *OpenAIRunner) Run(ctx context.Context, prompt string) (string, error) {
	tools := map[string]Tool{}
	var defs []openai.ChatCompletionToolParam
	for _, src := range r.sources {
		ts, closeFn, err := src.Open(ctx)
		if err != nil {
			log.Printf("agent: tool source: %v", err)
			continue
		}
		defer func() {
			if err := closeFn(); err != nil {
				log.Printf("agent: close tools: %v", err)
			}
		}()
		for _, t := range ts {
			if _, dup := tools[t.Name]; dup {
				continue
			}
			tools[t.Name] = t
			defs = append(defs, openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  openai.FunctionParameters(t.Parameters),
				},
			})
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Tools:    defs,
	}
	for round := 0; round < r.maxRounds; round++ {
		resp, err := r.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			out := invoke(ctx, tools, call.Function.Name, call.Function.Arguments)
			params.Messages = append(params.Messages, openai.ToolMessage(out, call.ID))
		}
	}
	return "", ErrTooManyRounds
}

// invoke runs one tool call. Failures are reported back to the model as
// text so it can recover.
func invoke(ctx context.Context, tools map[string]Tool, name, rawArgs string) string {
	t, ok := tools[name]
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", name)
	}
	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return fmt.Sprintf("error: arguments are not a JSON object: %v", err)
		}
	}
	out, err := t.Invoke(ctx, args)
	if err != nil {
		log.Printf("agent: tool %s failed: %v", name, err)
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
