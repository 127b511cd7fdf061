package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const llmSystemPrompt = `You are the physiology engine of an EMS training simulator.
You receive the current patient state as JSON and either a time tick or a learner action.
Reply with ONLY a JSON object. For a tick: {"vitals": {...}, "patient": {...}} where every
key is optional and only changed fields are present. For a learner action:
{"narrative": "...", "outcome": "...", "effectiveness": 0.0-1.0, "delta": {"vitals": {...}, "patient": {...}}}.
Vitals keys: heart_rate, blood_pressure, respiratory_rate, oxygen_saturation, temperature,
glucose, etco2, gcs {eyes, verbal, motor}. Patient keys: consciousness, breathing,
circulation, pain. Keep changes physiologically plausible and gradual.`

// LLMOracle generates patient responses and state evolution with an
// OpenAI-compatible chat model. Only the structured JSON delta crosses the
// boundary; the engine never sees prompts or raw completions.
type LLMOracle struct {
	client *openai.Client
	model  string
}

// NewLLMOracle builds an oracle against api.openai.com or any compatible
// endpoint (set baseURL to override).
func NewLLMOracle(apiKey, baseURL, model string) (*LLMOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMOracle{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *LLMOracle) Tick(ctx context.Context, state State) (*StateDelta, error) {
	content, err := o.complete(ctx, state, "TICK: 30 simulated seconds pass. Return the state delta.")
	if err != nil {
		return nil, err
	}
	var delta StateDelta
	if err := json.Unmarshal(content, &delta); err != nil {
		return nil, fmt.Errorf("%w: decode tick delta: %v", ErrUnavailable, err)
	}
	return &delta, nil
}

func (o *LLMOracle) Respond(ctx context.Context, state State, input Input) (*Response, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode oracle input: %w", err)
	}
	content, err := o.complete(ctx, state, "ACTION: "+string(inputJSON))
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(content, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &resp, nil
}

func (o *LLMOracle) complete(ctx context.Context, state State, instruction string) ([]byte, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode oracle state: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "STATE: " + string(stateJSON) + "\n" + instruction},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return []byte(resp.Choices[0].Message.Content), nil
}
