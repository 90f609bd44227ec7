// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ChatMessage is a chat-completions message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamDelta is one fragment of a streamed completion. Fragments arrive
// incrementally from the network and are forwarded as received.
type StreamDelta struct {
	Content string
	Done    bool
	Err     error
}

// CompletionsClient calls the chat-completions API directly, bypassing the
// thread/run flow. This is the only path with genuine token-level
// streaming.
type CompletionsClient interface {
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, error)
	Stream(ctx context.Context, model string, messages []ChatMessage) (<-chan StreamDelta, error)
}

// OpenAICompletionsClient implements CompletionsClient using the official
// OpenAI Go SDK. Works against OpenAI and OpenAI-compatible backends.
type OpenAICompletionsClient struct {
	client openai.Client
}

// NewOpenAICompletionsClient creates a completions client. baseURL is
// optional and allows pointing at compatible backends.
func NewOpenAICompletionsClient(baseURL, apiKey string) *OpenAICompletionsClient {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Local backends accept any key.
		opts = append(opts, option.WithAPIKey("dummy"))
	}
	return &OpenAICompletionsClient{client: openai.NewClient(opts...)}
}

func convertChatMessages(messages []ChatMessage) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(msg.Content))
		case "user":
			result = append(result, openai.UserMessage(msg.Content))
		case "assistant":
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return result, nil
}

// Complete implements CompletionsClient.Complete
func (c *OpenAICompletionsClient) Complete(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	converted, err := convertChatMessages(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages: %w", err)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: converted,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// Stream implements CompletionsClient.Stream
func (c *OpenAICompletionsClient) Stream(ctx context.Context, model string, messages []ChatMessage) (<-chan StreamDelta, error) {
	converted, err := convertChatMessages(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: converted,
	})

	deltas := make(chan StreamDelta, 10)

	go func() {
		defer close(deltas)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			content := chunk.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			select {
			case deltas <- StreamDelta{Content: content}:
			case <-ctx.Done():
				return
			}
		}

		final := StreamDelta{Done: true}
		if err := stream.Err(); err != nil {
			final.Err = err
		}
		select {
		case deltas <- final:
		case <-ctx.Done():
		}
	}()

	return deltas, nil
}
