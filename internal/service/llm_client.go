package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"surveybuddy/internal/config"
)

const streamDoneMarker = "[DONE]"

// ChatRequestMessage is one role-tagged message sent to the completion service
type ChatRequestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the chat completions request body
type completionRequest struct {
	Model    string               `json:"model"`
	Messages []ChatRequestMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// streamFrame is one decoded data: line of the completion stream
type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// LLMClient streams chat completions from the OpenRouter API
type LLMClient struct {
	config     *config.AIConfig
	httpClient *http.Client
}

// NewLLMClient creates a client with the default AI configuration
func NewLLMClient() *LLMClient {
	return NewLLMClientWithConfig(config.DefaultAIConfig())
}

// NewLLMClientWithConfig creates a client with custom configuration
func NewLLMClientWithConfig(cfg *config.AIConfig) *LLMClient {
	return &LLMClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// IsConfigured returns true if the API key is set
func (c *LLMClient) IsConfigured() bool {
	return c.config.IsEnabled()
}

// StreamChat sends the conversation with stream enabled and returns a channel
// of text deltas in arrival order. The error channel carries at most one
// fatal error: a non-success response or a transport failure. Individual
// malformed frames are skipped, never fatal. Both channels close when the
// stream ends.
func (c *LLMClient) StreamChat(ctx context.Context, messages []ChatRequestMessage) (<-chan string, <-chan error) {
	deltas := make(chan string, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(deltas)
		defer close(errc)

		reqBody := completionRequest{
			Model:    c.config.Model,
			Messages: messages,
			Stream:   true,
		}

		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			errc <- fmt.Errorf("failed to marshal request: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.CompletionsEndpoint(), bytes.NewReader(jsonBody))
		if err != nil {
			errc <- fmt.Errorf("failed to create request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		req.Header.Set("Accept", "text/event-stream")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[LLM Client] ERROR: request failed: %v", err)
			errc <- fmt.Errorf("completion request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			log.Printf("[LLM Client] ERROR: API returned %d: %s", resp.StatusCode, string(body))
			errc <- fmt.Errorf("completion API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			return
		}

		count := 0
		err = consumeStream(resp.Body, func(delta string) {
			count++
			select {
			case deltas <- delta:
			case <-ctx.Done():
			}
		})
		if err != nil {
			log.Printf("[LLM Client] ERROR: stream failed after %d deltas: %v", count, err)
			errc <- fmt.Errorf("completion stream failed: %w", err)
			return
		}
		log.Printf("[LLM Client] Stream completed: %d deltas in %v", count, time.Since(start))
	}()

	return deltas, errc
}

// consumeStream decodes a line-delimited event stream. The reader is drained
// chunk by chunk; a trailing partial line is carried over until the next chunk
// completes it, so deltas are reconstructed identically no matter where the
// network splits the bytes. A single malformed frame is skipped and the
// stream continues. The literal [DONE] payload ends the stream.
func consumeStream(r io.Reader, emit func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == streamDoneMarker {
			return nil
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			log.Printf("[LLM Client] Skipping malformed frame: %v", err)
			continue
		}
		if len(frame.Choices) > 0 && frame.Choices[0].Delta.Content != "" {
			emit(frame.Choices[0].Delta.Content)
		}
	}
	return scanner.Err()
}
