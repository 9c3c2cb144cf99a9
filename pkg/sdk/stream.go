package beans

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BatchFunc receives one streamed batch. final is true exactly once, on the
// terminal emission carrying the complete result set. Returning an error
// stops consumption.
type BatchFunc func(set ResultSet, final bool) error

// SimilaritySearchStream runs a similarity search against the streaming
// endpoint and invokes fn per emitted batch.
func (c *Client) SimilaritySearchStream(ctx context.Context, q SimilarityQuery, fn BatchFunc) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "similarity_search",
		Params:  q,
	})
	if err != nil {
		return fmt.Errorf("marshal stream request: %w", err)
	}

	resp, err := c.post(ctx, "/rpc/stream", body)
	if err != nil {
		return fmt.Errorf("similarity_search stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Pre-stream failures come back as a plain JSON-RPC body.
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		var envelope rpcResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("stream rejected (status %d): %w", resp.StatusCode, err)
		}
		if envelope.Error != nil {
			return fmt.Errorf("similarity_search stream: %w", envelope.Error)
		}
		return fmt.Errorf("stream rejected with status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if event == "" {
				continue
			}
			done, err := c.dispatchEvent(event, data, fn)
			if err != nil || done {
				return err
			}
			event, data = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream ended without a complete event")
}

// dispatchEvent handles one parsed SSE event. done is true after the
// terminal complete event.
func (c *Client) dispatchEvent(event, data string, fn BatchFunc) (bool, error) {
	var envelope rpcResponse
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return false, fmt.Errorf("decode %s event: %w", event, err)
	}

	switch event {
	case "batch", "complete":
		if envelope.Error != nil {
			return false, envelope.Error
		}
		var set ResultSet
		if err := json.Unmarshal(envelope.Result, &set); err != nil {
			return false, fmt.Errorf("decode %s result: %w", event, err)
		}
		if err := fn(set, event == "complete"); err != nil {
			return false, err
		}
		return event == "complete", nil
	case "error":
		if envelope.Error != nil {
			return false, envelope.Error
		}
		return false, fmt.Errorf("stream error event without error body")
	default:
		// Unknown event names are skipped for forward compatibility.
		return false, nil
	}
}
