package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOracle talks to an external oracle service over JSON/HTTP. Transport
// and non-2xx failures surface as ErrUnavailable so callers can retry
// without having applied any partial merge.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type tickRequest struct {
	State State `json:"state"`
}

type respondRequest struct {
	State State `json:"state"`
	Input Input `json:"input"`
}

func (o *HTTPOracle) Tick(ctx context.Context, state State) (*StateDelta, error) {
	var delta StateDelta
	if err := o.post(ctx, "/v1/tick", tickRequest{State: state}, &delta); err != nil {
		return nil, err
	}
	return &delta, nil
}

func (o *HTTPOracle) Respond(ctx context.Context, state State, input Input) (*Response, error) {
	var resp Response
	if err := o.post(ctx, "/v1/respond", respondRequest{State: state, Input: input}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (o *HTTPOracle) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: oracle returned status %d", ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read oracle response: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode oracle response: %v", ErrUnavailable, err)
	}
	return nil
}
