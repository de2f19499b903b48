// Package predictor talks to the remote forecasting service.
package predictor

import (
	"context"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/service"
	xhttp "StockDash/pkg/http"
)

const DefaultPath = "/predict"

type predictRequest struct {
	Stock string `json:"stock"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type predictResponse struct {
	Predictions *[]predictionRecord `json:"predictions"`
}

type predictionRecord struct {
	Date           *string  `json:"date"`
	PredictedClose *float64 `json:"predicted_close"`
}

// Client implements service.Predictor over HTTP. It makes exactly one call per
// Predict and never retries.
type Client struct {
	base *httpBase
	path string
}

var _ service.Predictor = (*Client)(nil)

// ClientOption configures Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	path string
	http []xhttp.ClientOption
}

// WithPath overrides the endpoint path (default /predict).
func WithPath(path string) ClientOption {
	return func(o *clientOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithHTTPOptions passes options through to the underlying HTTP client.
func WithHTTPOptions(opts ...xhttp.ClientOption) ClientOption {
	return func(o *clientOptions) {
		o.http = append(o.http, opts...)
	}
}

// NewClient builds a client for the service at baseURL. timeout bounds every call.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	o := &clientOptions{path: DefaultPath}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		base: newHTTPBase(baseURL, timeout, o.http...),
		path: o.path,
	}
}

// Predict returns the records in server order. Any failure is a *TransportError.
func (c *Client) Predict(ctx context.Context, stock, start, end string) ([]models.RawPrediction, error) {
	var resp predictResponse
	err := c.base.postJSON(ctx, c.path, predictRequest{Stock: stock, Start: start, End: end}, &resp)
	if err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("post %s: %w", c.path, err)}
	}

	if resp.Predictions == nil {
		return nil, &TransportError{Cause: fmt.Errorf("%w: missing predictions", ErrMalformedResponse)}
	}
	out := make([]models.RawPrediction, 0, len(*resp.Predictions))
	for i, rec := range *resp.Predictions {
		if rec.Date == nil || rec.PredictedClose == nil {
			return nil, &TransportError{Cause: fmt.Errorf("%w: record %d incomplete", ErrMalformedResponse, i)}
		}
		out = append(out, models.RawPrediction{Date: *rec.Date, PredictedClose: *rec.PredictedClose})
	}
	return out, nil
}
