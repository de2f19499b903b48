package predictor

import (
	"context"
	"errors"
	"strings"
	"time"

	xhttp "StockDash/pkg/http"
)

var errNotConfigured = errors.New("prediction service url not configured")

// httpBase centralizes client construction and JSON POST handling.
type httpBase struct {
	baseURL string
	client  *xhttp.Client
}

func newHTTPBase(baseURL string, timeout time.Duration, opts ...xhttp.ClientOption) *httpBase {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &httpBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(opts...),
	}
}

// postJSON posts payload to path under baseURL and decodes JSON into dest.
func (b *httpBase) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.baseURL == "" {
		return errNotConfigured
	}
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, dest)
}
