package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookstore-purchase-api/internal/telemetry"
)

const relayMaxRedirects = 10

// UpstreamError reports a relay target that answered with a non-success
// status. FinalURL is where the request landed after redirects.
type UpstreamError struct {
	StatusCode int
	FinalURL   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// RelayService fetches a remote resource and hands back its body for
// verbatim streaming. It exists only to work around client-side network
// restrictions; nothing here touches the ledger.
type RelayService interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type relayServiceImpl struct {
	httpClient *http.Client
}

func NewRelayService(timeout time.Duration) RelayService {
	return &relayServiceImpl{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= relayMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", relayMaxRedirects)
				}
				return nil
			},
		},
	}
}

// Fetch returns the upstream body stream. The caller owns closing it.
func (s *relayServiceImpl) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	telemetry.RelayRequests.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		telemetry.RelayFailures.Inc()
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		telemetry.RelayFailures.Inc()
		return nil, fmt.Errorf("fetch upstream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		telemetry.RelayFailures.Inc()
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			FinalURL:   resp.Request.URL.String(),
		}
	}

	return resp.Body, nil
}
