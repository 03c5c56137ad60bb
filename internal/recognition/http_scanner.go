package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"
)

// HTTPScanner posts the image to a recognition backend and decodes the
// tag list from its JSON response. Each scanner carries its own circuit
// breaker so a flapping backend stops being called for a cooldown
// period instead of eating the per-run deadline on every upload.
type HTTPScanner struct {
	name     string
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

type scanResponse struct {
	Tags []string `json:"tags"`
}

func NewHTTPScanner(name, endpoint string, timeout time.Duration, maxFails uint32, cooldown time.Duration) *HTTPScanner {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "scanner-" + name,
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
	})
	return &HTTPScanner{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		breaker:  cb,
	}
}

func (s *HTTPScanner) Name() string { return s.name }

func (s *HTTPScanner) Scan(ctx context.Context, imagePath string) ([]string, error) {
	out, err := s.breaker.Execute(func() (any, error) {
		return s.scan(ctx, imagePath)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

func (s *HTTPScanner) scan(ctx context.Context, imagePath string) ([]string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	var decoded scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded.Tags, nil
}
