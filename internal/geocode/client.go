package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"memograph/internal/logging"
)

// ErrNoResult indicates the geocoder answered but knows nothing about the
// coordinates, which is distinct from a transport failure.
var ErrNoResult = errors.New("no geocoding result")

const defaultTimeout = 10 * time.Second

// Client is a reverse geocoding client for a Nominatim-style endpoint. Calls
// are serialized and spaced at least minInterval apart, per the public
// Nominatim usage policy.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	minInterval time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

// NewClient builds a reverse geocoding client.
func NewClient(baseURL, userAgent string, minInterval, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent:   strings.TrimSpace(userAgent),
		httpClient:  &http.Client{Timeout: timeout},
		minInterval: minInterval,
		logger:      logging.NewComponentLogger(logger, "geocode"),
		now:         time.Now,
		sleep:       sleepContext,
	}
}

type reverseResponse struct {
	Error       string `json:"error"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Village string `json:"village"`
		Town    string `json:"town"`
		City    string `json:"city"`
		County  string `json:"county"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Reverse resolves coordinates to a human-readable place name. It blocks
// until the rate limit window allows another remote call.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.waitTurn(ctx); err != nil {
		return "", err
	}

	endpoint, err := url.Parse(c.baseURL + "/reverse")
	if err != nil {
		return "", fmt.Errorf("geocode: build url: %w", err)
	}
	query := endpoint.Query()
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("zoom", "12")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("geocode: new request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("geocode: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoResult
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("geocode: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoResult, parsed.Error)
	}

	place := composePlace(parsed)
	if place == "" {
		return "", ErrNoResult
	}
	c.logger.Debug("coordinates resolved",
		logging.Float64("lat", lat),
		logging.Float64("lon", lon),
		logging.String("place", place))
	return place, nil
}

// composePlace prefers the most specific settlement name plus state and
// country, falling back to the raw display name.
func composePlace(resp reverseResponse) string {
	addr := resp.Address
	settlement := firstNonEmpty(addr.Village, addr.Town, addr.City, addr.County)
	parts := make([]string, 0, 3)
	for _, part := range []string{settlement, addr.State, addr.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return strings.TrimSpace(resp.DisplayName)
}

func (c *Client) waitTurn(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := c.minInterval - c.now().Sub(c.lastCall); wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	c.lastCall = c.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
