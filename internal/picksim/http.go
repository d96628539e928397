package picksim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/okian/puckpicks/internal/adapters/http/api"
	"github.com/okian/puckpicks/internal/domain/types"
)

// Client is a minimal JSON client for the picks API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path, user string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(api.UserHeader, user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health returns nil when GET /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	code, err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnhealthy, code)
	}
	return nil
}

// Scores returns the accepted prediction strings.
func (c *Client) Scores(ctx context.Context) ([]string, error) {
	var scores []string
	if err := c.get(ctx, "/scores", "", &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// Board returns user's board for round.
func (c *Client) Board(ctx context.Context, user string, round int) (types.Board, error) {
	var board types.Board
	err := c.get(ctx, fmt.Sprintf("/rounds/%d/series", round), user, &board)
	return board, err
}

// Predict saves a prediction and returns the HTTP status code.
func (c *Client) Predict(ctx context.Context, s Submission) (int, error) {
	path := "/series/" + url.PathEscape(s.Slug) + "/prediction"
	return c.do(ctx, http.MethodPut, path, s.User, map[string]string{"score": s.Score}, nil)
}

func (c *Client) get(ctx context.Context, path, user string, out any) error {
	code, err := c.do(ctx, http.MethodGet, path, user, nil, out)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", ErrUnexpected, path, code)
	}
	return nil
}

type submitResult struct {
	accepted []Submission
	locked   int64
	failed   int64
}

// submitAll sends submissions with a fixed pool of workers.
func submitAll(ctx context.Context, c *Client, subs []Submission, workers int) submitResult {
	var (
		res      submitResult
		mu       sync.Mutex
		wg       sync.WaitGroup
		subsChan = make(chan Submission, workers*2)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range subsChan {
				code, err := c.Predict(ctx, s)
				switch {
				case err != nil:
					atomic.AddInt64(&res.failed, 1)
				case code == http.StatusOK:
					mu.Lock()
					res.accepted = append(res.accepted, s)
					mu.Unlock()
				case code == http.StatusConflict:
					atomic.AddInt64(&res.locked, 1)
				default:
					atomic.AddInt64(&res.failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subsChan)
		for _, s := range subs {
			select {
			case <-ctx.Done():
				return
			case subsChan <- s:
			}
		}
	}()

	wg.Wait()
	return res
}
