// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package meteoclient is the HTTP collaborator contract of §4.4: a
// synchronous GET over a kept-alive connection, with exactly one
// transparent reconnect-and-retry on a reconnectable transport failure.
package meteoclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"weathercore/pkg/logger"
)

// Client issues GETs against a single host:port, reusing one underlying
// *http.Client (and thus its keep-alive connection pool) for the life of
// the process.
type Client struct {
	mu      sync.Mutex
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// New creates a Client bound to host:port. Unlike the teacher's Modbus
// client, there is no explicit dial-on-construct step: net/http connects
// lazily on first use and re-dials transparently, so "connect" here just
// means "build the pooled transport".
func New(host string, port uint16) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: logger.New("MeteoClient"),
	}
}

// Get performs a synchronous GET against path (which must include its own
// query string) and returns the response body. On the first failure whose
// cause is a reconnectable transport error (peer closed, connection reset,
// broken pipe, EOF), the idle connection pool is closed and the request is
// retried exactly once. Any other error, and any failure of the retry,
// propagates to the caller.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.doGet(ctx, path)
	if err == nil {
		return body, nil
	}
	if !isReconnectable(err) {
		return nil, err
	}

	c.log.Error("transport error, reconnecting: %v", err)
	c.reconnect()

	body, err = c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("retry after reconnect: %w", err)
	}
	return body, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// reconnect drops any pooled idle connections so the next request dials
// fresh, mirroring the Modbus client's connect-with-retry discipline
// without the blocking-indefinitely-until-connected part: net/http will
// simply dial again on the next RoundTrip.
func (c *Client) reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.http.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func isReconnectable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "closed by the remote host") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "eof")
}
