package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/focusflow/focusflow/bus"
)

// Summary mirrors the bridge's /api/summary payload.
type Summary struct {
	TotalWastedToday int    `json:"totalWastedToday"`
	Grade            string `json:"grade"`
	LastResetDate    string `json:"lastResetDate"`
	DeepWork         bool   `json:"deepWork"`
}

// Client talks to the bridge daemon.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the daemon at addr.
func NewClient(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Summary fetches today's totals and preferences.
func (c *Client) Summary() (Summary, error) {
	var s Summary

	err := c.getJSON("/api/summary", &s)

	return s, err
}

// ActiveTime fetches the countdown state of the active tab. The second
// return value reports whether a timer is active at all.
func (c *Client) ActiveTime() (bus.TimeReply, bool, error) {
	resp, err := c.http.Get(c.baseURL + "/api/time")
	if err != nil {
		return bus.TimeReply{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return bus.TimeReply{}, false, nil
	}

	if resp.StatusCode != http.StatusOK {
		return bus.TimeReply{}, false, fmt.Errorf(
			"unexpected status: %s",
			resp.Status,
		)
	}

	var reply bus.TimeReply

	err = json.NewDecoder(resp.Body).Decode(&reply)

	return reply, err == nil, err
}

// SetDeepWork toggles the deep work preference.
func (c *Client) SetDeepWork(enabled bool) error {
	body, err := json.Marshal(map[string]bool{"deepWork": enabled})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(
		c.baseURL+"/api/preferences",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return nil
}

func (c *Client) getJSON(path string, v any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
