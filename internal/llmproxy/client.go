// Package llmproxy talks to the external LLM-proxy admin API that tracks
// per-organization teams and per-member budget keys.
package llmproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ProvisionMember adds a user to the org's team and returns the generated
// budget key for the member.
func (c *Client) ProvisionMember(ctx context.Context, orgID, userID string) (string, error) {
	body := map[string]any{"team_id": orgID, "user_id": userID}
	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(ctx, http.MethodPost, "/team/member_add", body, &out); err != nil {
		return "", fmt.Errorf("provision member: %w", err)
	}
	return out.Key, nil
}

// DeleteTeam removes the org's team and all its keys.
func (c *Client) DeleteTeam(ctx context.Context, orgID string) error {
	body := map[string]any{"team_ids": []string{orgID}}
	if err := c.do(ctx, http.MethodPost, "/team/delete", body, nil); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
