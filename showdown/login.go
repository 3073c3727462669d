package showdown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultLoginURL is the public login endpoint.
const DefaultLoginURL = "https://play.pokemonshowdown.com/action.php"

// HTTPLogin implements LoginClient against the standard action.php
// endpoint.
type HTTPLogin struct {
	URL    string
	Client *http.Client
}

// NewHTTPLogin builds a login client for the public endpoint. A nil
// http.Client means http.DefaultClient.
func NewHTTPLogin(client *http.Client) *HTTPLogin {
	return &HTTPLogin{URL: DefaultLoginURL, Client: client}
}

// Assertion performs the login form POST and extracts the assertion
// from the response. The endpoint prefixes its JSON body with a single
// junk byte, which is stripped before decoding.
func (l *HTTPLogin) Assertion(ctx context.Context, username, password, challstr string) (string, error) {
	form := url.Values{
		"act":      {"login"},
		"name":     {username},
		"pass":     {password},
		"challstr": {challstr},
	}

	endpoint := l.URL
	if endpoint == "" {
		endpoint = DefaultLoginURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login request: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}
	if len(body) < 2 {
		return "", fmt.Errorf("login response too short: %q", body)
	}

	var payload struct {
		Assertion string `json:"assertion"`
	}
	if err := json.Unmarshal(body[1:], &payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if payload.Assertion == "" {
		return "", fmt.Errorf("login response carries no assertion")
	}
	return payload.Assertion, nil
}
