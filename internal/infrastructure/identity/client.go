package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client verifies admin login codes against the hosted identity
// provider. Codes prefixed with "mock_" short-circuit to their suffix as
// the subject, for local development without a provider.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

type userInfoResp struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Error   string `json:"error"`
}

func (c *Client) Exchange(code string) (string, string, error) {
	if strings.HasPrefix(strings.ToLower(code), "mock_") {
		return code[5:], "", nil
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/userinfo?code=" + url.QueryEscape(code)
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return "", "", err
	}
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	var out userInfoResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if out.Error != "" {
		return "", "", fmt.Errorf("identity error: %s", out.Error)
	}
	if resp.StatusCode >= 400 || out.Subject == "" {
		return "", "", fmt.Errorf("identity verification failed: status %d", resp.StatusCode)
	}
	return out.Subject, out.Email, nil
}
