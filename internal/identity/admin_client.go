package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// AdminClient talks to the identity provider's admin API with the service
// role key. It implements Provider.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewAdminClient constructs an AdminClient for the given provider URL.
func NewAdminClient(baseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AdminClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type createIdentityRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

// CreateIdentity registers a new identity with the provider. The identity is
// confirmed immediately; the provider owns all password handling.
func (c *AdminClient) CreateIdentity(ctx context.Context, email, password string) (*ExternalIdentity, error) {
	payload, err := json.Marshal(createIdentityRequest{Email: email, Password: password, EmailConfirm: true})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/admin/users", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: create: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity: create: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("identity: create: status %d: %s", resp.StatusCode, string(body))
	}
	var identity ExternalIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("identity: create: decode response: %w", err)
	}
	return &identity, nil
}

// DeleteIdentity removes an identity from the provider. A 404 is treated as
// success so retried purges stay idempotent.
func (c *AdminClient) DeleteIdentity(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: delete: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("identity: delete: status %d: %s", resp.StatusCode, string(body))
	}
}

type listIdentitiesResponse struct {
	Users []ExternalIdentity `json:"users"`
}

// ListIdentities returns provider identities matching the given email, or
// every identity when email is empty.
func (c *AdminClient) ListIdentities(ctx context.Context, email string) ([]ExternalIdentity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/admin/users", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity: list: status %d: %s", resp.StatusCode, string(body))
	}
	var listResp listIdentitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("identity: list: decode response: %w", err)
	}
	if email == "" {
		return listResp.Users, nil
	}
	var matched []ExternalIdentity
	for _, u := range listResp.Users {
		if u.Email == email {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
