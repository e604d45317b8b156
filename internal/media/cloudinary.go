package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// deleteBatchSize is the media host's documented per-request limit.
const deleteBatchSize = 100

// CloudinaryClient implements Host against the Cloudinary admin API.
type CloudinaryClient struct {
	baseURL    string // https://api.cloudinary.com/v1_1/<cloud_name>
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewCloudinaryClient constructs a client for the given cloud.
func NewCloudinaryClient(baseURL, apiKey, apiSecret string) *CloudinaryClient {
	return &CloudinaryClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listResourcesResponse struct {
	Resources  []ObjectRef `json:"resources"`
	NextCursor string      `json:"next_cursor"`
}

// List returns every object under the namespace prefix, following the
// host's cursor pagination.
func (c *CloudinaryClient) List(ctx context.Context, namespace string) ([]ObjectRef, error) {
	var refs []ObjectRef
	cursor := ""
	for {
		query := url.Values{}
		query.Set("prefix", namespace)
		query.Set("type", "upload")
		query.Set("max_results", "100")
		if cursor != "" {
			query.Set("next_cursor", cursor)
		}

		var page listResourcesResponse
		if err := c.do(ctx, http.MethodGet, "/resources/image/upload?"+query.Encode(), &page); err != nil {
			return nil, fmt.Errorf("media: list %s: %w", namespace, err)
		}
		refs = append(refs, page.Resources...)
		if page.NextCursor == "" {
			return refs, nil
		}
		cursor = page.NextCursor
	}
}

// DeleteMany removes the referenced objects in batches.
func (c *CloudinaryClient) DeleteMany(ctx context.Context, refs []ObjectRef) error {
	for start := 0; start < len(refs); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(refs) {
			end = len(refs)
		}
		query := url.Values{}
		for _, ref := range refs[start:end] {
			query.Add("public_ids[]", ref.PublicID)
		}
		if err := c.do(ctx, http.MethodDelete, "/resources/image/upload?"+query.Encode(), nil); err != nil {
			return fmt.Errorf("media: delete batch: %w", err)
		}
	}
	return nil
}

func (c *CloudinaryClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
