package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudinaryListFollowsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)
		require.Equal(t, "menuforge/p1/logos", r.URL.Query().Get("prefix"))

		if r.URL.Query().Get("next_cursor") == "" {
			_ = json.NewEncoder(w).Encode(listResourcesResponse{
				Resources:  []ObjectRef{{PublicID: "menuforge/p1/logos/a"}},
				NextCursor: "abc",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(listResourcesResponse{
			Resources: []ObjectRef{{PublicID: "menuforge/p1/logos/b"}},
		})
	}))
	defer srv.Close()

	c := NewCloudinaryClient(srv.URL, "key", "secret")
	refs, err := c.List(context.Background(), "menuforge/p1/logos")
	require.NoError(t, err)
	assert.Equal(t, []ObjectRef{{PublicID: "menuforge/p1/logos/a"}, {PublicID: "menuforge/p1/logos/b"}}, refs)
}

func TestCloudinaryDeleteManyBatches(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		batches = append(batches, r.URL.Query()["public_ids[]"])
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": map[string]string{}})
	}))
	defer srv.Close()

	refs := make([]ObjectRef, 0, deleteBatchSize+5)
	for i := 0; i < deleteBatchSize+5; i++ {
		refs = append(refs, ObjectRef{PublicID: "x"})
	}

	c := NewCloudinaryClient(srv.URL, "key", "secret")
	require.NoError(t, c.DeleteMany(context.Background(), refs))

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], deleteBatchSize)
	assert.Len(t, batches[1], 5)
}

func TestCloudinaryDeleteManyEmptyIsNoop(t *testing.T) {
	c := NewCloudinaryClient("http://127.0.0.1:0", "key", "secret")
	require.NoError(t, c.DeleteMany(context.Background(), nil))
}

func TestCloudinaryListErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCloudinaryClient(srv.URL, "key", "secret")
	_, err := c.List(context.Background(), "menuforge/p1/items")
	assert.Error(t, err)
}
