package vault

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *Store, *fakeRemote) {
	t.Helper()

	app := fiber.New()
	store := setupStore(t)
	remote := &fakeRemote{}
	handler := NewHandler(NewService(store, remote, zap.NewNop()), zap.NewNop())
	handler.RegisterRoutes(app)
	return app, store, remote
}

func TestHandleList(t *testing.T) {
	app, store, _ := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testListing("L1", "111", "Jacket")))
	unpub := testListing("L2", "222", "Coat")
	unpub.PublicationStatus = "unpublished"
	require.NoError(t, store.Insert(ctx, unpub))

	t.Run("All", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/listings", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 2, body.Count)
	})

	t.Run("Filtered", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/listings?filter=unpublished", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.Count)
	})
}

func TestHandleGet(t *testing.T) {
	app, store, _ := setupTestApp(t)
	require.NoError(t, store.Insert(context.Background(), testListing("L1", "111", "Jacket")))

	resp, err := app.Test(httptest.NewRequest("GET", "/listings/L1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Jacket", body["title"])

	resp, err = app.Test(httptest.NewRequest("GET", "/listings/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleUpdateField(t *testing.T) {
	app, store, _ := setupTestApp(t)
	require.NoError(t, store.Insert(context.Background(), testListing("L1", "111", "Jacket")))

	req := httptest.NewRequest("PATCH", "/listings/L1",
		strings.NewReader(`{"field": "title", "value": "Warm Jacket"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	stored, err := store.GetByLocalID(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "Warm Jacket", stored.Title)
}

func TestHandleDelete(t *testing.T) {
	app, store, _ := setupTestApp(t)
	require.NoError(t, store.Insert(context.Background(), testListing("L1", "111", "Jacket")))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/listings/L1", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/listings/L1", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleUnpublish(t *testing.T) {
	app, store, remote := setupTestApp(t)
	require.NoError(t, store.Insert(context.Background(), testListing("L1", "111", "Jacket")))

	resp, err := app.Test(httptest.NewRequest("POST", "/listings/L1/unpublish", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"111"}, remote.calls)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unpublished", body["publicationStatus"])
}

func TestHandleReset(t *testing.T) {
	app, store, _ := setupTestApp(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, testListing("L1", "111", "Jacket")))

	resp, err := app.Test(httptest.NewRequest("POST", "/vault/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
