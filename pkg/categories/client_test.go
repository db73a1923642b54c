package categories

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront_sdk_go/internal/httpx"
	"github.com/storekit/storefront_sdk_go/pkg/apierr"
	"github.com/storekit/storefront_sdk_go/pkg/storefront"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw, err := storefront.New(srv.URL,
		storefront.WithRetryPolicy(httpx.RetryPolicy{MaxRetries: 1, Delay: time.Millisecond}))
	require.NoError(t, err)
	client, err := New(gw)
	require.NoError(t, err)
	return client
}

func TestListSanitizesEntries(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		w.Write([]byte(`[{"id":1,"name":"  Electronics  "},{"id":2,"name":"Books"}]`))
	}))

	out, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Electronics", out[0].Name)
}

func TestListDegradesOnMalformedPayload(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))

	out, err := client.List(context.Background())
	require.NoError(t, err, "malformed listings degrade instead of failing")
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestListPropagatesBackendErrors(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":503,"error":"Service Unavailable"}`))
	}))

	_, err := client.List(context.Background())
	apiErr := &apierr.Error{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestGetByID(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories/3", r.URL.Path)
		w.Write([]byte(`{"id":3,"name":"Garden"}`))
	}))

	cat, err := client.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Garden", cat.Name)

	_, err = client.GetByID(context.Background(), 0)
	apiErr := &apierr.Error{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.CodeInvalidID, apiErr.Code)
}

func TestCreateValidatesName(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))

	_, err := client.Create(context.Background(), Category{Name: "   "})
	apiErr := &apierr.Error{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.CodeValidation, apiErr.Code)

	_, err = client.Create(context.Background(), Category{Name: strings.Repeat("a", MaxNameLen+1)})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.CodeValidation, apiErr.Code)
}

func TestCreateStripsClientAssignedID(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body Category
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 0, body.ID, "the backend assigns IDs")
		assert.Equal(t, "Toys", body.Name)
		w.Write([]byte(`{"id":7,"name":"Toys"}`))
	}))

	cat, err := client.Create(context.Background(), Category{ID: 99, Name: " Toys "})
	require.NoError(t, err)
	assert.Equal(t, 7, cat.ID)
}

func TestUpdate(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/categories/5", r.URL.Path)
		w.Write([]byte(`{"id":5,"name":"Renamed"}`))
	}))

	cat, err := client.Update(context.Background(), 5, Category{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", cat.Name)

	_, err = client.Update(context.Background(), -1, Category{Name: "x"})
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/categories/5", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Delete(context.Background(), 5))
	require.Error(t, client.Delete(context.Background(), 0))
}
