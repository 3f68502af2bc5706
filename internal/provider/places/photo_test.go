package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "AIza-test-key"

func placesStub(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "textquery", r.URL.Query().Get("inputtype"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		switch r.URL.Query().Get("input") {
		case "Nowhere":
			fmt.Fprint(w, `{"candidates":[],"status":"ZERO_RESULTS"}`)
		case "Blank Wall":
			fmt.Fprint(w, `{"candidates":[{"place_id":"bare"}],"status":"OK"}`)
		default:
			fmt.Fprint(w, `{"candidates":[{"place_id":"abc"}],"status":"OK"}`)
		}
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "photos", r.URL.Query().Get("fields"))
		if r.URL.Query().Get("placeid") == "bare" || r.URL.Query().Get("place_id") == "bare" {
			fmt.Fprint(w, `{"result":{},"status":"OK"}`)
			return
		}
		fmt.Fprint(w, `{"result":{"photos":[{"photo_reference":"ref-1"},{"photo_reference":"ref-2"}]},"status":"OK"}`)
	})
	return httptest.NewServer(mux)
}

func TestPhotoURL(t *testing.T) {
	var calls int32
	srv := placesStub(t, &calls)
	defer srv.Close()

	c := NewClient(testKey, srv.URL)
	got, ok := c.PhotoURL(context.Background(), "Osaka Castle")
	require.True(t, ok)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/maps/api/place/photo", u.Path)
	assert.Equal(t, "1600", u.Query().Get("maxwidth"))
	assert.Equal(t, "ref-1", u.Query().Get("photoreference"))
	assert.Equal(t, testKey, u.Query().Get("key"))

	_, ok = c.PhotoURL(context.Background(), "Osaka Castle")
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup should hit the cache")
}

func TestPhotoURLMisses(t *testing.T) {
	var calls int32
	srv := placesStub(t, &calls)
	defer srv.Close()

	c := NewClient(testKey, srv.URL)
	_, ok := c.PhotoURL(context.Background(), "Nowhere")
	assert.False(t, ok)
	_, ok = c.PhotoURL(context.Background(), "Blank Wall")
	assert.False(t, ok)
	_, ok = c.PhotoURL(context.Background(), "")
	assert.False(t, ok)
}

func TestPhotoURLWithoutKey(t *testing.T) {
	_, ok := NewClient("", "").PhotoURL(context.Background(), "Osaka Castle")
	assert.False(t, ok)
}

func TestPhotoURLUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, ok := NewClient(testKey, srv.URL).PhotoURL(context.Background(), "Osaka Castle")
	assert.False(t, ok)
}
