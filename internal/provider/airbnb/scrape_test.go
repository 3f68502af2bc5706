package airbnb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roomPage = `<html><head>
<script type="application/ld+json">{"@type":"BreadcrumbList"}</script>
<script type="application/ld+json">not json</script>
<script type="application/ld+json">{"@type":"VacationRental","image":["https://a0.muscache.com/1.jpg","https://a0.muscache.com/2.jpg","https://a0.muscache.com/3.jpg","https://a0.muscache.com/4.jpg"]}</script>
<script type="application/ld+json">{"image":"https://a0.muscache.com/5.jpg"}</script>
</head><body></body></html>`

func TestImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		fmt.Fprint(w, roomPage)
	}))
	defer srv.Close()

	s := NewScraper()
	images, err := s.Images(context.Background(), srv.URL+"/rooms/1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://a0.muscache.com/1.jpg",
		"https://a0.muscache.com/2.jpg",
		"https://a0.muscache.com/3.jpg",
		"https://a0.muscache.com/5.jpg",
	}, images)
	assert.Equal(t, "https://a0.muscache.com/1.jpg", s.FirstImage(context.Background(), srv.URL+"/rooms/1"))
}

func TestFirstImageOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	assert.Equal(t, "", NewScraper().FirstImage(context.Background(), srv.URL))
}

func TestIsListing(t *testing.T) {
	for _, link := range []string{
		"https://www.airbnb.com/rooms/123",
		"http://airbnb.com/rooms/9?adults=2",
		"https://WWW.AIRBNB.COM/rooms/1",
		"https://fr.airbnb.com./rooms/1",
	} {
		assert.True(t, IsListing(link), link)
	}
	for _, link := range []string{
		"",
		"https://www.booking.com/hotel/jp/x.html",
		"http://169.254.169.254/latest/meta-data/?airbnb.com",
		"http://internal.local/airbnb.com.evil",
		"https://airbnb.com.evil.example/rooms/1",
		"https://notairbnb.com/rooms/1",
		"https://www.airbnb.com@10.0.0.1/rooms/1",
		"file:///etc/airbnb.com",
		"ftp://www.airbnb.com/rooms/1",
		"www.airbnb.com/rooms/1",
	} {
		assert.False(t, IsListing(link), link)
	}
}

func TestImagesRefusesOffSiteRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rooms/1" {
			http.Redirect(w, r, "/admin", http.StatusFound)
			return
		}
		t.Errorf("redirect target %s was fetched", r.URL.Path)
	}))
	defer srv.Close()

	_, err := NewScraper().Images(context.Background(), srv.URL+"/rooms/1")
	assert.ErrorIs(t, err, errOffSite)
}
