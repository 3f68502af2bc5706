// Package airbnb pulls a listing photo out of an Airbnb room page.
package airbnb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// IsListing reports whether link is an http(s) URL on airbnb.com or one
// of its subdomains.  Only such links are ever fetched.
func IsListing(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.User != nil {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	return host == "airbnb.com" || strings.HasSuffix(host, ".airbnb.com")
}

var errOffSite = fmt.Errorf("airbnb: redirect leaves the marketplace")

type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{httpClient: &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("airbnb: stopped after %d redirects", len(via))
			}
			if !IsListing(req.URL.String()) {
				return errOffSite
			}
			return nil
		},
	}}
}

// FirstImage returns the first image advertised by the page's JSON-LD
// blocks, or "" when none is found or the fetch fails.
func (s *Scraper) FirstImage(ctx context.Context, roomURL string) string {
	images, err := s.Images(ctx, roomURL)
	if err != nil {
		log.Printf("airbnb: image scrape for %s failed: %v", roomURL, err)
		return ""
	}
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

// Images collects image URLs from every application/ld+json script. A
// string image counts once; a list contributes its first three entries.
func (s *Scraper) Images(ctx context.Context, roomURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, roomURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var images []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data struct {
			Image json.RawMessage `json:"image"`
		}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil || len(data.Image) == 0 {
			return
		}
		var one string
		if err := json.Unmarshal(data.Image, &one); err == nil {
			images = append(images, one)
			return
		}
		var many []string
		if err := json.Unmarshal(data.Image, &many); err == nil {
			if len(many) > 3 {
				many = many[:3]
			}
			images = append(images, many...)
		}
	})
	return images, nil
}
