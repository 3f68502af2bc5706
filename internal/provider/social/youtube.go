package social

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/api/youtube/v3"
)

// Video is a YouTube search hit enriched with its statistics.
type Video struct {
	ID           string
	Title        string
	Description  string
	Thumbnail    string
	ChannelTitle string
	Duration     string
	Likes        string
	Views        uint64
	PublishedAt  string
}

type YouTube struct {
	svc *youtube.Service
	err error
}

// NewYouTube builds a YouTube Data API client. endpoint overrides the API
// host and is empty in production.
func NewYouTube(apiKey, endpoint string) *YouTube {
	if apiKey == "" {
		return &YouTube{err: ErrNoKey}
	}
	svc, err := youtube.NewService(context.Background(), serviceOptions(apiKey, endpoint)...)
	return &YouTube{svc: svc, err: err}
}

// SearchTravelVideos fetches twice as many candidates as requested, loads
// their statistics and keeps the max most viewed.
func (y *YouTube) SearchTravelVideos(ctx context.Context, destination string, tags []string, max int) ([]Video, error) {
	if max <= 0 {
		return nil, nil
	}
	if y.err != nil {
		return nil, y.err
	}
	query := strings.TrimSpace(fmt.Sprintf("%s travel guide %s", destination, strings.Join(tags, " ")))
	search, err := y.svc.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(max * 2)).
		RelevanceLanguage("en").
		Order("relevance").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	var ids []string
	byID := map[string]*Video{}
	for _, it := range search.Items {
		if it.Id == nil || it.Id.Kind != "youtube#video" || it.Id.VideoId == "" {
			continue
		}
		v := &Video{ID: it.Id.VideoId}
		if sn := it.Snippet; sn != nil {
			v.Title = sn.Title
			v.Description = sn.Description
			v.ChannelTitle = sn.ChannelTitle
			v.PublishedAt = sn.PublishedAt
			if sn.Thumbnails != nil && sn.Thumbnails.High != nil {
				v.Thumbnail = sn.Thumbnails.High.Url
			}
		}
		ids = append(ids, v.ID)
		byID[v.ID] = v
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := y.svc.Videos.List([]string{"contentDetails", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube videos: %w", err)
	}

	videos := make([]Video, 0, len(details.Items))
	for _, d := range details.Items {
		v, ok := byID[d.Id]
		if !ok {
			continue
		}
		if d.ContentDetails != nil {
			v.Duration = FormatClock(d.ContentDetails.Duration)
		} else {
			v.Duration = FormatClock("")
		}
		v.Likes = FormatCount("0")
		if d.Statistics != nil {
			v.Likes = FormatCount(strconv.FormatUint(d.Statistics.LikeCount, 10))
			v.Views = d.Statistics.ViewCount
		}
		videos = append(videos, *v)
	}
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].Views > videos[j].Views })
	if len(videos) > max {
		videos = videos[:max]
	}
	return videos, nil
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// FormatClock renders an ISO-8601 duration as minutes:seconds ("PT1H2M3S"
// -> "62:03"). Unparseable input yields "0:00".
func FormatClock(iso string) string {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil {
		return "0:00"
	}
	n := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}
	total := n(m[1])*86400 + n(m[2])*3600 + n(m[3])*60 + n(m[4])
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatCount abbreviates a decimal count: 1.2M, 3.4K or the plain number.
func FormatCount(count string) string {
	num, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return "0"
	}
	switch {
	case num >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(num)/1_000_000)
	case num >= 1_000:
		return fmt.Sprintf("%.1fK", float64(num)/1_000)
	default:
		return strconv.FormatInt(num, 10)
	}
}
