package model

// Platform names a content source for a social post.
type Platform string

const (
	PlatformYouTube      Platform = "youtube"
	PlatformTikTok       Platform = "tiktok"
	PlatformInstagram    Platform = "instagram"
	PlatformWebsite      Platform = "website"
	PlatformTripAdvisor  Platform = "tripadvisor"
	PlatformLonelyPlanet Platform = "lonelyplanet"
	PlatformTravelBlog   Platform = "travel_blog"
)

// SocialMediaPost is one inspiration card. Likes and Duration are display
// strings ("12K", "3:05").
type SocialMediaPost struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	Likes       string   `json:"likes"`
	Duration    string   `json:"duration"`
	Thumbnail   string   `json:"thumbnail"`
	VideoURL    string   `json:"video_url"`
	Tags        []string `json:"tags"`
	Platform    Platform `json:"platform"`
}

type SocialMediaRequest struct {
	Destination string   `json:"destination"`
	Tags        []string `json:"tags"`
	Limit       int      `json:"limit"`
}

type SocialMediaResponse struct {
	Posts       []SocialMediaPost `json:"posts"`
	Destination string            `json:"destination"`
	TotalCount  int               `json:"total_count"`
}
