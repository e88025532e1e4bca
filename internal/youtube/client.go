package youtube

import (
	"context"

	ytdl "github.com/kkdai/youtube/v2"
)

// Client wraps the YouTube API for metadata inspection and media
// download. It implements worker.Fetcher.
type Client struct {
	client ytdl.Client
	dir    string
}

// NewClient creates a client that writes artifacts into dir.
func NewClient(dir string) *Client {
	return &Client{
		client: ytdl.Client{},
		dir:    dir,
	}
}

// VideoInfo is the metadata returned by the info endpoint.
type VideoInfo struct {
	Title       string       `json:"title"`
	Thumbnail   string       `json:"thumbnail"`
	Duration    int          `json:"duration"`
	Uploader    string       `json:"uploader"`
	ViewCount   int          `json:"viewCount"`
	UploadDate  string       `json:"uploadDate"`
	Description string       `json:"description"`
	Formats     []FormatInfo `json:"formats"`
}

// descriptionLimit truncates long descriptions in info responses.
const descriptionLimit = 500

// Inspect fetches video metadata without downloading anything.
func (c *Client) Inspect(ctx context.Context, url string) (*VideoInfo, error) {
	video, err := c.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, err
	}

	description := video.Description
	if len(description) > descriptionLimit {
		description = description[:descriptionLimit]
	}

	thumbnail := ""
	if len(video.Thumbnails) > 0 {
		// Thumbnails are ordered smallest first; take the largest.
		thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	uploadDate := ""
	if !video.PublishDate.IsZero() {
		uploadDate = video.PublishDate.Format("2006-01-02")
	}

	return &VideoInfo{
		Title:       video.Title,
		Thumbnail:   thumbnail,
		Duration:    int(video.Duration.Seconds()),
		Uploader:    video.Author,
		ViewCount:   video.Views,
		UploadDate:  uploadDate,
		Description: description,
		Formats:     muxedFormats(video.Formats),
	}, nil
}
