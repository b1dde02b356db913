package ytdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidReference = errors.New("url is neither a video nor a playlist")

// Video is the resolved metadata for a single playable entry.
type Video struct {
	Ref          string `json:"ref"`
	Title        string `json:"title"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Resolver struct {
	client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

var videoIdRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Resolve classifies rawUrl as a playlist or a single video and returns the
// resolved entries in playback order. A bare 11-char video id is accepted as
// a video reference.
func (r *Resolver) Resolve(ctx context.Context, rawUrl string) ([]Video, error) {
	if videoIdRe.MatchString(rawUrl) {
		video, err := r.getVideo(ctx, rawUrl)
		if err != nil {
			return nil, err
		}

		return []Video{*video}, nil
	}

	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, ErrInvalidReference
	}

	if listId := u.Query().Get("list"); listId != "" {
		return r.getPlaylist(ctx, listId)
	}

	if videoId := extractVideoId(u); videoId != "" {
		video, err := r.getVideo(ctx, videoId)
		if err != nil {
			return nil, err
		}

		return []Video{*video}, nil
	}

	return nil, ErrInvalidReference
}

func extractVideoId(u *url.URL) string {
	var videoId string
	switch {
	case strings.HasSuffix(u.Host, "youtu.be"):
		videoId = strings.TrimPrefix(u.Path, "/")
	case strings.HasSuffix(u.Host, "youtube.com"):
		if u.Path == "/watch" {
			videoId = u.Query().Get("v")
		} else if strings.HasPrefix(u.Path, "/embed/") {
			videoId = strings.TrimPrefix(u.Path, "/embed/")
		}
	}

	if !videoIdRe.MatchString(videoId) {
		return ""
	}

	return videoId
}

func (r *Resolver) getVideo(ctx context.Context, videoId string) (*Video, error) {
	video, err := r.getVideoWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		video, err = r.getVideoFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return video, nil
}

func thumbnailUrl(videoId string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId)
}
