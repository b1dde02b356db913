package ytdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	ErrVideoNotFound      = fmt.Errorf("video not found")
	ErrVideoNotEmbeddable = fmt.Errorf("video is not embeddable")
)

type oembedResponse struct {
	Title        string `json:"title"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func (r *Resolver) getVideoWithEmbed(ctx context.Context, videoId string) (*Video, error) {
	url := fmt.Sprintf("https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s", videoId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound:
			return nil, ErrVideoNotFound
		case http.StatusUnauthorized:
			return nil, ErrVideoNotEmbeddable
		default:
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	var result oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	thumbnail := result.ThumbnailUrl
	if thumbnail == "" {
		thumbnail = thumbnailUrl(videoId)
	}

	return &Video{
		Ref:          videoId,
		Title:        result.Title,
		ThumbnailUrl: thumbnail,
	}, nil
}
