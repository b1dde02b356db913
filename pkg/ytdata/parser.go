package ytdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

func (r *Resolver) getVideoFromPage(ctx context.Context, videoId string) (*Video, error) {
	doc, err := r.fetchPage(ctx, "https://youtu.be/"+videoId)
	if err != nil {
		return nil, err
	}

	return &Video{
		Ref:          videoId,
		Title:        getTitle(doc),
		ThumbnailUrl: thumbnailUrl(videoId),
	}, nil
}

func (r *Resolver) getPlaylist(ctx context.Context, listId string) ([]Video, error) {
	doc, err := r.fetchPage(ctx, "https://www.youtube.com/playlist?list="+url.QueryEscape(listId))
	if err != nil {
		return nil, err
	}

	videos := make([]Video, 0)
	seen := make(map[string]struct{})
	collectPlaylistEntries(doc, seen, &videos)

	if len(videos) == 0 {
		return nil, ErrInvalidReference
	}

	return videos, nil
}

func (r *Resolver) fetchPage(ctx context.Context, pageUrl string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return html.Parse(resp.Body)
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// collectPlaylistEntries walks anchors pointing at /watch?v=... in document
// order, keeping the first occurrence of every video id.
func collectPlaylistEntries(n *html.Node, seen map[string]struct{}, videos *[]Video) {
	if n.Type == html.ElementNode && n.Data == "a" {
		var href, title string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "href":
				href = attr.Val
			case "title":
				title = attr.Val
			}
		}

		if videoId := videoIdFromHref(href); videoId != "" {
			if _, ok := seen[videoId]; !ok {
				seen[videoId] = struct{}{}
				if title == "" {
					title = strings.TrimSpace(textContent(n))
				}
				*videos = append(*videos, Video{
					Ref:          videoId,
					Title:        title,
					ThumbnailUrl: thumbnailUrl(videoId),
				})
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectPlaylistEntries(c, seen, videos)
	}
}

func videoIdFromHref(href string) string {
	if !strings.Contains(href, "/watch") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	videoId := u.Query().Get("v")
	if !videoIdRe.MatchString(videoId) {
		return ""
	}

	return videoId
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}

	return sb.String()
}
