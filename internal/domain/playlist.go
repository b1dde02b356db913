package domain

import "time"

// PlaylistItem belongs to exactly one room. Order is a dense zero-based
// position unique within the room.
type PlaylistItem struct {
	Id           string    `json:"id"`
	VideoRef     string    `json:"video_ref"`
	Title        string    `json:"title"`
	ThumbnailUrl string    `json:"thumbnail_url"`
	Order        int       `json:"order"`
	AddedBy      string    `json:"added_by"`
	AddedAt      time.Time `json:"added_at"`
}
