package room

// Room is the persisted shape of the aggregate's scalar fields. Timestamps
// are unix seconds.
type Room struct {
	Id                string  `redis:"id"`
	Name              string  `redis:"name"`
	PasswordHash      string  `redis:"password_hash"`
	OwnerId           string  `redis:"owner_id"`
	OwnerName         string  `redis:"owner_name"`
	IsActive          bool    `redis:"is_active"`
	CurrentVideoIndex int     `redis:"current_video_index"`
	CurrentTime       float64 `redis:"current_time"`
	IsPlaying         bool    `redis:"is_playing"`
	UsersCount        int     `redis:"users_count"`
	CreatedAt         int64   `redis:"created_at"`
	LastActivityAt    int64   `redis:"last_activity_at"`
}

type Video struct {
	VideoRef     string `redis:"video_ref"`
	Title        string `redis:"title"`
	ThumbnailUrl string `redis:"thumbnail_url"`
	AddedBy      string `redis:"added_by"`
	AddedAt      int64  `redis:"added_at"`
}
