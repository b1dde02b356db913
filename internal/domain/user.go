package domain

// User is the lightweight descriptor attached to a live connection. It is
// resolved once at connect time and never persisted by this process.
type User struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarUrl   string `json:"avatar_url"`
}

// Key returns the stable identity used to collapse multiple connections of
// the same user into one logical occupant. Anonymous users fall back to the
// display name.
func (u User) Key() string {
	if u.Id != "" {
		return u.Id
	}

	return u.DisplayName
}
