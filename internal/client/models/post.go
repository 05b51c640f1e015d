package models

// Post is one feed entry. Likes are tracked per post by the interaction
// state, not here.
type Post struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Caption      string `json:"caption"`
	ImageURL     string `json:"image_url,omitempty"`
	CommentCount int    `json:"comment_count"`
}
