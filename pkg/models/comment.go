package models

// Comment is the persisted record. Secret and Email never leave the store
// boundary; use Public before serializing a comment into a response.
type Comment struct {
	Path      string `json:"path"`
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Secret    string `json:"secret"`
	// Edited flips to true on the first successful edit and stays true
	Edited bool `json:"edited,omitempty"`
}

// PublicComment is the redacted projection of a Comment.
type PublicComment struct {
	Path      string `json:"path"`
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	Edited    bool   `json:"edited,omitempty"`
}

func (c Comment) Public() PublicComment {
	return PublicComment{
		Path:      c.Path,
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Content:   c.Content,
		Username:  c.Username,
		Edited:    c.Edited,
	}
}

// CommentList is the list envelope. Cursor is present only while more
// comments remain.
type CommentList struct {
	OK     bool            `json:"ok"`
	List   []PublicComment `json:"list"`
	Cursor string          `json:"cursor,omitempty"`
}

// ListQuery carries the raw list parameters as received from the client.
type ListQuery struct {
	Path   string
	Limit  string
	Cursor string
}
