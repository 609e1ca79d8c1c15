package models

type Chat struct {
	ChatID int64  `json:"chatid" db:"chat_id"`
	Name   string `json:"name" db:"name"`
	Direct int    `json:"direct" db:"direct"`
}

// IsDirect reports whether the chat is a two-member direct chat.
func (c *Chat) IsDirect() bool {
	return c.Direct != 0
}

type ChatMember struct {
	Email string `json:"email" db:"email"`
}

// ChatSummary is one row of a member's chat list: the chat itself plus its
// most recent message, or empty strings when the chat has no messages yet.
type ChatSummary struct {
	Name      string `json:"name" db:"name"`
	Direct    int    `json:"direct" db:"direct"`
	ChatID    int64  `json:"chatid" db:"chatid"`
	Message   string `json:"message" db:"message"`
	Timestamp string `json:"timestamp" db:"timestamp"`
}
