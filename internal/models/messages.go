package models

import "time"

type Message struct {
	MessageID int64     `json:"messageid" db:"message_id"`
	ChatID    int64     `json:"chatid" db:"chat_id"`
	MemberID  int64     `json:"-" db:"member_id"`
	Email     string    `json:"email" db:"email"`
	Text      string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
