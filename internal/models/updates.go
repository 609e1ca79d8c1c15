package models

import "time"

type UpdateMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Audience  []string  `json:"audience"`
}

type ChatCreated struct {
	UpdateMeta
	ChatID   int64    `json:"chatid" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	IsDirect bool     `json:"direct"`
	Members  []string `json:"members"`
}

type ChatDeleted struct {
	UpdateMeta
	ChatID int64 `json:"chatid" validate:"required"`
}

type MemberAdded struct {
	UpdateMeta
	ChatID int64  `json:"chatid" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

type MemberRemoved struct {
	UpdateMeta
	ChatID int64  `json:"chatid" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

type MessageSent struct {
	UpdateMeta
	MessageID int64  `json:"messageid" validate:"required"`
	ChatID    int64  `json:"chatid" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Text      string `json:"message" validate:"required"`
}
