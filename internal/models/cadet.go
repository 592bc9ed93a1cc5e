package models

import "time"

type Cadet struct {
	ID          int64     `db:"id"`
	TelegramID  int64     `db:"telegram_id"`
	Username    *string   `db:"telegram_username"`
	Name        string    `db:"name"`
	Achievement *string   `db:"achievement"`
	CreatedAt   time.Time `db:"created_at"`
}

// Group is a Telegram group chat. ChatID is nil only for the default "No Group" bucket.
type Group struct {
	ID     int64  `db:"id"`
	ChatID *int64 `db:"telegram_chat_id"`
	Name   string `db:"name"`
}

func (g Group) IsUnassigned() bool { return g.ChatID == nil }

const UnassignedGroupName = "No Group"
