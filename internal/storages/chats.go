package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/messaging-service/internal/models"
)

var (
	ErrChatNotFound  = errors.New("chat with provided chat_id does not exist")
	ErrAlreadyMember = errors.New("member already belongs to the chat")
	ErrNotAMember    = errors.New("member does not belong to the chat")
	ErrEmptyMembers  = errors.New("members array can't be empty")
)

const (
	ChatMembersPrimaryKey       = "chat_members_pkey"
	ChatMembersChatIdForeignKey = "chat_members_chat_id_fkey"
	MessagesChatIdForeignKey    = "messages_chat_id_fkey"
)

type ChatsStorage struct {
	db Scope
}

func NewChatsStorage(db Scope) *ChatsStorage {
	return &ChatsStorage{
		db: db,
	}
}

// CreateChat inserts a chat row and returns its generated id.
func (s *ChatsStorage) CreateChat(ctx context.Context, name string, direct bool) (int64, error) {
	directFlag := 0
	if direct {
		directFlag = 1
	}

	query, args, err := sq.Insert("chats").
		Columns("name", "direct").
		Values(name, directFlag).
		Suffix("RETURNING chat_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return 0, err
	}

	var chatID int64
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&chatID)

	if err != nil {
		return 0, err
	}
	return chatID, nil
}

func (s *ChatsStorage) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	query, args, err := sq.Select("chat_id", "name", "direct").
		From("chats").
		Where(sq.Eq{"chat_id": chatID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	chat := models.Chat{}
	err = s.db.GetContext(ctx, &chat, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	} else if err != nil {
		return nil, err
	} else {
		return &chat, nil
	}
}

func (s *ChatsStorage) AddMembers(ctx context.Context, chatID int64, memberIDs []int64) error {
	if len(memberIDs) == 0 {
		return ErrEmptyMembers
	}

	builder := sq.Insert("chat_members").
		Columns("chat_id", "member_id").
		PlaceholderFormat(sq.Dollar)

	for _, memberID := range memberIDs {
		builder = builder.Values(chatID, memberID)
	}

	query, args, err := builder.ToSql()

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)

	switch GetPgxConstraintName(err) {
	case ChatMembersPrimaryKey:
		return ErrAlreadyMember
	case ChatMembersChatIdForeignKey:
		return ErrChatNotFound
	default:
		return err
	}
}

func (s *ChatsStorage) RemoveMember(ctx context.Context, chatID, memberID int64) error {
	query, args, err := sq.Delete("chat_members").
		Where(sq.Eq{
			"chat_id":   chatID,
			"member_id": memberID,
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)

	if err != nil {
		return err
	}

	count, err := res.RowsAffected()

	if err != nil {
		return err
	}

	if count == 0 {
		return ErrNotAMember
	}

	return nil
}

func (s *ChatsStorage) IsMember(ctx context.Context, chatID, memberID int64) (bool, error) {
	query, args, err := sq.Select("1").
		From("chat_members").
		Where(sq.Eq{
			"chat_id":   chatID,
			"member_id": memberID,
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return false, err
	}

	ok := false
	row := s.db.QueryRowxContext(ctx, query, args...)
	err = row.Scan(&ok)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return ok, nil
}

// MemberEmails returns the email of every member of the chat.
func (s *ChatsStorage) MemberEmails(ctx context.Context, chatID int64) ([]models.ChatMember, error) {
	query, args, err := sq.Select("members.email").
		From("chat_members").
		Join("members ON chat_members.member_id = members.member_id").
		Where(sq.Eq{"chat_members.chat_id": chatID}).
		OrderBy("members.email").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	members := make([]models.ChatMember, 0)
	err = s.db.SelectContext(ctx, &members, query, args...)

	if err != nil {
		return nil, err
	}
	return members, nil
}

// ChatsForMember returns every chat the member belongs to together with the
// chat's single most recent message. Chats with no messages are still
// included with empty message and timestamp fields. Ties on the timestamp
// are broken by message id.
func (s *ChatsStorage) ChatsForMember(ctx context.Context, memberID int64) ([]models.ChatSummary, error) {
	query, args, err := sq.Select(
		"DISTINCT ON (chat_members.chat_id) chats.name",
		"chats.direct",
		"chat_members.chat_id AS chatid",
		"coalesce(messages.message, '') AS message",
		"coalesce(to_char(messages.timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD HH24:MI:SS.US'), '') AS timestamp",
	).
		From("chat_members").
		LeftJoin("chats ON chat_members.chat_id = chats.chat_id").
		LeftJoin("messages ON chat_members.chat_id = messages.chat_id").
		Where(sq.Eq{"chat_members.member_id": memberID}).
		OrderBy(
			"chat_members.chat_id",
			"messages.timestamp DESC NULLS LAST",
			"messages.message_id DESC",
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	chats := make([]models.ChatSummary, 0)
	err = s.db.SelectContext(ctx, &chats, query, args...)

	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *ChatsStorage) DeleteChatMessages(ctx context.Context, chatID int64) error {
	query, args, err := sq.Delete("messages").
		Where(sq.Eq{"chat_id": chatID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *ChatsStorage) DeleteChatMembers(ctx context.Context, chatID int64) error {
	query, args, err := sq.Delete("chat_members").
		Where(sq.Eq{"chat_id": chatID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *ChatsStorage) DeleteChat(ctx context.Context, chatID int64) error {
	query, args, err := sq.Delete("chats").
		Where(sq.Eq{"chat_id": chatID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)

	if err != nil {
		return err
	}

	count, err := res.RowsAffected()

	if err != nil {
		return err
	}

	if count == 0 {
		return ErrChatNotFound
	}

	return nil
}

// PutMessage inserts the message and fills in its generated id and the
// database-assigned timestamp.
func (s *ChatsStorage) PutMessage(ctx context.Context, message *models.Message) error {
	query, args, err := sq.Insert("messages").
		Columns("chat_id", "member_id", "message").
		Values(message.ChatID, message.MemberID, message.Text).
		Suffix("RETURNING message_id, timestamp").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&message.MessageID, &message.Timestamp)

	if GetPgxConstraintName(err) == MessagesChatIdForeignKey {
		return ErrChatNotFound
	}
	return err
}

// ListMessages returns the chat's most recent messages, newest first,
// together with each sender's email.
func (s *ChatsStorage) ListMessages(ctx context.Context, chatID int64, limit uint64) ([]models.Message, error) {
	builder := sq.Select(
		"messages.message_id",
		"messages.chat_id",
		"messages.member_id",
		"members.email",
		"messages.message",
		"messages.timestamp",
	).
		From("messages").
		Join("members ON messages.member_id = members.member_id").
		Where(sq.Eq{"messages.chat_id": chatID}).
		OrderBy("messages.timestamp DESC").
		PlaceholderFormat(sq.Dollar)

	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()

	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0)
	err = s.db.SelectContext(ctx, &messages, query, args...)

	if err != nil {
		return nil, err
	}
	return messages, nil
}
