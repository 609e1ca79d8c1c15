package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/messaging-service/internal/models"
)

var (
	ErrMemberNotFound = errors.New("member with provided email does not exist")
)

type MembersStorage struct {
	db Scope
}

func NewMembersStorage(db Scope) *MembersStorage {
	return &MembersStorage{
		db: db,
	}
}

func (s *MembersStorage) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query, args, err := sq.Select("member_id", "email", "verification").
		From("members").
		Where(sq.Eq{"email": email}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	member := models.Member{}
	err = s.db.GetContext(ctx, &member, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	} else if err != nil {
		return nil, err
	} else {
		return &member, nil
	}
}

type ContactsStorage struct {
	db Scope
}

func NewContactsStorage(db Scope) *ContactsStorage {
	return &ContactsStorage{
		db: db,
	}
}

// Exists reports whether a contact row links the two members in either
// direction.
func (s *ContactsStorage) Exists(ctx context.Context, memberA, memberB int64) (bool, error) {
	query, args, err := sq.Select("1").
		From("contacts").
		Where(sq.Or{
			sq.Eq{"member_id_a": memberA, "member_id_b": memberB},
			sq.Eq{"member_id_a": memberB, "member_id_b": memberA},
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
