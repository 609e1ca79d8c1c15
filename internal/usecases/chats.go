package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/practice-sem-2/messaging-service/internal/auth"
	"github.com/practice-sem-2/messaging-service/internal/models"
	storage "github.com/practice-sem-2/messaging-service/internal/storages"
)

var (
	ErrMemberNotVerified = errors.New("member email has not been verified")
	ErrContactNotFound   = errors.New("members are not contacts of each other")
	ErrAlreadyJoined     = errors.New("member already joined the chat")
	ErrNotInChat         = errors.New("member is not in the chat")
	ErrDirectChatAdd     = errors.New("cannot add members to a direct chat")
	ErrDirectChatRemove  = errors.New("cannot delete members from a direct chat")
)

type ChatsUsecase struct {
	registry storage.Registry
}

func NewChatsUsecase(r storage.Registry) *ChatsUsecase {
	return &ChatsUsecase{
		registry: r,
	}
}

// CreateChat inserts a non-direct chat and returns its generated id.
func (u *ChatsUsecase) CreateChat(ctx context.Context, name string) (chatID int64, err error) {
	err = u.registry.Atomic(ctx, func(r storage.Registry) error {
		chatID, err = r.GetChatsStore().CreateChat(ctx, name, false)
		if err != nil {
			return err
		}

		return r.GetUpdatesStore().ChatCreated(&models.ChatCreated{
			UpdateMeta: models.UpdateMeta{
				Timestamp: time.Now().UTC(),
			},
			ChatID: chatID,
			Name:   name,
		})
	})
	return
}

// CreateDirectChat creates a two-member direct chat. Both members must exist,
// be verified, and already be mutual contacts. The chat row and both
// membership rows are inserted in one transaction.
func (u *ChatsUsecase) CreateDirectChat(ctx context.Context, name, emailA, emailB string) (chatID int64, err error) {
	err = u.registry.Atomic(ctx, func(r storage.Registry) error {
		members := r.GetMembersStore()

		memberA, err := resolveVerifiedMember(ctx, members, emailA)
		if err != nil {
			return err
		}
		memberB, err := resolveVerifiedMember(ctx, members, emailB)
		if err != nil {
			return err
		}

		linked, err := r.GetContactsStore().Exists(ctx, memberA.MemberID, memberB.MemberID)
		if err != nil {
			return err
		}
		if !linked {
			return ErrContactNotFound
		}

		chats := r.GetChatsStore()
		chatID, err = chats.CreateChat(ctx, name, true)
		if err != nil {
			return err
		}

		err = chats.AddMembers(ctx, chatID, []int64{memberA.MemberID, memberB.MemberID})
		if err != nil {
			return err
		}

		audience := []string{memberA.Email, memberB.Email}
		return r.GetUpdatesStore().ChatCreated(&models.ChatCreated{
			UpdateMeta: models.UpdateMeta{
				Timestamp: time.Now().UTC(),
				Audience:  audience,
			},
			ChatID:   chatID,
			Name:     name,
			IsDirect: true,
			Members:  audience,
		})
	})
	return
}

// AddMember adds the member with the given email to a group chat.
func (u *ChatsUsecase) AddMember(ctx context.Context, chatID int64, email string) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		chats := r.GetChatsStore()

		chat, err := chats.GetChat(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.IsDirect() {
			return ErrDirectChatAdd
		}

		member, err := r.GetMembersStore().GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		joined, err := chats.IsMember(ctx, chatID, member.MemberID)
		if err != nil {
			return err
		}
		if joined {
			return ErrAlreadyJoined
		}

		err = chats.AddMembers(ctx, chatID, []int64{member.MemberID})
		if errors.Is(err, storage.ErrAlreadyMember) {
			return ErrAlreadyJoined
		} else if err != nil {
			return err
		}

		audience, err := u.chatAudience(ctx, chats, chatID)
		if err != nil {
			return err
		}

		return r.GetUpdatesStore().MemberAdded(&models.MemberAdded{
			UpdateMeta: models.UpdateMeta{
				Timestamp: time.Now().UTC(),
				Audience:  audience,
			},
			ChatID: chatID,
			Email:  member.Email,
		})
	})
}

// ListMembers returns the emails of everyone in the chat.
func (u *ChatsUsecase) ListMembers(ctx context.Context, chatID int64) ([]models.ChatMember, error) {
	chats := u.registry.GetChatsStore()

	_, err := chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return chats.MemberEmails(ctx, chatID)
}

// ListChatsForEmail returns every chat the member belongs to with the latest
// message of each. The email is compared case-insensitively.
func (u *ChatsUsecase) ListChatsForEmail(ctx context.Context, email string) ([]models.ChatSummary, error) {
	member, err := resolveVerifiedMember(ctx, u.registry.GetMembersStore(), strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return u.registry.GetChatsStore().ChatsForMember(ctx, member.MemberID)
}

// RemoveMember removes the member with the given email from a group chat.
func (u *ChatsUsecase) RemoveMember(ctx context.Context, chatID int64, email string) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		chats := r.GetChatsStore()

		chat, err := chats.GetChat(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.IsDirect() {
			return ErrDirectChatRemove
		}

		member, err := r.GetMembersStore().GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		joined, err := chats.IsMember(ctx, chatID, member.MemberID)
		if err != nil {
			return err
		}
		if !joined {
			return ErrNotInChat
		}

		audience, err := u.chatAudience(ctx, chats, chatID)
		if err != nil {
			return err
		}

		err = chats.RemoveMember(ctx, chatID, member.MemberID)
		if errors.Is(err, storage.ErrNotAMember) {
			return ErrNotInChat
		} else if err != nil {
			return err
		}

		return r.GetUpdatesStore().MemberRemoved(&models.MemberRemoved{
			UpdateMeta: models.UpdateMeta{
				Timestamp: time.Now().UTC(),
				Audience:  audience,
			},
			ChatID: chatID,
			Email:  member.Email,
		})
	})
}

// DeleteChat removes the chat, its messages, and its memberships in one
// transaction.
func (u *ChatsUsecase) DeleteChat(ctx context.Context, chatID int64) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		chats := r.GetChatsStore()

		_, err := chats.GetChat(ctx, chatID)
		if err != nil {
			return err
		}

		audience, err := u.chatAudience(ctx, chats, chatID)
		if err != nil {
			return err
		}

		if err = chats.DeleteChatMessages(ctx, chatID); err != nil {
			return err
		}
		if err = chats.DeleteChatMembers(ctx, chatID); err != nil {
			return err
		}
		if err = chats.DeleteChat(ctx, chatID); err != nil {
			return err
		}

		return r.GetUpdatesStore().ChatDeleted(&models.ChatDeleted{
			UpdateMeta: models.UpdateMeta{
				Timestamp: time.Now().UTC(),
				Audience:  audience,
			},
			ChatID: chatID,
		})
	})
}

// SendMessage posts a message to a chat the sender belongs to.
func (u *ChatsUsecase) SendMessage(ctx context.Context, sender *auth.UserClaims, chatID int64, text string) (msg *models.Message, err error) {
	if sender == nil {
		return nil, auth.ErrInvalidToken
	}

	err = u.registry.Atomic(ctx, func(r storage.Registry) error {
		chats := r.GetChatsStore()

		_, err := chats.GetChat(ctx, chatID)
		if err != nil {
			return err
		}

		joined, err := chats.IsMember(ctx, chatID, sender.MemberID)
		if err != nil {
			return err
		}
		if !joined {
			return ErrNotInChat
		}

		msg = &models.Message{
			ChatID:   chatID,
			MemberID: sender.MemberID,
			Email:    sender.Email,
			Text:     text,
		}
		if err = chats.PutMessage(ctx, msg); err != nil {
			return err
		}

		audience, err := u.chatAudience(ctx, chats, chatID)
		if err != nil {
			return err
		}

		return r.GetUpdatesStore().MessageSent(&models.MessageSent{
			UpdateMeta: models.UpdateMeta{
				Timestamp: msg.Timestamp,
				Audience:  audience,
			},
			MessageID: msg.MessageID,
			ChatID:    chatID,
			Email:     sender.Email,
			Text:      text,
		})
	})
	return
}

// GetMessages returns the chat's most recent messages, newest first.
func (u *ChatsUsecase) GetMessages(ctx context.Context, chatID int64, limit uint64) ([]models.Message, error) {
	chats := u.registry.GetChatsStore()

	_, err := chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return chats.ListMessages(ctx, chatID, limit)
}

func (u *ChatsUsecase) chatAudience(ctx context.Context, store *storage.ChatsStorage, chatID int64) ([]string, error) {
	members, err := store.MemberEmails(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("can't get chat members: %v", err)
	}
	audience := make([]string, len(members))
	for i, member := range members {
		audience[i] = member.Email
	}
	return audience, nil
}

func resolveVerifiedMember(ctx context.Context, store *storage.MembersStorage, email string) (*models.Member, error) {
	member, err := store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !member.Verified() {
		return nil, ErrMemberNotVerified
	}
	return member, nil
}
