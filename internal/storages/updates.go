package storage

import (
	"encoding/json"
	"strconv"

	"github.com/Shopify/sarama"
	"github.com/practice-sem-2/messaging-service/internal/models"
)

const (
	UpdateChatCreated   = "chat.created"
	UpdateChatDeleted   = "chat.deleted"
	UpdateMemberAdded   = "member.added"
	UpdateMemberRemoved = "member.removed"
	UpdateMessageSent   = "message.sent"
)

type UpdatesStorage struct {
	cfg      *UpdatesStoreConfig
	producer sarama.SyncProducer
}

type UpdatesStoreConfig struct {
	UpdatesTopic string
}

func NewUpdatesStore(p sarama.SyncProducer, cfg *UpdatesStoreConfig) *UpdatesStorage {
	return &UpdatesStorage{
		producer: p,
		cfg:      cfg,
	}
}

// updateEnvelope is the wire format of a single update event. Events are
// keyed by chat id so that all updates of one chat land in one partition.
type updateEnvelope struct {
	Type    string            `json:"type"`
	Meta    models.UpdateMeta `json:"meta"`
	Payload interface{}       `json:"payload"`
}

func (s *UpdatesStorage) putUpdate(updateType string, chatID int64, meta models.UpdateMeta, payload interface{}) error {
	if s.producer == nil {
		return nil
	}

	bytes, err := json.Marshal(updateEnvelope{
		Type:    updateType,
		Meta:    meta,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.cfg.UpdatesTopic,
		Key:   sarama.StringEncoder(strconv.FormatInt(chatID, 10)),
		Value: sarama.ByteEncoder(bytes),
	})

	return err
}

func (s *UpdatesStorage) ChatCreated(chat *models.ChatCreated) error {
	return s.putUpdate(UpdateChatCreated, chat.ChatID, chat.UpdateMeta, chat)
}

func (s *UpdatesStorage) ChatDeleted(chat *models.ChatDeleted) error {
	return s.putUpdate(UpdateChatDeleted, chat.ChatID, chat.UpdateMeta, chat)
}

func (s *UpdatesStorage) MemberAdded(member *models.MemberAdded) error {
	return s.putUpdate(UpdateMemberAdded, member.ChatID, member.UpdateMeta, member)
}

func (s *UpdatesStorage) MemberRemoved(member *models.MemberRemoved) error {
	return s.putUpdate(UpdateMemberRemoved, member.ChatID, member.UpdateMeta, member)
}

func (s *UpdatesStorage) MessageSent(msg *models.MessageSent) error {
	return s.putUpdate(UpdateMessageSent, msg.ChatID, msg.UpdateMeta, msg)
}
