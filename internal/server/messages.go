package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultMessageLimit = 15

type sendMessageRequest struct {
	ChatID int64  `json:"chatid" validate:"required"`
	Text   string `json:"message" validate:"required"`
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) || !s.requireFields(c, req) {
		return
	}

	msg, err := s.chats.SendMessage(c.Request.Context(), claimsFrom(c), req.ChatID, req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageid": msg.MessageID,
	})
}

func (s *Server) listMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	limit := uint64(defaultMessageLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Malformed parameter. limit must be a number")
			return
		}
		limit = parsed
	}

	rows, err := s.chats.GetMessages(c.Request.Context(), chatID, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rowCount": len(rows),
		"rows":     rows,
	})
}
