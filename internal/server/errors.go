package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/practice-sem-2/messaging-service/internal/auth"
	storage "github.com/practice-sem-2/messaging-service/internal/storages"
	usecase "github.com/practice-sem-2/messaging-service/internal/usecases"
)

var errorMapping = []struct {
	from    error
	status  int
	message string
}{
	{auth.ErrInvalidToken, http.StatusForbidden, "Token is not valid"},
	{storage.ErrMemberNotFound, http.StatusNotFound, "email not found"},
	{usecase.ErrMemberNotVerified, http.StatusNotFound, "email has not been verified"},
	{storage.ErrChatNotFound, http.StatusNotFound, "Chat ID not found"},
	{usecase.ErrContactNotFound, http.StatusBadRequest, "contact does not exist"},
	{usecase.ErrAlreadyJoined, http.StatusBadRequest, "user already joined"},
	{usecase.ErrNotInChat, http.StatusBadRequest, "user not in chat"},
	{usecase.ErrDirectChatAdd, http.StatusBadRequest, "Cannot add more member to a direct chat"},
	{usecase.ErrDirectChatRemove, http.StatusBadRequest, "Cannot delete a member from a direct chat"},
}

// writeError maps domain errors to their HTTP shape. Anything unmapped is a
// persistence failure: it is reported generically and logged, the driver
// error never reaches the caller.
func (s *Server) writeError(c *gin.Context, err error) {
	for _, mapping := range errorMapping {
		if errors.Is(err, mapping.from) {
			respondMessage(c, mapping.status, mapping.message)
			return
		}
	}

	s.logger.WithError(err).Error("storage failure")
	respondMessage(c, http.StatusBadRequest, "SQL Error")
}

// writeLookupError is writeError for the chat listing endpoint, which
// reports member resolution failures as 400 rather than 404.
func (s *Server) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrMemberNotFound) {
		respondMessage(c, http.StatusBadRequest, "email not found")
		return
	}
	if errors.Is(err, usecase.ErrMemberNotVerified) {
		respondMessage(c, http.StatusBadRequest, "email has not been verified")
		return
	}
	s.writeError(c, err)
}
