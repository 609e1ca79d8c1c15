package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createChatRequest struct {
	Name string `json:"name" validate:"required"`
}

type createDirectChatRequest struct {
	Name   string `json:"name" validate:"required"`
	EmailA string `json:"email_A" validate:"required"`
	EmailB string `json:"email_B" validate:"required"`
}

func (s *Server) createChat(c *gin.Context) {
	var req createChatRequest
	if !bindJSON(c, &req) || !s.requireFields(c, req) {
		return
	}

	chatID, err := s.chats.CreateChat(c.Request.Context(), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chatID":  chatID,
	})
}

func (s *Server) createDirectChat(c *gin.Context) {
	var req createDirectChatRequest
	if !bindJSON(c, &req) || !s.requireFields(c, req) {
		return
	}

	chatID, err := s.chats.CreateDirectChat(c.Request.Context(), req.Name, req.EmailA, req.EmailB)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chatID":  chatID,
	})
}

func (s *Server) addChatMember(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondMessage(c, http.StatusBadRequest, "Missing required information")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	if err := s.chats.AddMember(c.Request.Context(), chatID, email); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listChatMembers(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	rows, err := s.chats.ListMembers(c.Request.Context(), chatID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rowCount": len(rows),
		"rows":     rows,
	})
}

func (s *Server) listChatsForEmail(c *gin.Context) {
	chats, err := s.chats.ListChatsForEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		s.writeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatCount": len(chats),
		"chats":     chats,
	})
}

func (s *Server) removeChatMember(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	if err := s.chats.RemoveMember(c.Request.Context(), chatID, c.Param("email")); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteChat(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	if err := s.chats.DeleteChat(c.Request.Context(), chatID); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
