package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/messaging-service/internal/auth"
	"github.com/practice-sem-2/messaging-service/internal/models"
	usecase "github.com/practice-sem-2/messaging-service/internal/usecases"
	"github.com/sirupsen/logrus"
)

// ChatsUsecase is the part of the chat pipeline the HTTP layer depends on.
type ChatsUsecase interface {
	CreateChat(ctx context.Context, name string) (int64, error)
	CreateDirectChat(ctx context.Context, name, emailA, emailB string) (int64, error)
	AddMember(ctx context.Context, chatID int64, email string) error
	ListMembers(ctx context.Context, chatID int64) ([]models.ChatMember, error)
	ListChatsForEmail(ctx context.Context, email string) ([]models.ChatSummary, error)
	RemoveMember(ctx context.Context, chatID int64, email string) error
	DeleteChat(ctx context.Context, chatID int64) error
	SendMessage(ctx context.Context, sender *auth.UserClaims, chatID int64, text string) (*models.Message, error)
	GetMessages(ctx context.Context, chatID int64, limit uint64) ([]models.Message, error)
}

type WeatherUsecase interface {
	Forecast(ctx context.Context, q usecase.WeatherQuery) (map[string]interface{}, error)
}

type Server struct {
	chats    ChatsUsecase
	weather  WeatherUsecase
	verifier *auth.VerifierService
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewServer(chats ChatsUsecase, weather WeatherUsecase, verifier *auth.VerifierService, v *validator.Validate, logger *logrus.Logger) *Server {
	return &Server{
		chats:    chats,
		weather:  weather,
		verifier: verifier,
		validate: v,
		logger:   logger,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/", s.authorize())

	chats := api.Group("/chats")
	chats.POST("", s.createChat)
	chats.POST("/direct", s.createDirectChat)
	chats.GET("/getchatid/:email", s.listChatsForEmail)
	chats.GET("/:chatId", s.listChatMembers)
	chats.PUT("/:chatId", s.addChatMember)
	chats.DELETE("/:chatId", s.deleteChat)
	chats.DELETE("/:chatId/:email", s.removeChatMember)

	messages := api.Group("/messages")
	messages.POST("", s.sendMessage)
	messages.GET("/:chatId", s.listMessages)

	api.GET("/weather", s.getWeather)

	return r
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// bindJSON decodes the request body. A body that is not valid JSON is
// rejected before any handler stage runs.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dest); err != nil {
		respondMessage(c, http.StatusBadRequest, "malformed JSON in parameters")
		return false
	}
	return true
}

// requireFields rejects the request when any required body field is absent.
func (s *Server) requireFields(c *gin.Context, req interface{}) bool {
	if err := s.validate.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Missing required information")
		return false
	}
	return true
}

func parseChatID(c *gin.Context) (int64, bool) {
	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Malformed parameter. chatId must be a number")
		return 0, false
	}
	return chatID, true
}
