package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/messaging-service/internal/auth"
	"github.com/practice-sem-2/messaging-service/internal/models"
	storage "github.com/practice-sem-2/messaging-service/internal/storages"
	usecase "github.com/practice-sem-2/messaging-service/internal/usecases"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatsStub records the last call arguments and replies with the
// preconfigured values.
type chatsStub struct {
	chatID   int64
	members  []models.ChatMember
	chats    []models.ChatSummary
	message  *models.Message
	messages []models.Message
	err      error

	gotName   string
	gotEmail  string
	gotChatID int64
	gotText   string
	gotLimit  uint64
	gotSender *auth.UserClaims
}

func (s *chatsStub) CreateChat(ctx context.Context, name string) (int64, error) {
	s.gotName = name
	return s.chatID, s.err
}

func (s *chatsStub) CreateDirectChat(ctx context.Context, name, emailA, emailB string) (int64, error) {
	s.gotName = name
	s.gotEmail = emailA + "," + emailB
	return s.chatID, s.err
}

func (s *chatsStub) AddMember(ctx context.Context, chatID int64, email string) error {
	s.gotChatID = chatID
	s.gotEmail = email
	return s.err
}

func (s *chatsStub) ListMembers(ctx context.Context, chatID int64) ([]models.ChatMember, error) {
	s.gotChatID = chatID
	return s.members, s.err
}

func (s *chatsStub) ListChatsForEmail(ctx context.Context, email string) ([]models.ChatSummary, error) {
	s.gotEmail = email
	return s.chats, s.err
}

func (s *chatsStub) RemoveMember(ctx context.Context, chatID int64, email string) error {
	s.gotChatID = chatID
	s.gotEmail = email
	return s.err
}

func (s *chatsStub) DeleteChat(ctx context.Context, chatID int64) error {
	s.gotChatID = chatID
	return s.err
}

func (s *chatsStub) SendMessage(ctx context.Context, sender *auth.UserClaims, chatID int64, text string) (*models.Message, error) {
	s.gotSender = sender
	s.gotChatID = chatID
	s.gotText = text
	return s.message, s.err
}

func (s *chatsStub) GetMessages(ctx context.Context, chatID int64, limit uint64) ([]models.Message, error) {
	s.gotChatID = chatID
	s.gotLimit = limit
	return s.messages, s.err
}

type weatherStub struct {
	payload  map[string]interface{}
	err      error
	gotQuery usecase.WeatherQuery
	called   bool
}

func (s *weatherStub) Forecast(ctx context.Context, q usecase.WeatherQuery) (map[string]interface{}, error) {
	s.called = true
	s.gotQuery = q
	return s.payload, s.err
}

func newTestRouter(t *testing.T, chats ChatsUsecase, weather WeatherUsecase) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)

	verifier := auth.NewVerifier("test-secret")
	token, err := verifier.Sign(&auth.UserClaims{MemberID: 1, Email: "alice@example.com"}, time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := NewServer(chats, weather, verifier, validator.New(), logger)
	return srv.Router(), token
}

func doRequest(router *gin.Engine, token, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func Test_Authorize_MissingToken(t *testing.T) {
	router, _ := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, "", http.MethodPost, "/chats", `{"name":"general"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Auth token is not supplied"}`, w.Body.String())
}

func Test_Authorize_InvalidToken(t *testing.T) {
	router, _ := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, "not-a-token", http.MethodPost, "/chats", `{"name":"general"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Token is not valid"}`, w.Body.String())
}

func Test_CreateChat(t *testing.T) {
	chats := &chatsStub{chatID: 7}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodPost, "/chats", `{"name":"general"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"chatID":7}`, w.Body.String())
	assert.Equal(t, "general", chats.gotName)
}

func Test_CreateChat_MissingName(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, token, http.MethodPost, "/chats", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing required information"}`, w.Body.String())
}

func Test_CreateChat_MalformedJSON(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, token, http.MethodPost, "/chats", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"malformed JSON in parameters"}`, w.Body.String())
}

func Test_CreateDirectChat(t *testing.T) {
	chats := &chatsStub{chatID: 12}
	router, token := newTestRouter(t, chats, &weatherStub{})

	body := `{"name":"alice & bob","email_A":"alice@example.com","email_B":"bob@example.com"}`
	w := doRequest(router, token, http.MethodPost, "/chats/direct", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"chatID":12}`, w.Body.String())
	assert.Equal(t, "alice@example.com,bob@example.com", chats.gotEmail)
}

func Test_CreateDirectChat_MissingEmail(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, token, http.MethodPost, "/chats/direct", `{"name":"x","email_A":"alice@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing required information"}`, w.Body.String())
}

func Test_CreateDirectChat_ContactDoesNotExist(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{err: usecase.ErrContactNotFound}, &weatherStub{})

	body := `{"name":"x","email_A":"alice@example.com","email_B":"bob@example.com"}`
	w := doRequest(router, token, http.MethodPost, "/chats/direct", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"contact does not exist"}`, w.Body.String())
}

func Test_AddChatMember(t *testing.T) {
	chats := &chatsStub{}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodPut, "/chats/42?email=bob@example.com", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, int64(42), chats.gotChatID)
	assert.Equal(t, "bob@example.com", chats.gotEmail)
}

func Test_AddChatMember_MissingEmail(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, token, http.MethodPut, "/chats/42", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing required information"}`, w.Body.String())
}

func Test_AddChatMember_MalformedChatID(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{}, &weatherStub{})

	w := doRequest(router, token, http.MethodPut, "/chats/abc?email=bob@example.com", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Malformed parameter. chatId must be a number"}`, w.Body.String())
}

func Test_AddChatMember_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"member not found", storage.ErrMemberNotFound, http.StatusNotFound, "email not found"},
		{"member not verified", usecase.ErrMemberNotVerified, http.StatusNotFound, "email has not been verified"},
		{"chat not found", storage.ErrChatNotFound, http.StatusNotFound, "Chat ID not found"},
		{"already joined", usecase.ErrAlreadyJoined, http.StatusBadRequest, "user already joined"},
		{"direct chat", usecase.ErrDirectChatAdd, http.StatusBadRequest, "Cannot add more member to a direct chat"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, token := newTestRouter(t, &chatsStub{err: tc.err}, &weatherStub{})

			w := doRequest(router, token, http.MethodPut, "/chats/42?email=bob@example.com", "")

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.message+`"}`, w.Body.String())
		})
	}
}

func Test_ListChatMembers(t *testing.T) {
	chats := &chatsStub{members: []models.ChatMember{
		{Email: "alice@example.com"},
		{Email: "bob@example.com"},
	}}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodGet, "/chats/42", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"rowCount": 2,
		"rows": [{"email":"alice@example.com"},{"email":"bob@example.com"}]
	}`, w.Body.String())
	assert.Equal(t, int64(42), chats.gotChatID)
}

func Test_ListChatMembers_ChatNotFound(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{err: storage.ErrChatNotFound}, &weatherStub{})

	w := doRequest(router, token, http.MethodGet, "/chats/42", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Chat ID not found"}`, w.Body.String())
}

func Test_ListChatsForEmail(t *testing.T) {
	chats := &chatsStub{chats: []models.ChatSummary{
		{Name: "general", Direct: 0, ChatID: 42, Message: "hi", Timestamp: "2023-04-01 10:00:00.000000"},
	}}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodGet, "/chats/getchatid/alice@example.com", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", chats.gotEmail)

	body := w.Body.String()
	assert.Contains(t, body, `"chatCount":1`)
	assert.Contains(t, body, `"general"`)
}

func Test_ListChatsForEmail_MemberErrorsAreBadRequest(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"member not found", storage.ErrMemberNotFound, "email not found"},
		{"member not verified", usecase.ErrMemberNotVerified, "email has not been verified"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, token := newTestRouter(t, &chatsStub{err: tc.err}, &weatherStub{})

			w := doRequest(router, token, http.MethodGet, "/chats/getchatid/ghost@example.com", "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.message+`"}`, w.Body.String())
		})
	}
}

func Test_RemoveChatMember(t *testing.T) {
	chats := &chatsStub{}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodDelete, "/chats/42/bob@example.com", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, int64(42), chats.gotChatID)
	assert.Equal(t, "bob@example.com", chats.gotEmail)
}

func Test_RemoveChatMember_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not in chat", usecase.ErrNotInChat, http.StatusBadRequest, "user not in chat"},
		{"direct chat", usecase.ErrDirectChatRemove, http.StatusBadRequest, "Cannot delete a member from a direct chat"},
		{"chat not found", storage.ErrChatNotFound, http.StatusNotFound, "Chat ID not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, token := newTestRouter(t, &chatsStub{err: tc.err}, &weatherStub{})

			w := doRequest(router, token, http.MethodDelete, "/chats/42/bob@example.com", "")

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.message+`"}`, w.Body.String())
		})
	}
}

func Test_DeleteChat(t *testing.T) {
	chats := &chatsStub{}
	router, token := newTestRouter(t, chats, &weatherStub{})

	w := doRequest(router, token, http.MethodDelete, "/chats/42", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, int64(42), chats.gotChatID)
}

func Test_DeleteChat_NotFound(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{err: storage.ErrChatNotFound}, &weatherStub{})

	w := doRequest(router, token, http.MethodDelete, "/chats/42", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Chat ID not found"}`, w.Body.String())
}

func Test_WriteError_UnmappedErrorIsGeneric(t *testing.T) {
	router, token := newTestRouter(t, &chatsStub{err: errors.New("pq: deadlock detected")}, &weatherStub{})

	w := doRequest(router, token, http.MethodDelete, "/chats/42", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"SQL Error"}`, w.Body.String())
}
