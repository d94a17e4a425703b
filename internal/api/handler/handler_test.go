package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/notify/email"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/pubzy/giveaways/internal/sheets/memory"
	"github.com/pubzy/giveaways/internal/storage"
	"github.com/stretchr/testify/suite"
)

type fakeNotifier struct {
	entries chan email.EntryConfirmation
	winners chan email.WinnerNotification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		entries: make(chan email.EntryConfirmation, 1),
		winners: make(chan email.WinnerNotification, 1),
	}
}

func (f *fakeNotifier) SendEntryConfirmation(c email.EntryConfirmation) error {
	f.entries <- c
	return nil
}

func (f *fakeNotifier) SendWinnerNotification(w email.WinnerNotification) error {
	f.winners <- w
	return nil
}

type HandlerTestSuite struct {
	suite.Suite
	ctx      context.Context
	backend  *memory.Backend
	cache    *cache.Store
	storage  *storage.Storage
	notifier *fakeNotifier
	router   *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctx = context.Background()
	s.backend = memory.New()
	s.cache = cache.New(nil)
	lookups := cache.NewTTLCache[sheets.Lookup](s.cache, "lookup-", time.Minute)
	s.storage = storage.New(sheets.New(s.backend, lookups))
	s.Require().NoError(s.storage.Initialize(s.ctx))
	s.notifier = newFakeNotifier()

	h := New(s.storage, s.notifier)
	admin := NewAdmin(s.storage, s.cache, nil)
	s.router = gin.New()
	s.router.POST("/entries", h.CreateEntry)
	s.router.GET("/leaderboard", h.Leaderboard)
	s.router.POST("/leaderboard", h.AddLeaderboardEntry)
	s.router.GET("/giveaways", h.ListGiveaways)
	s.router.GET("/jobs", admin.Jobs)
	s.router.POST("/jobs/:id/run", admin.RunJob)
	s.router.POST("/cache/clear", admin.ClearCache)
}

func (s *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestCreateEntry_SendsConfirmation() {
	w := s.do(http.MethodPost, "/entries", gin.H{"name": "Alice", "email": "alice@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code)

	select {
	case sent := <-s.notifier.entries:
		s.Equal("Alice", sent.Name)
		s.Equal("alice@example.com", sent.Email)
		s.NotEmpty(sent.EnteredAt)
	case <-time.After(time.Second):
		s.Fail("entry confirmation not sent")
	}
}

func (s *HandlerTestSuite) TestCreateEntry_MissingName() {
	w := s.do(http.MethodPost, "/entries", gin.H{"email": "alice@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"message":"Name is required"}`, w.Body.String())
	s.Empty(s.notifier.entries)
}

func (s *HandlerTestSuite) TestAddLeaderboardEntry_NotifiesRegisteredWinner() {
	_, err := s.storage.CreateUser(s.ctx, storage.NewUser{Username: "alice", Email: "alice@example.com", Password: "x"})
	s.Require().NoError(err)

	w := s.do(http.MethodPost, "/leaderboard", gin.H{"username": "Alice", "giveaway": "Deck", "prize": "Steam Deck"})
	s.Require().Equal(http.StatusCreated, w.Code)

	select {
	case sent := <-s.notifier.winners:
		s.Equal("alice", sent.Username)
		s.Equal("alice@example.com", sent.Email)
		s.Equal("Deck", sent.Giveaway)
		s.Equal("Steam Deck", sent.Prize)
	case <-time.After(time.Second):
		s.Fail("winner notification not sent")
	}
}

func (s *HandlerTestSuite) TestAddLeaderboardEntry_UnknownWinner() {
	w := s.do(http.MethodPost, "/leaderboard", gin.H{"username": "ghost", "giveaway": "Deck", "prize": "Steam Deck"})
	s.Require().Equal(http.StatusCreated, w.Code)

	select {
	case <-s.notifier.winners:
		s.Fail("no notification expected for unknown users")
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *HandlerTestSuite) TestBackendFailuresAreGeneric() {
	s.backend.FailOn(memory.OpValues, errors.New("quota exceeded"))

	w := s.do(http.MethodGet, "/leaderboard", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Error fetching leaderboard"}`, w.Body.String())

	w = s.do(http.MethodGet, "/giveaways", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Error fetching giveaways"}`, w.Body.String())

	w = s.do(http.MethodPost, "/entries", gin.H{"name": "Alice", "email": "alice@example.com"})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Error submitting entry"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestJobsWithoutScheduler() {
	w := s.do(http.MethodGet, "/jobs", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/jobs/cache-sweep/run", nil).Code)
}

func (s *HandlerTestSuite) TestClearCache() {
	_, err := s.storage.GetGiveaway(s.ctx, "missing")
	s.Require().ErrorIs(err, storage.ErrNotFound)
	s.Positive(s.cache.Len())

	w := s.do(http.MethodPost, "/cache/clear", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Zero(s.cache.Len())
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
