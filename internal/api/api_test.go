package api

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
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/pubzy/giveaways/internal/sheets/memory"
	"github.com/pubzy/giveaways/internal/storage"
	"github.com/stretchr/testify/suite"
)

var errBackend = errors.New("backend unavailable")

type ServerTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *memory.Backend
	storage *storage.Storage
	server  *Server
}

func (s *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctx = context.Background()
	s.backend = memory.New()

	cacheStore := cache.New(nil)
	lookups := cache.NewTTLCache[sheets.Lookup](cacheStore, "lookup-", time.Minute)
	s.storage = storage.New(sheets.New(s.backend, lookups))
	s.Require().NoError(s.storage.Initialize(s.ctx))

	cfg := &config.Config{
		Listen:        "127.0.0.1:0",
		SessionKey:    "test-secret",
		SessionName:   "giveaways_session",
		AdminUsername: storage.DefaultAdminUsername,
	}
	var err error
	s.server, err = New(cfg, s.storage, true, WithCache(cacheStore))
	s.Require().NoError(err)
}

func (s *ServerTestSuite) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// login signs a user up and returns its session cookie.
func (s *ServerTestSuite) login(username string) *http.Cookie {
	w := s.do(http.MethodPost, "/api/auth/signup", gin.H{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "giveaways_session" {
			return c
		}
	}
	s.FailNow("no session cookie")
	return nil
}

func (s *ServerTestSuite) createGiveaway(admin *http.Cookie) models.Giveaway {
	w := s.do(http.MethodPost, "/api/giveaways", gin.H{
		"title":       "Steam Deck",
		"description": "Win a Steam Deck",
		"prize":       "Steam Deck OLED",
		"maxEntries":  2,
		"endDate":     "2024-07-01T00:00:00.000Z",
	}, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var g models.Giveaway
	s.decode(w, &g)
	return g
}

func (s *ServerTestSuite) TestHealthz() {
	w := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *ServerTestSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	s.Equal("abc-123", w.Header().Get("X-Request-ID"))
}

func (s *ServerTestSuite) TestEntries_DuplicateEmailKeepsCount() {
	w := s.do(http.MethodPost, "/api/entries", gin.H{"name": "Alice", "email": "alice@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var created models.EntryResponse
	s.decode(w, &created)
	s.Equal("Entry submitted successfully", created.Message)
	s.Equal("alice@example.com", created.Entry.Email)

	w = s.do(http.MethodPost, "/api/entries", gin.H{"name": "Alice again", "email": "ALICE@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "This email has already been used to enter the giveaway")

	w = s.do(http.MethodGet, "/api/entries/count", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var count models.CountResponse
	s.decode(w, &count)
	s.Equal(1, count.Count)
}

func (s *ServerTestSuite) TestEntries_Validation() {
	w := s.do(http.MethodPost, "/api/entries", gin.H{"name": "Alice", "email": "nope"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Invalid email address")
}

func (s *ServerTestSuite) TestEntries_BackendFailure() {
	s.backend.FailOn(memory.OpValues, errBackend)
	w := s.do(http.MethodGet, "/api/entries/count", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Error fetching entry count"}`, w.Body.String())
}

func (s *ServerTestSuite) TestUserCount() {
	s.login("alice")
	s.login("bobby")

	w := s.do(http.MethodGet, "/api/users/count", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"count":2}`, w.Body.String())
}

func (s *ServerTestSuite) TestSignup_AdminFlag() {
	w := s.do(http.MethodPost, "/api/auth/signup", gin.H{
		"username": "Pubzy", "email": "a@b.com", "password": "secret1", "confirmPassword": "secret1",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var admin models.UserResponse
	s.decode(w, &admin)
	s.True(admin.User.IsAdmin)

	w = s.do(http.MethodPost, "/api/auth/signup", gin.H{
		"username": "other1", "email": "a@b.com", "password": "secret1", "confirmPassword": "secret1",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var other models.UserResponse
	s.decode(w, &other)
	s.False(other.User.IsAdmin)
}

func (s *ServerTestSuite) TestAdminRoutes_UnauthenticatedVsForbidden() {
	w := s.do(http.MethodGet, "/api/giveaways/admin", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"message":"Not authenticated"}`, w.Body.String())

	user := s.login("other1")
	w = s.do(http.MethodGet, "/api/giveaways/admin", nil, user)
	s.Equal(http.StatusForbidden, w.Code)
	s.JSONEq(`{"message":"Not authorized"}`, w.Body.String())
}

func (s *ServerTestSuite) TestUpdateGiveaway_MergesPatch() {
	admin := s.login("Pubzy")
	before := s.createGiveaway(admin)
	s.True(before.IsActive)

	w := s.do(http.MethodPut, "/api/giveaways/"+before.ID, gin.H{"isActive": false}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var after models.Giveaway
	s.decode(w, &after)

	s.False(after.IsActive)
	after.IsActive = true
	s.Equal(before, after, "fields other than isActive must be unchanged")

	w = s.do(http.MethodPut, "/api/giveaways/missing", gin.H{"title": "x"}, admin)
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"message":"Giveaway not found"}`, w.Body.String())
}

func (s *ServerTestSuite) TestDeleteGiveaway_SoftDeleteIsIdempotent() {
	admin := s.login("Pubzy")
	g := s.createGiveaway(admin)

	for range 2 {
		w := s.do(http.MethodDelete, "/api/giveaways/"+g.ID, nil, admin)
		s.Require().Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"message":"Giveaway deleted successfully"}`, w.Body.String())
	}

	var public []models.Giveaway
	s.decode(s.do(http.MethodGet, "/api/giveaways", nil), &public)
	s.Empty(public)

	var all []models.Giveaway
	s.decode(s.do(http.MethodGet, "/api/giveaways/admin", nil, admin), &all)
	s.Require().Len(all, 1)
	s.Equal(g.ID, all[0].ID)
	s.False(all[0].IsActive)

	w := s.do(http.MethodDelete, "/api/giveaways/missing", nil, admin)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerTestSuite) TestGetGiveaway() {
	g := s.createGiveaway(s.login("Pubzy"))

	w := s.do(http.MethodGet, "/api/giveaways/"+g.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var got models.Giveaway
	s.decode(w, &got)
	s.Equal(g, got)

	w = s.do(http.MethodGet, "/api/giveaways/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"message":"Giveaway not found"}`, w.Body.String())

	s.backend.FailOn(memory.OpValues, errBackend)
	w = s.do(http.MethodGet, "/api/giveaways/other", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Error fetching giveaway"}`, w.Body.String())
}

func (s *ServerTestSuite) TestEnterGiveaway() {
	admin := s.login("Pubzy")
	g := s.createGiveaway(admin)
	alice := s.login("alice")
	bobby := s.login("bobby")
	carol := s.login("carol")

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil).Code)

	w := s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil, alice)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil, alice)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "You have already entered this giveaway")

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil, bobby).Code)

	w = s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil, carol)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "maximum number of entries")

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/giveaways/missing/enter", nil, carol).Code)

	var mine []models.GiveawayEntry
	s.decode(s.do(http.MethodGet, "/api/user/entries", nil, alice), &mine)
	s.Require().Len(mine, 1)
	s.Equal(g.ID, mine[0].GiveawayID)

	var detailed []models.AdminGiveawayEntry
	s.decode(s.do(http.MethodGet, "/api/giveaway-entries/admin", nil, admin), &detailed)
	s.Require().Len(detailed, 2)
	s.ElementsMatch([]string{"alice", "bobby"}, []string{detailed[0].Username, detailed[1].Username})
	s.Equal("Steam Deck", detailed[0].GiveawayTitle)
}

func (s *ServerTestSuite) TestEnterGiveaway_Inactive() {
	admin := s.login("Pubzy")
	g := s.createGiveaway(admin)
	s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/api/giveaways/"+g.ID, nil, admin).Code)

	w := s.do(http.MethodPost, "/api/giveaways/"+g.ID+"/enter", nil, s.login("alice"))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "no longer active")
}

func (s *ServerTestSuite) TestLeaderboard() {
	s.backend.Seed(storage.TableLeaderboard,
		[]string{"id", "username", "Giveaway", "prize", "Date"},
		[]string{"1", "alice", "Deck", "Steam Deck", "2024-01-01"},
		[]string{"2", "bobby", "Switch", "Switch 2", "2024-03-01"},
		[]string{"3", "carol", "Keyboard", "Keychron", "2024-02-01"},
	)

	var board []models.LeaderboardEntry
	s.decode(s.do(http.MethodGet, "/api/leaderboard", nil), &board)
	s.Require().Len(board, 3)
	s.Equal([]string{"2024-03-01", "2024-02-01", "2024-01-01"}, []string{board[0].Date, board[1].Date, board[2].Date})
}

func (s *ServerTestSuite) TestAddLeaderboardEntry() {
	admin := s.login("Pubzy")

	w := s.do(http.MethodPost, "/api/leaderboard", gin.H{"username": "alice"}, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"message":"Username, giveaway and prize are required"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/leaderboard", gin.H{"username": "alice", "giveaway": "Deck", "prize": "Steam Deck"}, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry models.LeaderboardEntry
	s.decode(w, &entry)
	s.Equal("alice", entry.Username)
	s.Equal("Deck", entry.Giveaway)
	s.NotEmpty(entry.Date)

	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/leaderboard", gin.H{}, s.login("other1")).Code)
}

func (s *ServerTestSuite) TestContent() {
	s.backend.Seed(storage.TableUpdates,
		[]string{"id", "title", "content", "type", "iconName", "createdAt"},
		[]string{"1", "Old", "old news", "news", "", "2024-01-01T00:00:00.000Z"},
		[]string{"2", "New", "new news", "news", "gift", "2024-05-01T00:00:00.000Z"},
	)

	var updates []models.Update
	s.decode(s.do(http.MethodGet, "/api/updates", nil), &updates)
	s.Require().Len(updates, 2)
	s.Equal("New", updates[0].Title)

	w := s.do(http.MethodGet, "/api/videos", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *ServerTestSuite) TestAdminHealth() {
	admin := s.login("Pubzy")

	w := s.do(http.MethodGet, "/api/admin/health", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var health models.HealthResponse
	s.decode(w, &health)
	s.True(health.Backend.OK)
	s.True(health.Cache.OK)
	s.Equal(string(config.CacheTypeMemory), health.Cache.Type)
	s.NotEmpty(health.Version)

	s.backend.FailOn(memory.OpTables, errBackend)
	w = s.do(http.MethodGet, "/api/admin/health", nil, admin)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
