package sheets_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/pubzy/giveaways/internal/sheets/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type StoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *memory.Backend
	clock   *clock
	store   *sheets.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = memory.New()
	s.clock = &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	lookups := cache.NewTTLCache[sheets.Lookup](cache.New(nil), "lookup-", time.Minute, cache.WithClock(s.clock.Now))
	s.store = sheets.New(s.backend, lookups)

	s.backend.Seed("Users",
		[]string{"id", "username", "isAdmin"},
		[]string{"1", "Alice", "false"},
		[]string{"2", "bob"},
		[]string{"3", "Alice", "true"},
	)
}

func (s *StoreTestSuite) TestFindOne_FirstMatch() {
	rec, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"username": "Alice"})
	s.Require().NoError(err)
	s.True(found)
	s.Equal("1", rec["id"])
}

func (s *StoreTestSuite) TestFindOne_ShortRowReadsEmpty() {
	rec, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "2"})
	s.Require().NoError(err)
	s.True(found)
	s.Equal("", rec["isAdmin"])
}

func (s *StoreTestSuite) TestFindOne_UnknownColumnNeverMatches() {
	_, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"email": ""})
	s.Require().NoError(err)
	s.False(found)
}

func (s *StoreTestSuite) TestFindOne_CachedWithinTTL() {
	_, _, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "1"})
	s.Require().NoError(err)
	s.Equal(1, s.backend.Calls(memory.OpValues))

	// a write to the backend is not visible while the entry is fresh
	s.backend.Seed("Users", []string{"id", "username"}, []string{"1", "Renamed"})
	s.clock.now = s.clock.now.Add(59 * time.Second)

	rec, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "1"})
	s.Require().NoError(err)
	s.True(found)
	s.Equal("Alice", rec["username"])
	s.Equal(1, s.backend.Calls(memory.OpValues))

	s.clock.now = s.clock.now.Add(2 * time.Second)
	rec, _, err = s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "1"})
	s.Require().NoError(err)
	s.Equal("Renamed", rec["username"])
	s.Equal(2, s.backend.Calls(memory.OpValues))
}

func (s *StoreTestSuite) TestFindOne_MissesAreCached() {
	_, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "9"})
	s.Require().NoError(err)
	s.False(found)

	_, found, err = s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "9"})
	s.Require().NoError(err)
	s.False(found)
	s.Equal(1, s.backend.Calls(memory.OpValues))
}

func (s *StoreTestSuite) TestFindOne_KeyIndependentOfQueryOrder() {
	q1 := sheets.Query{}
	q1["id"] = "3"
	q1["username"] = "Alice"
	q2 := sheets.Query{}
	q2["username"] = "Alice"
	q2["id"] = "3"

	_, _, err := s.store.FindOne(s.ctx, "Users", q1)
	s.Require().NoError(err)
	rec, found, err := s.store.FindOne(s.ctx, "Users", q2)
	s.Require().NoError(err)
	s.True(found)
	s.Equal("true", rec["isAdmin"])
	s.Equal(1, s.backend.Calls(memory.OpValues))
}

func (s *StoreTestSuite) TestFindOne_BackendError() {
	boom := errors.New("quota exceeded")
	s.backend.FailOn(memory.OpValues, boom)

	_, _, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "1"})
	s.ErrorIs(err, boom)

	// failures are not cached
	s.backend.FailOn(memory.OpValues, nil)
	_, found, err := s.store.FindOne(s.ctx, "Users", sheets.Query{"id": "1"})
	s.Require().NoError(err)
	s.True(found)
}

func (s *StoreTestSuite) TestFindAll() {
	all, err := s.store.FindAll(s.ctx, "Users", nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	alices, err := s.store.FindAll(s.ctx, "Users", sheets.Query{"username": "Alice"})
	s.Require().NoError(err)
	s.Len(alices, 2)

	// never cached
	_, err = s.store.FindAll(s.ctx, "Users", nil)
	s.Require().NoError(err)
	s.Equal(3, s.backend.Calls(memory.OpValues))
}

func (s *StoreTestSuite) TestFindAll_EmptyTable() {
	s.backend.Seed("Entries")
	all, err := s.store.FindAll(s.ctx, "Entries", nil)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *StoreTestSuite) TestInsertOne_FollowsHeaderOrder() {
	input := sheets.Record{"isAdmin": "false", "username": "carol", "id": "4", "extra": "x"}
	got, err := s.store.InsertOne(s.ctx, "Users", input)
	s.Require().NoError(err)
	s.Equal(input, got)

	rows := s.backend.Rows("Users")
	s.Equal([]string{"4", "carol", "false"}, rows[len(rows)-1])
}

func (s *StoreTestSuite) TestInsertOne_MissingColumnsAreEmpty() {
	_, err := s.store.InsertOne(s.ctx, "Users", sheets.Record{"id": "5"})
	s.Require().NoError(err)

	rows := s.backend.Rows("Users")
	s.Equal([]string{"5", "", ""}, rows[len(rows)-1])
}

func (s *StoreTestSuite) TestUpdateOne_MergesPatch() {
	got, found, err := s.store.UpdateOne(s.ctx, "Users", sheets.Query{"username": "Alice"}, sheets.Record{"isAdmin": "true"})
	s.Require().NoError(err)
	s.True(found)
	s.Equal(sheets.Record{"isAdmin": "true"}, got)

	rows := s.backend.Rows("Users")
	s.Equal([]string{"1", "Alice", "true"}, rows[1])
	s.Equal([]string{"3", "Alice", "true"}, rows[3])
}

func (s *StoreTestSuite) TestUpdateOne_EmptyValueOverwrites() {
	_, found, err := s.store.UpdateOne(s.ctx, "Users", sheets.Query{"id": "1"}, sheets.Record{"username": ""})
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]string{"1", "", "false"}, s.backend.Rows("Users")[1])
}

func (s *StoreTestSuite) TestUpdateOne_NoMatch() {
	_, found, err := s.store.UpdateOne(s.ctx, "Users", sheets.Query{"id": "42"}, sheets.Record{"username": "x"})
	s.Require().NoError(err)
	s.False(found)
	s.Equal(0, s.backend.Calls(memory.OpUpdateRow))
}

func (s *StoreTestSuite) TestUpdateOne_PadsShortRow() {
	_, found, err := s.store.UpdateOne(s.ctx, "Users", sheets.Query{"id": "2"}, sheets.Record{"isAdmin": "false"})
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]string{"2", "bob", "false"}, s.backend.Rows("Users")[2])
}

func (s *StoreTestSuite) TestInitialize() {
	s.backend.Seed("Entries")
	err := s.store.Initialize(s.ctx,
		sheets.Schema{Table: "Users", Columns: []string{"id", "username", "email"}},
		sheets.Schema{Table: "Entries", Columns: []string{"id", "email"}},
		sheets.Schema{Table: "Videos", Columns: []string{"id", "videoId"}},
	)
	s.Require().NoError(err)

	// existing header is untouched
	s.Equal([]string{"id", "username", "isAdmin"}, s.backend.Rows("Users")[0])
	s.Equal([][]string{{"id", "email"}}, s.backend.Rows("Entries"))
	s.Equal([][]string{{"id", "videoId"}}, s.backend.Rows("Videos"))
	s.Equal(1, s.backend.Calls(memory.OpAddTable))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

type item struct {
	ID    string
	Count int
}

var itemCodec = sheets.Codec[item]{
	Schema: sheets.Schema{Table: "Items", Columns: []string{"id", "count"}},
	Encode: func(i item) sheets.Record {
		return sheets.Record{"id": i.ID, "count": strconv.Itoa(i.Count), "ignored": "x"}
	},
	Decode: func(r sheets.Record) (item, error) {
		n, err := strconv.Atoi(r["count"])
		if err != nil {
			return item{}, err
		}
		return item{ID: r["id"], Count: n}, nil
	},
}

func TestTable_TypedAccess(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	backend.Seed("Items", []string{"id", "count"}, []string{"", "many"}, []string{"", "3"})
	items := sheets.NewTable(sheets.New(backend, nil), itemCodec)

	_, err := items.Insert(ctx, item{ID: "a", Count: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "12"}, backend.Rows("Items")[3])

	// the undecodable first row is skipped, the id-less second row is kept
	all, err := items.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "", Count: 3}, {ID: "a", Count: 12}}, all)

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	found, err := items.Patch(ctx, sheets.Query{"id": "a"}, sheets.Record{"count": "7"})
	require.NoError(t, err)
	assert.True(t, found)

	got, ok, err := items.FindOne(ctx, sheets.Query{"id": "a"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, got.Count)
}
