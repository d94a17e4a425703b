package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DatabaseTestSuite struct {
	suite.Suite
	ctx    context.Context
	client *Client
}

func (s *DatabaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, err := New(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.client = client
	s.Require().NoError(s.client.AddTable(s.ctx, "Users"))
}

func (s *DatabaseTestSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
}

func (s *DatabaseTestSuite) TestTables() {
	s.Require().NoError(s.client.AddTable(s.ctx, "Giveaways"))
	s.Error(s.client.AddTable(s.ctx, "Users"))

	tables, err := s.client.Tables(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Users", "Giveaways"}, tables)
}

func (s *DatabaseTestSuite) TestEmptyTable() {
	header, err := s.client.Header(s.ctx, "Users")
	s.Require().NoError(err)
	s.Nil(header)

	rows, err := s.client.Values(s.ctx, "Users")
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *DatabaseTestSuite) TestAppendAndUpdate() {
	s.Require().NoError(s.client.SetHeader(s.ctx, "Users", []string{"id", "username"}))
	s.Require().NoError(s.client.Append(s.ctx, "Users", []string{"1", "alice"}))
	s.Require().NoError(s.client.Append(s.ctx, "Users", []string{"2", "bob"}))
	s.Require().NoError(s.client.UpdateRow(s.ctx, "Users", 3, []string{"2", "carol"}))

	header, err := s.client.Header(s.ctx, "Users")
	s.Require().NoError(err)
	s.Equal([]string{"id", "username"}, header)

	rows, err := s.client.Values(s.ctx, "Users")
	s.Require().NoError(err)
	s.Equal([][]string{{"id", "username"}, {"1", "alice"}, {"2", "carol"}}, rows)
}

func (s *DatabaseTestSuite) TestUnknownTable() {
	_, err := s.client.Values(s.ctx, "Nope")
	s.Error(err)
	s.Error(s.client.Append(s.ctx, "Nope", []string{"x"}))
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}
