package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/akazawan/libris/internal/action"
	"github.com/akazawan/libris/internal/config"
	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/internal/resolve"
	"github.com/akazawan/libris/internal/search"
	"github.com/akazawan/libris/internal/session"
	"github.com/akazawan/libris/pkg/models"
)

type ServerSuite struct {
	suite.Suite
	ctx      context.Context
	sessions *session.Manager
	handler  http.Handler
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()

	store, err := sqlite.NewStore(sqlite.StoreConfig{
		Path: filepath.Join(s.T().TempDir(), "test.db"),
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = store.Close() })

	books := search.NewIndex(store, search.CollectionBook)
	authors := search.NewIndex(store, search.CollectionAuthor)
	catalog := sqlite.NewCatalogStore(store)
	loans := sqlite.NewLoanStore(store, config.DefaultMaxBooks, config.DefaultRentDays)

	records := []models.CatalogRecord{
		{RecordID: 1, Title: "Dune", AuthorIDs: []int64{1}, AuthorNames: []string{"Frank Herbert"}},
		{RecordID: 2, Title: "Dune Messiah", AuthorIDs: []int64{1}, AuthorNames: []string{"Frank Herbert"}},
		{RecordID: 3, Title: "The Anne Frank Story", AuthorIDs: []int64{2}, AuthorNames: []string{"Ruth Wells"}},
	}
	seenAuthors := make(map[int64]struct{})
	for _, rec := range records {
		s.Require().NoError(catalog.AddRecord(s.ctx, rec))
		s.Require().NoError(books.Add(s.ctx, rec.RecordID, rec.Title))
		for i, id := range rec.AuthorIDs {
			if _, ok := seenAuthors[id]; ok {
				continue
			}
			seenAuthors[id] = struct{}{}
			s.Require().NoError(authors.Add(s.ctx, id, rec.AuthorNames[i]))
		}
	}

	s.sessions = session.NewManager()
	srv := New(
		store,
		action.NewSearchAction(books, authors, catalog, config.DefaultDisplayLimit),
		action.NewBorrowAction(loans, books),
		resolve.New(books, authors, true),
		s.sessions,
	)
	s.handler = srv.Router()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

// post sends a JSON body and decodes the JSON response into out.
func (s *ServerSuite) post(path string, body, out interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if out != nil {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (s *ServerSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *ServerSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/action/search", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestSearchResolveBorrowFlow() {
	var searchResp searchResponse
	rec := s.post("/action/search", map[string]interface{}{"title": "dune"}, &searchResp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotEmpty(searchResp.ConversationID)
	s.True(searchResp.HasListSelection)
	s.Len(searchResp.Candidates, 2)

	var resolveResp resolveResponse
	rec = s.post("/action/resolve", map[string]interface{}{
		"conversation_id":   searchResp.ConversationID,
		"extracted_ordinal": "second",
	}, &resolveResp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(resolveResp.SelectedIndex)
	s.Equal(1, *resolveResp.SelectedIndex)
	s.Require().NotNil(resolveResp.Selected)
	s.Equal("Dune Messiah", resolveResp.Selected.Title)

	var borrowResp action.BorrowOutcome
	rec = s.post("/action/borrow", map[string]interface{}{
		"conversation_id": searchResp.ConversationID,
		"user_id":         7,
	}, &borrowResp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeOK, borrowResp.Outcome)
	s.Equal("Dune Messiah", borrowResp.BookTitle)
	s.NotEmpty(borrowResp.Due)

	// The completed conversation is gone.
	s.Equal(0, s.sessions.Len())
	rec = s.post("/action/resolve", map[string]interface{}{
		"conversation_id":   searchResp.ConversationID,
		"extracted_ordinal": "first",
	}, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestResolveUnknownConversation() {
	rec := s.post("/action/resolve", map[string]interface{}{
		"conversation_id":   "no-such-conversation",
		"extracted_ordinal": "first",
	}, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestSearchNoMatchOpensNoSession() {
	var resp searchResponse
	rec := s.post("/action/search", map[string]interface{}{"title": "zzzzqqqq"}, &resp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeNoMatch, resp.Outcome)
	s.Empty(resp.ConversationID)
	s.Equal(0, s.sessions.Len())
}

func (s *ServerSuite) TestSearchDropsAuthorContainedInTitle() {
	// "anne frank" was extracted both as part of the title and as a person;
	// the contained person span is discarded, so the search grounds on the
	// title alone instead of failing on a nonexistent author.
	var resp searchResponse
	rec := s.post("/action/search", map[string]interface{}{
		"title":   "the anne frank story",
		"authors": []string{"anne frank"},
		"entity_spans": []models.EntitySpan{
			{Kind: models.EntityTitle, Text: "the anne frank story", Start: 5, End: 25},
			{Kind: models.EntityPerson, Text: "anne frank", Start: 9, End: 19},
		},
	}, &resp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeOK, resp.Outcome)
	s.Require().Len(resp.Candidates, 1)
	s.Equal("The Anne Frank Story", resp.Candidates[0].Title)
	s.Equal(0, resp.SelectedIndex)
}

func (s *ServerSuite) TestBorrowExplicitBookID() {
	var resp action.BorrowOutcome
	rec := s.post("/action/borrow", map[string]interface{}{
		"user_id": 7,
		"book_id": 1,
	}, &resp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeOK, resp.Outcome)
	s.Equal("Dune", resp.BookTitle)

	// Second attempt by the same user.
	rec = s.post("/action/borrow", map[string]interface{}{
		"user_id": 7,
		"book_id": 1,
	}, &resp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeAlreadyBorrowed, resp.Outcome)
}

func (s *ServerSuite) TestBorrowWithoutSelection() {
	rec := s.post("/action/borrow", map[string]interface{}{"user_id": 7}, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestReturnFlow() {
	var borrowResp action.BorrowOutcome
	s.post("/action/borrow", map[string]interface{}{"user_id": 7, "book_id": 1}, &borrowResp)
	s.Require().Equal(models.OutcomeOK, borrowResp.Outcome)

	var returnResp action.ReturnOutcome
	rec := s.post("/action/return", map[string]interface{}{"user_id": 7, "book_id": 1}, &returnResp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeOK, returnResp.Outcome)
	s.Equal("Dune", returnResp.BookTitle)

	rec = s.post("/action/return", map[string]interface{}{"user_id": 7, "book_id": 1}, &returnResp)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(models.OutcomeNoMatch, returnResp.Outcome)
}
