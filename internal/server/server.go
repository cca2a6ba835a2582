// Package server exposes the decision core to the dialogue layer over HTTP.
//
// The dialogue layer owns NLU and utterance templating; these endpoints take
// its structured extractions and return structured outcomes, one
// conversation id per disambiguation flow.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/internal/action"
	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/internal/entity"
	"github.com/akazawan/libris/internal/resolve"
	"github.com/akazawan/libris/internal/session"
	"github.com/akazawan/libris/pkg/models"
)

// Server wires the core components behind the action endpoints.
type Server struct {
	store    *sqlite.Store
	search   *action.SearchAction
	borrow   *action.BorrowAction
	resolver *resolve.Resolver
	sessions *session.Manager
}

// New creates a server over fully constructed components.
func New(store *sqlite.Store, search *action.SearchAction, borrow *action.BorrowAction, resolver *resolve.Resolver, sessions *session.Manager) *Server {
	return &Server{
		store:    store,
		search:   search,
		borrow:   borrow,
		resolver: resolver,
		sessions: sessions,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Post("/action/search", s.handleSearch)
	r.Post("/action/resolve", s.handleResolve)
	r.Post("/action/borrow", s.handleBorrow)
	r.Post("/action/return", s.handleReturn)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchRequest carries one utterance's extractions for a fresh search.
type searchRequest struct {
	ConversationID string              `json:"conversation_id"`
	Title          string              `json:"title"`
	Authors        []string            `json:"authors"`
	Spans          []models.EntitySpan `json:"entity_spans"`
}

type searchResponse struct {
	ConversationID string `json:"conversation_id,omitempty"`
	action.SearchOutcome
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	authors := dropContainedAuthors(req.Title, req.Authors, req.Spans)

	out, err := s.search.Run(r.Context(), action.SearchParams{
		Title:   req.Title,
		Authors: authors,
	})
	if err != nil {
		log.Error().Err(err).Msg("catalog search failed")
		writeJSON(w, http.StatusOK, searchResponse{
			SearchOutcome: action.SearchOutcome{Outcome: models.OutcomeStorageFailure},
		})
		return
	}

	resp := searchResponse{SearchOutcome: *out}
	if out.HasFoundBook {
		sess := s.sessions.Begin(req.ConversationID, out.Candidates)
		// Consume the form's ask-turn so the next /resolve call carries a
		// real answer.
		if _, err := s.resolver.Step(r.Context(), sess.State, models.TurnSignal{}); err != nil {
			log.Error().Err(err).Msg("resolver priming failed")
		}
		resp.ConversationID = sess.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveRequest carries one follow-up utterance for a live conversation.
type resolveRequest struct {
	ConversationID string `json:"conversation_id"`
	models.TurnSignal
}

type resolveResponse struct {
	models.TurnResult
	Selected *models.CatalogRecord `json:"selected,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, ok := s.sessions.Get(req.ConversationID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown conversation"})
		return
	}

	result, err := s.resolver.Step(r.Context(), sess.State, req.TurnSignal)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("resolve failed")
		writeJSON(w, http.StatusOK, resolveResponse{
			TurnResult: models.TurnResult{Outcome: models.OutcomeStorageFailure},
		})
		return
	}

	resp := resolveResponse{TurnResult: result}
	if sess.State.Resolved() {
		rec := sess.State.Selected()
		resp.Selected = &rec
	}
	writeJSON(w, http.StatusOK, resp)
}

// borrowRequest identifies the user and the book; BookID may be omitted when
// the conversation already resolved a selection.
type borrowRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         int64  `json:"user_id"`
	BookID         int64  `json:"book_id"`
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	bookID, ok := s.bookFromRequest(w, req.ConversationID, req.BookID)
	if !ok {
		return
	}

	out, _ := s.borrow.Borrow(r.Context(), req.UserID, bookID)
	if out.Outcome.Terminal() && req.ConversationID != "" {
		s.sessions.End(req.ConversationID)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	bookID, ok := s.bookFromRequest(w, req.ConversationID, req.BookID)
	if !ok {
		return
	}

	out, _ := s.borrow.Return(r.Context(), req.UserID, bookID)
	if out.Outcome.Terminal() && req.ConversationID != "" {
		s.sessions.End(req.ConversationID)
	}
	writeJSON(w, http.StatusOK, out)
}

// bookFromRequest resolves the target book id: explicit id wins, otherwise
// the conversation's resolved selection.
func (s *Server) bookFromRequest(w http.ResponseWriter, conversationID string, bookID int64) (int64, bool) {
	if bookID != 0 {
		return bookID, true
	}
	sess, ok := s.sessions.Get(conversationID)
	if !ok || !sess.State.Resolved() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no book selected"})
		return 0, false
	}
	return sess.State.Selected().RecordID, true
}

// dropContainedAuthors applies the entity-overlap rule before searching:
// author values whose span sits inside the title span are discarded.
func dropContainedAuthors(title string, authors []string, spans []models.EntitySpan) []string {
	if title == "" || len(authors) == 0 || len(spans) == 0 {
		return authors
	}
	var titleSpan *models.EntitySpan
	var personSpans []models.EntitySpan
	var personValues []string
	for i := range spans {
		switch spans[i].Kind {
		case models.EntityTitle:
			if titleSpan == nil {
				titleSpan = &spans[i]
			}
		case models.EntityPerson:
			personSpans = append(personSpans, spans[i])
			personValues = append(personValues, spans[i].Text)
		}
	}
	if titleSpan == nil || len(personSpans) == 0 {
		return authors
	}
	drop := entity.ResolveOverlap(*titleSpan, personSpans, personValues)
	return entity.FilterPersons(authors, drop)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// Serve runs the HTTP server until ctx is canceled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
