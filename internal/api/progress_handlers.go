package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerProgressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setBookStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/status",
		Summary:     "Set status",
		Description: "Moves a book to a new status. Reading restarts progress; read completes it.",
		Tags:        []string{"Reading"},
	}, s.handleSetStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCandidateStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/status",
		Summary:     "Set status of a catalog result",
		Description: "Sets the status of a catalog result, adding it to the library first when needed",
		Tags:        []string{"Reading"},
	}, s.handleSetCandidateStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update progress",
		Description: "Records the current page. Pages before the current page are rejected; an advance records a reading session.",
		Tags:        []string{"Reading"},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCandidateProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/progress",
		Summary:     "Update progress of a catalog result",
		Description: "Records the current page of a catalog result, adding it to the library first when needed",
		Tags:        []string{"Reading"},
	}, s.handleUpdateCandidateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "startReading",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/start",
		Summary:     "Start reading",
		Description: "Moves a book to reading. A finished book starts over from page zero.",
		Tags:        []string{"Reading"},
	}, s.handleStartReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/finish",
		Summary:     "Finish book",
		Description: "Marks a book read and moves its progress to the last page",
		Tags:        []string{"Reading"},
	}, s.handleFinishBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/sessions",
		Summary:     "List reading sessions",
		Description: "Returns the reading sessions of a book, oldest first",
		Tags:        []string{"Reading"},
	}, s.handleListSessions)
}

// SetStatusRequest is the request body for a status change.
type SetStatusRequest struct {
	Status string `json:"status" doc:"New status (wishlist, toRead, reading, read, abandoned)"`
}

// SetStatusInput wraps the status change for Huma.
type SetStatusInput struct {
	ID   string `path:"id" doc:"Book id"`
	Body SetStatusRequest
}

// CandidateStatusRequest is a status change on a catalog result.
type CandidateStatusRequest struct {
	Book   BookCandidate `json:"book" doc:"Catalog result"`
	Status string        `json:"status" doc:"New status"`
}

// CandidateStatusInput wraps the candidate status change for Huma.
type CandidateStatusInput struct {
	Body CandidateStatusRequest
}

// ProgressRequest is the request body for a progress update.
type ProgressRequest struct {
	CurrentPage int    `json:"current_page" minimum:"0" doc:"Page reached"`
	Notes       string `json:"notes,omitempty" maxLength:"2000" doc:"Optional notes stored on the reading session"`
}

// ProgressInput wraps the progress update for Huma.
type ProgressInput struct {
	ID   string `path:"id" doc:"Book id"`
	Body ProgressRequest
}

// CandidateProgressRequest is a progress update on a catalog result.
type CandidateProgressRequest struct {
	Book        BookCandidate `json:"book" doc:"Catalog result"`
	CurrentPage int           `json:"current_page" minimum:"0" doc:"Page reached"`
	Notes       string        `json:"notes,omitempty" maxLength:"2000" doc:"Optional session notes"`
}

// CandidateProgressInput wraps the candidate progress update for Huma.
type CandidateProgressInput struct {
	Body CandidateProgressRequest
}

// ProgressResponse reports the outcome of a progress update.
type ProgressResponse struct {
	Book      BookResponse     `json:"book" doc:"Updated book"`
	Session   *SessionResponse `json:"session,omitempty" doc:"Recorded session; absent when the page did not advance"`
	PagesRead int              `json:"pages_read" doc:"Pages read in this update"`
	Finished  bool             `json:"finished" doc:"Whether this update finished the book"`
}

// ProgressOutput wraps the progress response for Huma.
type ProgressOutput struct {
	Body ProgressResponse
}

// SessionsResponse lists reading sessions.
type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions" doc:"Reading sessions, oldest first"`
	Total    int               `json:"total" doc:"Number of sessions"`
}

// SessionsOutput wraps the sessions response for Huma.
type SessionsOutput struct {
	Body SessionsResponse
}

func (s *Server) handleSetStatus(ctx context.Context, input *SetStatusInput) (*BookOutput, error) {
	return s.setStatus(ctx, service.ByID(input.ID), input.Body.Status)
}

func (s *Server) handleSetCandidateStatus(ctx context.Context, input *CandidateStatusInput) (*BookOutput, error) {
	return s.setStatus(ctx, service.ByCandidate(input.Body.Book.toDomain()), input.Body.Status)
}

func (s *Server) setStatus(ctx context.Context, ref service.BookRef, raw string) (*BookOutput, error) {
	status, err := parseStatus(raw)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, domainerrors.Validation("status is required")
	}

	book, err := s.services.Library.SetStatus(ctx, ref, status)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *ProgressInput) (*ProgressOutput, error) {
	return s.updateProgress(ctx, service.ByID(input.ID), input.Body.CurrentPage, input.Body.Notes)
}

func (s *Server) handleUpdateCandidateProgress(ctx context.Context, input *CandidateProgressInput) (*ProgressOutput, error) {
	return s.updateProgress(ctx, service.ByCandidate(input.Body.Book.toDomain()), input.Body.CurrentPage, input.Body.Notes)
}

func (s *Server) updateProgress(ctx context.Context, ref service.BookRef, page int, notes string) (*ProgressOutput, error) {
	result, err := s.services.Library.UpdateProgress(ctx, ref, page, notes)
	if err != nil {
		// The book may be saved even when its session is not.
		if result != nil && result.Book != nil {
			s.logger.Warn("progress saved without session",
				"book_id", result.Book.ID,
				"page", page,
				"error", err,
			)
		}
		return nil, err
	}

	resp := ProgressResponse{
		Book:      toBookResponse(result.Book),
		PagesRead: result.Change.PagesRead(),
		Finished:  result.Change.Finished,
	}
	if result.Session != nil {
		session := toSessionResponse(result.Session)
		resp.Session = &session
	}
	return &ProgressOutput{Body: resp}, nil
}

func (s *Server) handleStartReading(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.StartReading(ctx, service.ByID(input.ID))
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleFinishBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.Finish(ctx, service.ByID(input.ID))
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleListSessions(ctx context.Context, input *BookIDInput) (*SessionsOutput, error) {
	sessions, err := s.services.Library.Sessions(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionResponse(session))
	}
	return &SessionsOutput{Body: SessionsResponse{Sessions: out, Total: len(out)}}, nil
}
