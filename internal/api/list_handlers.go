package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createList",
		Method:        http.MethodPost,
		Path:          "/api/v1/lists",
		Summary:       "Create list",
		Description:   "Creates an empty book list",
		Tags:          []string{"Lists"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists",
		Summary:     "List lists",
		Description: "Returns every book list",
		Tags:        []string{"Lists"},
	}, s.handleListLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getList",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Get list",
		Description: "Returns a book list by id",
		Tags:        []string{"Lists"},
	}, s.handleGetList)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateList",
		Method:      http.MethodPatch,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Update list",
		Description: "Updates the name, description, color or icon of a list. Omitted fields are kept.",
		Tags:        []string{"Lists"},
	}, s.handleUpdateList)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteList",
		Method:        http.MethodDelete,
		Path:          "/api/v1/lists/{id}",
		Summary:       "Delete list",
		Description:   "Deletes a list. Its books stay in the library.",
		Tags:          []string{"Lists"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "listListBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}/books",
		Summary:     "List books in list",
		Description: "Returns the books of a list in list order. Books no longer in the library are skipped.",
		Tags:        []string{"Lists"},
	}, s.handleListListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToList",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists/{id}/books",
		Summary:     "Add book to list",
		Description: "Adds a library book, or a catalog result after adding it to the library. Adding a member again changes nothing.",
		Tags:        []string{"Lists"},
	}, s.handleAddBookToList)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}/books/{bookId}",
		Summary:     "Remove book from list",
		Description: "Takes a book off a list. The book stays in the library.",
		Tags:        []string{"Lists"},
	}, s.handleRemoveBookFromList)
}

// CreateListRequest is the request body for creating a list.
type CreateListRequest struct {
	Name        string `json:"name" minLength:"1" maxLength:"100" doc:"List name"`
	Description string `json:"description,omitempty" maxLength:"500" doc:"List description"`
	Color       string `json:"color,omitempty" doc:"Hex display color, e.g. #3366ff"`
	Icon        string `json:"icon,omitempty" maxLength:"50" doc:"Display icon name"`
}

// CreateListInput wraps the create list request for Huma.
type CreateListInput struct {
	Body CreateListRequest
}

// UpdateListRequest is the request body for updating a list.
type UpdateListRequest struct {
	Name        *string `json:"name,omitempty" maxLength:"100" doc:"New name"`
	Description *string `json:"description,omitempty" maxLength:"500" doc:"New description"`
	Color       *string `json:"color,omitempty" doc:"New hex display color"`
	Icon        *string `json:"icon,omitempty" maxLength:"50" doc:"New icon name"`
}

// UpdateListInput wraps the update list request for Huma.
type UpdateListInput struct {
	ID   string `path:"id" doc:"List id"`
	Body UpdateListRequest
}

// ListIDInput identifies a list.
type ListIDInput struct {
	ID string `path:"id" doc:"List id"`
}

// ListOutput wraps a single list for Huma.
type ListOutput struct {
	Body ListResponse
}

// ListsResponse contains every list.
type ListsResponse struct {
	Lists []ListResponse `json:"lists" doc:"Book lists"`
	Total int            `json:"total" doc:"Number of lists"`
}

// ListsOutput wraps the lists response for Huma.
type ListsOutput struct {
	Body ListsResponse
}

// AddToListRequest names a book by library id or by catalog result.
type AddToListRequest struct {
	BookID string         `json:"book_id,omitempty" doc:"Library book id"`
	Book   *BookCandidate `json:"book,omitempty" doc:"Catalog result, added to the library first"`
}

// AddToListInput wraps the add to list request for Huma.
type AddToListInput struct {
	ID   string `path:"id" doc:"List id"`
	Body AddToListRequest
}

// ListMembershipResponse reports a membership change.
type ListMembershipResponse struct {
	List    ListResponse  `json:"list" doc:"List after the change"`
	Book    *BookResponse `json:"book,omitempty" doc:"Library entry of the added catalog result"`
	Changed bool          `json:"changed" doc:"Whether the list changed; always true for catalog results"`
}

// ListMembershipOutput wraps the membership response for Huma.
type ListMembershipOutput struct {
	Body ListMembershipResponse
}

// RemoveFromListInput identifies a list member.
type RemoveFromListInput struct {
	ID     string `path:"id" doc:"List id"`
	BookID string `path:"bookId" doc:"Book id"`
}

func (s *Server) handleCreateList(ctx context.Context, input *CreateListInput) (*ListOutput, error) {
	list, err := s.services.Lists.CreateList(ctx, service.CreateListInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Color:       input.Body.Color,
		Icon:        input.Body.Icon,
	})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleListLists(ctx context.Context, _ *struct{}) (*ListsOutput, error) {
	lists, err := s.services.Lists.ListLists(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ListResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListResponse(l))
	}
	return &ListsOutput{Body: ListsResponse{Lists: out, Total: len(out)}}, nil
}

func (s *Server) handleGetList(ctx context.Context, input *ListIDInput) (*ListOutput, error) {
	list, err := s.services.Lists.GetList(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleUpdateList(ctx context.Context, input *UpdateListInput) (*ListOutput, error) {
	list, err := s.services.Lists.UpdateList(ctx, input.ID, service.UpdateListInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Color:       input.Body.Color,
		Icon:        input.Body.Icon,
	})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleDeleteList(ctx context.Context, input *ListIDInput) (*struct{}, error) {
	if err := s.services.Lists.DeleteList(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleListListBooks(ctx context.Context, input *ListIDInput) (*ListBooksOutput, error) {
	books, err := s.services.Lists.ListBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{
		Body: ListBooksResponse{Books: toBookResponses(books), Total: len(books)},
	}, nil
}

func (s *Server) handleAddBookToList(ctx context.Context, input *AddToListInput) (*ListMembershipOutput, error) {
	if input.Body.BookID != "" && input.Body.Book != nil {
		return nil, domainerrors.Validation("send either book_id or book, not both")
	}
	ref, err := bookRef(input.Body.BookID, input.Body.Book)
	if err != nil {
		return nil, err
	}

	if ref.Candidate != nil {
		list, book, err := s.services.Lists.AddToListFromCatalog(ctx, input.ID, ref.Candidate)
		if err != nil {
			return nil, err
		}
		resp := toBookResponse(book)
		return &ListMembershipOutput{
			Body: ListMembershipResponse{List: toListResponse(list), Book: &resp, Changed: true},
		}, nil
	}

	list, added, err := s.services.Lists.AddBook(ctx, input.ID, ref.ID)
	if err != nil {
		return nil, err
	}
	return &ListMembershipOutput{
		Body: ListMembershipResponse{List: toListResponse(list), Changed: added},
	}, nil
}

func (s *Server) handleRemoveBookFromList(ctx context.Context, input *RemoveFromListInput) (*ListMembershipOutput, error) {
	list, removed, err := s.services.Lists.RemoveBook(ctx, input.ID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &ListMembershipOutput{
		Body: ListMembershipResponse{List: toListResponse(list), Changed: removed},
	}, nil
}
