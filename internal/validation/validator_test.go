package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/validation"
)

type addBookRequest struct {
	Title       string `json:"title" validate:"required,max=500"`
	ISBN        string `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Status      string `json:"status,omitempty" validate:"omitempty,bookstatus"`
	CurrentPage int    `json:"current_page" validate:"gte=0"`
	Color       string `json:"color,omitempty" validate:"omitempty,listcolor"`
}

func validRequest() addBookRequest {
	return addBookRequest{
		Title:  "Dune",
		ISBN:   "978-0-306-40615-7",
		Status: "unread",
		Color:  "#3366ff",
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validRequest()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(*addBookRequest)
		wantField string
		wantMsg   string
	}{
		{"missing title", func(r *addBookRequest) { r.Title = "" }, "title", "is required"},
		{"bad checksum", func(r *addBookRequest) { r.ISBN = "9780306406158" }, "isbn", "valid ISBN"},
		{"unknown status", func(r *addBookRequest) { r.Status = "shelved" }, "status", "wishlist toRead reading read abandoned"},
		{"negative page", func(r *addBookRequest) { r.CurrentPage = -1 }, "current_page", "greater than or equal to 0"},
		{"bad color", func(r *addBookRequest) { r.Color = "blue" }, "color", "hex color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details[tt.wantField], tt.wantMsg)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := validRequest()
	req.CurrentPage = -5

	err := v.Validate(req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "current_page")
	assert.NotContains(t, details, "CurrentPage")
}

func TestValidator_ListColor(t *testing.T) {
	v := validation.New()

	type label struct {
		Color string `json:"color" validate:"listcolor"`
	}

	for _, c := range []string{"#3366ff", "#36F", "#3366FF"} {
		assert.NoError(t, v.Validate(label{Color: c}), c)
	}
	for _, c := range []string{"3366ff", "teal", "#33"} {
		assert.ErrorIs(t, v.Validate(label{Color: c}), domainerrors.ErrValidation, c)
	}
}
