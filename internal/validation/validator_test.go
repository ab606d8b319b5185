package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/promptvaultapp/promptvault-server/internal/errors"
	"github.com/promptvaultapp/promptvault-server/internal/validation"
)

type TestRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required"`
	Slug    string `json:"slug" validate:"omitempty,slug"`
	Sort    string `json:"sort" validate:"omitempty,oneof=recent popular updated created"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Title:   "Code Review",
		Content: "Review this code.",
		Slug:    "code-review",
		Sort:    "popular",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	longTitle := make([]byte, 201)
	for i := range longTitle {
		longTitle[i] = 'a'
	}

	tests := []struct {
		name       string
		req        TestRequest
		wantErrMsg string
	}{
		{
			name:       "missing required field",
			req:        TestRequest{Title: "T"},
			wantErrMsg: "content",
		},
		{
			name:       "title too long",
			req:        TestRequest{Title: string(longTitle), Content: "x"},
			wantErrMsg: "title",
		},
		{
			name:       "bad slug shape",
			req:        TestRequest{Title: "T", Content: "x", Slug: "Not A Slug"},
			wantErrMsg: "slug",
		},
		{
			name:       "slug with trailing hyphen",
			req:        TestRequest{Title: "T", Content: "x", Slug: "bad-"},
			wantErrMsg: "slug",
		},
		{
			name:       "unknown sort",
			req:        TestRequest{Title: "T", Content: "x", Sort: "sideways"},
			wantErrMsg: "sort",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var appErr *apperrors.Error
			assert.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())

			details, ok := appErr.Details.(map[string]string)
			assert.True(t, ok)
			assert.Contains(t, details, tt.wantErrMsg)
		})
	}
}

func TestValidator_EmptyOptionalFieldsPass(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{Title: "T", Content: "x"})
	assert.NoError(t, err)
}
