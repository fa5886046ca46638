// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "single wrap",
			err:  fmt.Errorf("event is full: %w", ErrConflict),
			want: "event is full",
		},
		{
			name: "nested wrap",
			err:  fmt.Errorf("apply to club: %w", fmt.Errorf("club is full: %w", ErrConflict)),
			want: "club is full",
		},
		{
			name: "bare sentinel",
			err:  ErrConflict,
			want: "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err, ErrConflict))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("get club: %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "club not found",
		},
		{
			name:       "sub resource not found",
			err:        NotFoundError("applicant"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "applicant not found",
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("club is full: %w", ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
			wantMsg:    "club is full",
		},
		{
			name:       "invalid input",
			err:        fmt.Errorf("title cannot be null: %w", ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantMsg:    "title cannot be null",
		},
		{
			name:       "unexpected",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err, "club")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}
