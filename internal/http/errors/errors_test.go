package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/i18n"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteError(rec, req, ErrInvalidAppID)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid App ID", body["message"])
	assert.Equal(t, "INVALID_APP_ID", body["code"])
	assert.NotContains(t, body, "detail")
}

func TestWriteError_GenericIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, nil, fmt.Errorf("pg: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "An error occurred. Please try again", body["message"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteError_Translated(t *testing.T) {
	tr, err := i18n.New("en")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(i18n.WithLanguage(req.Context(), tr, tr.Match("es")))
	rec := httptest.NewRecorder()

	WriteError(rec, req, ErrInsufficientPermissions)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Permisos insuficientes", decode(t, rec)["message"])
}

func TestCopiesDoNotMutateBase(t *testing.T) {
	cause := fmt.Errorf("boom")
	e := ErrInternal.WithCause(cause).WithMessage("An error occurred during login. Please try again")

	assert.Nil(t, ErrInternal.Err)
	assert.Equal(t, "An error occurred. Please try again", ErrInternal.Message)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "INTERNAL_ERROR")
}
