package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/essgate/internal/i18n"
)

// envelope es la forma de todas las respuestas de error.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe err como envelope {success:false,message,code}.
// El mensaje se traduce con el idioma guardado en el contexto del request.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	msg := appErr.Message
	if r != nil {
		msg = i18n.T(r.Context(), msg)
	}
	resp := envelope{
		Success: false,
		Message: msg,
		Code:    appErr.Code,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
