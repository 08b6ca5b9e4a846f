// Package helpers reúne utilidades HTTP compartidas por controllers y middlewares.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dropDatabas3/essgate/internal/i18n"
)

// MaxBodyBytes límite de body para los endpoints móviles.
const MaxBodyBytes = 64 << 10

var (
	ErrBadBody     = errors.New("invalid request body")
	ErrBodyTooBig  = errors.New("request body too large")
	ErrContentType = errors.New("unsupported content type")
)

// DecodeBody decodifica el request en v. Acepta JSON y formularios
// (application/x-www-form-urlencoded o multipart), que es como postean
// los clientes móviles existentes. Los campos de formulario se mapean por
// el tag json de v. Un body vacío deja v sin tocar.
func DecodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	ct := r.Header.Get("Content-Type")
	mt := "application/json"
	if ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return ErrContentType
		}
		mt = parsed
	}

	switch mt {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return classify(err)
		}
		return nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mt == "multipart/form-data" {
			err = r.ParseMultipartForm(MaxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return classify(err)
		}
		flat := make(map[string]string, len(r.PostForm))
		for k, vals := range r.PostForm {
			if len(vals) > 0 {
				flat[k] = vals[0]
			}
		}
		b, err := json.Marshal(flat)
		if err != nil {
			return ErrBadBody
		}
		if err := json.Unmarshal(b, v); err != nil {
			return ErrBadBody
		}
		return nil
	default:
		return ErrContentType
	}
}

func classify(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return ErrBodyTooBig
	}
	return ErrBadBody
}

// Envelope es la respuesta estándar {success,message,data}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess escribe {success:true} con el mensaje traducido al idioma del request.
func WriteSuccess(w http.ResponseWriter, r *http.Request, msg string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: i18n.T(r.Context(), msg),
		Data:    data,
	})
}
