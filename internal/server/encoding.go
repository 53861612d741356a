package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/KaramelBytes/healthscope/internal/logger"
)

const msgpackContentType = "application/msgpack"

// wantsMsgpack honours Accept: application/msgpack (or x-msgpack) and ?format=msgpack.
func wantsMsgpack(r *http.Request) bool {
	if r.URL.Query().Get("format") == "msgpack" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, msgpackContentType) || strings.Contains(accept, "application/x-msgpack")
}

// encode renders v in the format the request asked for.
func encode(r *http.Request, v any) ([]byte, string, error) {
	if wantsMsgpack(r) {
		b, err := msgpack.Marshal(v)
		return b, msgpackContentType, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return append(b, '\n'), "application/json", nil
}

// write encodes v before committing the status, so an encoding failure still
// produces a 500 with an ErrorResponse body.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, contentType, err := encode(r, v)
	if err != nil {
		s.log.Error("encode response", logger.Err(err), slog.String("request_id", RequestID(r.Context())))
		status = http.StatusInternalServerError
		b, contentType, err = encode(r, ErrorResponse{RequestID: RequestID(r.Context()), Error: fmt.Sprintf("encode response: %v", err)})
		if err != nil {
			http.Error(w, "encode response", status)
			return
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		s.log.Debug("write response", logger.Err(err))
	}
}
