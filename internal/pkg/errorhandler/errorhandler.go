package errorhandler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/pkg/response"
)

// HandleError logs a failed request under its request id and replies with
// the standard error envelope
func HandleError(r *http.Request, w http.ResponseWriter, status int, code, message string, err error) {
	event := log.Error().
		Str("request_id", r.Header.Get("X-Request-ID")).
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)

	response.Error(w, status, code, message)
}
