// Package http provides the HTTP transport of serpblock: a message server,
// a message client and a static-page Fetcher.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/fwojciec/serpblock"
)

// MessagesPath is the route accepting blocklist messages.
const MessagesPath = "/messages"

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// blocklistResponse is the body of a getBlocklist answer.
type blocklistResponse struct {
	ID        string   `json:"id,omitempty"`
	Blocklist []string `json:"blocklist"`
	Start     int      `json:"start"`
	Num       int      `json:"num"`
	Total     int      `json:"total"`
	Revision  string   `json:"revision,omitempty"`
}

// patternResponse is the body of an addToBlocklist or deleteFromBlocklist answer.
type patternResponse struct {
	ID      string `json:"id,omitempty"`
	Success int    `json:"success"`
	Pattern string `json:"pattern"`
}

// bulkResponse is the body of an addBulkToBlocklist answer.
type bulkResponse struct {
	ID      string `json:"id,omitempty"`
	Success int    `json:"success"`
	Count   int    `json:"count"`
}

// responseBody returns the wire shape of resp for a message of type t.
// Every field a message type defines is present, zero or not.
func responseBody(t serpblock.MessageType, resp *serpblock.Response) any {
	switch t {
	case serpblock.MessageGetBlocklist:
		patterns := resp.Blocklist
		if patterns == nil {
			patterns = []string{}
		}
		return &blocklistResponse{
			ID:        resp.ID,
			Blocklist: patterns,
			Start:     resp.Start,
			Num:       resp.Num,
			Total:     resp.Total,
			Revision:  resp.Revision,
		}
	case serpblock.MessageAddToBlocklist, serpblock.MessageDeleteFromBlocklist:
		return &patternResponse{ID: resp.ID, Success: resp.Success, Pattern: resp.Pattern}
	case serpblock.MessageAddBulkToBlocklist:
		return &bulkResponse{ID: resp.ID, Success: resp.Success, Count: resp.Count}
	}
	return resp
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	serpblock.ECONFLICT:    http.StatusConflict,
	serpblock.EINVALID:     http.StatusBadRequest,
	serpblock.ENOTFOUND:    http.StatusNotFound,
	serpblock.EUNAVAILABLE: http.StatusServiceUnavailable,
	serpblock.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// FromErrorStatusCode returns the application error code for an HTTP status code.
func FromErrorStatusCode(status int) string {
	for k, v := range codes {
		if v == status {
			return k
		}
	}
	return serpblock.EINTERNAL
}

// Error writes err as a JSON error response.
func Error(w http.ResponseWriter, err error) {
	writeJSON(w, ErrorStatusCode(serpblock.ErrorCode(err)), &errorResponse{Error: serpblock.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
