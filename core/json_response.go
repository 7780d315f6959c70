package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the JSON envelope written by this package.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON responds with 200 and {"data": data}.
func JSON(data any) Response {
	return JSONWithStatus(http.StatusOK, data)
}

func JSONWithStatus(status int, data any) Response {
	return jsonResponse{status: status, body: JSONResponse{Data: data}}
}

// JSONError responds with {"error":{"code","message"}}.
// HTTPError values keep their status and key. Anything else becomes a 500
// with a generic message so internal details never reach the client.
func JSONError(err error) Response {
	httpErr := ErrInternalServerError
	var he HTTPError
	if errors.As(err, &he) {
		httpErr = he
	}
	return jsonResponse{
		status: httpErr.Code,
		body: JSONResponse{
			Error: &ErrorDetail{
				Code:    httpErr.Key,
				Message: http.StatusText(httpErr.Code),
			},
		},
	}
}
