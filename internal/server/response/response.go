// Package response provides the standard response actions.
package response

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/yndnr/rest0-go/internal/host"
)

// ContentTypeJSON is the content type written by JSONResponse.
const ContentTypeJSON = "application/json; charset=utf-8"

// StatusResponse writes a status line without a body.
type StatusResponse struct {
	Code        int
	Description string
}

// Status returns a StatusResponse with the standard reason phrase.
func Status(code int) StatusResponse {
	return StatusResponse{Code: code}
}

// Execute implements host.ResponseAction.
func (s StatusResponse) Execute(ctx context.Context, rc *host.ResponseContext) error {
	rc.Response.SetStatus(s.Code, s.Description)
	rc.Response.Header().Set("Content-Length", "0")
	return nil
}

// RedirectResponse sends the client to Location.
type RedirectResponse struct {
	Location string
	// Code defaults to 302 Found.
	Code int
}

// Redirect returns a 302 redirect to location.
func Redirect(location string) RedirectResponse {
	return RedirectResponse{Location: location}
}

// Execute implements host.ResponseAction.
func (r RedirectResponse) Execute(ctx context.Context, rc *host.ResponseContext) error {
	code := r.Code
	if code == 0 {
		code = http.StatusFound
	}
	rc.Response.SetStatus(code, "")
	rc.Response.Header().Set("Location", r.Location)
	rc.Response.Header().Set("Content-Length", "0")
	return nil
}

// JSONResponse serializes Value as the response body.
type JSONResponse struct {
	Code        int
	Description string
	Value       any
}

// JSON returns a 200 JSONResponse for v.
func JSON(v any) JSONResponse {
	return JSONResponse{Code: http.StatusOK, Value: v}
}

// Execute implements host.ResponseAction. The value is encoded before
// anything is written, so an encoding error leaves the response uncommitted.
func (j JSONResponse) Execute(ctx context.Context, rc *host.ResponseContext) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(j.Value); err != nil {
		return err
	}
	body := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	code := j.Code
	if code == 0 {
		code = http.StatusOK
	}
	rc.Response.SetStatus(code, j.Description)
	h := rc.Response.Header()
	h.Set("Content-Type", ContentTypeJSON)
	h.Set("Content-Length", strconv.Itoa(len(body)))

	_, err := rc.Response.Write(body)
	return err
}
