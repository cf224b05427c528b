package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ShortenBody is the JSON body of a shorten request.
type ShortenBody struct {
	URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url,omitempty"`
}

// CreateShortURLRequest keeps the body undecoded so that any payload other
// than an object with a string url is rejected as Invalid-Request.
type CreateShortURLRequest struct {
	RawBody []byte `contentType:"application/json"`

	base string
}

// URL decodes the body. An empty body yields an empty URL.
func (r *CreateShortURLRequest) URL() (string, error) {
	if len(bytes.TrimSpace(r.RawBody)) == 0 {
		return "", nil
	}

	var body ShortenBody
	if err := json.Unmarshal(r.RawBody, &body); err != nil {
		return "", fmt.Errorf("decode shorten body: %w", err)
	}

	return body.URL, nil
}

// Resolve captures the externally visible origin of the request.
func (r *CreateShortURLRequest) Resolve(ctx huma.Context) []error {
	r.base = requestBase(ctx)

	return nil
}

// Long2ShortRequest is the query-string form of a shorten request.
type Long2ShortRequest struct {
	LongURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" query:"longUrl"`

	base string
}

func (r *Long2ShortRequest) Resolve(ctx huma.Context) []error {
	r.base = requestBase(ctx)

	return nil
}

// ShortURLBody describes a created short URL.
type ShortURLBody struct {
	Token    string `doc:"The short token"    example:"1C"                                 json:"token"`
	ShortURL string `doc:"The full short URL" example:"http://localhost:8888/1C"           json:"shortUrl"`
	LongURL  string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"longUrl"`
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     ShortURLBody
}

// Long2ShortResponse is the response for the query-string shorten endpoint.
type Long2ShortResponse struct {
	Body ShortURLBody
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Token string `doc:"The short token" example:"1C" path:"token"`
}

// RedirectResponse sends the client to the stored long URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// requestBase derives scheme://host from forwarding headers or the Host header.
func requestBase(ctx huma.Context) string {
	scheme := "http"
	if proto := ctx.Header("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	} else if ctx.TLS() != nil {
		scheme = "https"
	}

	host := ctx.Host()
	if fwd := ctx.Header("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return scheme + "://" + host
}
