package handlers

import (
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
)

// Built-in documentation routes start with an underscore, which no codec
// emits, so they never shadow /{token}.
const (
	DocsPath    = "/_docs"
	OpenAPIPath = "/_openapi"
	SchemasPath = "/_schemas"
)

// APIConfig is huma's default config with the documentation routes moved
// out of the token namespace.
func APIConfig(title, version string) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	cfg.DocsPath = DocsPath
	cfg.OpenAPIPath = OpenAPIPath
	cfg.SchemasPath = SchemasPath

	return cfg
}

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Allocates a new token for the URL, which is stored exactly as submitted. Every call creates a new token.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusServiceUnavailable},
		RequestBody: &huma.RequestBody{
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(ShortenBody{}), true, "ShortenBody"),
				},
			},
		},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "long2short",
		Method:      http.MethodGet,
		Path:        "/long2short",
		Summary:     "Create short URL from query string",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, urlHandler.Long2Short)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{token}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short token.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, urlHandler.RedirectToURL)
}
