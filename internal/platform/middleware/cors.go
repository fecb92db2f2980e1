// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/taibuivan/comicpass/internal/platform/constants"
)

// AppConfig is the slice of config.Config the CORS policy reads.
type AppConfig interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

// CORS allows any origin in development and the configured list elsewhere.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", constants.HeaderXRequestID},
		ExposedHeaders:   []string{constants.HeaderXRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int(constants.CORSMaxAge.Seconds()),
	}

	if cfg.IsDevelopment() {
		options.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		options.AllowedOrigins = cfg.AllowedOrigins()
	}
	return cors.Handler(options)
}
