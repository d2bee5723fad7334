package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS 回應跨域 preflight：任何來源、GET/POST/PUT/DELETE/OPTIONS、Content-Type，快取一天。
func CORS(next http.Handler) http.Handler {
	return corsHandler(next)
}

var corsHandler = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Content-Type"},
	AllowCredentials: false,
	MaxAge:           86400,
})
