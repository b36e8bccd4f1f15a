// internal/adapters/in/http/router.go
package httpin

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"tokenforge/internal/adapters/in/http/handler"
	"tokenforge/internal/adapters/in/http/middleware"
)

// RouterDeps collects everything NewRouter needs from the DI container.
type RouterDeps struct {
	TokenService  handler.TokenService
	Notifications handler.NotificationSource

	// nil なら認証なし（ローカル / devnet 用）
	FirebaseAuth middleware.TokenVerifier

	AllowedOrigins []string
}

// NewRouter は /v1 以下の API を組み立てます。/healthz と /metrics は main 側で付けます。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	// CORS は Recover より外側（panic 時の 500 にもヘッダを付ける）
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	r.Use(middleware.Recover)

	h := handler.NewTokenHandler(deps.TokenService, deps.Notifications)

	r.Route("/v1", func(v1 chi.Router) {
		if deps.FirebaseAuth != nil {
			v1.Use((&middleware.AuthMiddleware{FirebaseAuth: deps.FirebaseAuth}).Handler)
		} else {
			log.Printf("[router] Firebase auth disabled; /v1 is unauthenticated")
		}
		h.Routes(v1)
	})

	return r
}
