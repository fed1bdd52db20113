package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"uet-duck-server/internal/config"
	"uet-duck-server/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The anonymous /api/me path answers before touching Mongo or Redis, so the
// clients here never have to dial anything.
func TestMeWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		DBName:             "uet_duck_test",
		GitHubClientID:     "id",
		GitHubClientSecret: "secret",
		JWTExpiresIn:       "24h",
	}

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("mongo client init failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	router := gin.New()
	SetupAuthRoutes(router, cfg, mongoClient, rdb, middleware.NewAuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != `{"user":null}` {
		t.Errorf("expected null user, got %s", w.Body.String())
	}
}
