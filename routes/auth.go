package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"uet-duck-server/internal/config"
	"uet-duck-server/internal/logger"
	"uet-duck-server/middleware"
	"uet-duck-server/models"
	"uet-duck-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const (
	oauthStateTTL    = 10 * time.Minute
	oauthStatePrefix = "oauth_state:"
	githubProfileURL = "https://api.github.com/user"
)

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// SetupAuthRoutes wires the GitHub OAuth login flow and /api/me. The OAuth
// state nonce lives in Redis so the flow survives a multi-instance deployment.
func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client, authMiddleware *middleware.AuthMiddleware) {
	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubCallbackURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     githuboauth.Endpoint,
	}

	sessionTTL, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		sessionTTL = 24 * time.Hour
	}

	auth := router.Group("/auth")

	auth.GET("/github", func(c *gin.Context) {
		state := uuid.New().String()
		if err := rdb.Set(c.Request.Context(), oauthStatePrefix+state, "1", oauthStateTTL).Err(); err != nil {
			utils.RespondWithInternalError(c, "Failed to start login flow.", nil)
			return
		}

		c.Redirect(http.StatusFound, oauthCfg.AuthCodeURL(state))
	})

	auth.GET("/github/callback", func(c *gin.Context) {
		state := c.Query("state")
		if state == "" {
			utils.RespondWithUnauthorized(c, "Missing OAuth state.")
			return
		}
		if err := rdb.GetDel(c.Request.Context(), oauthStatePrefix+state).Err(); err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired OAuth state.")
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		token, err := oauthCfg.Exchange(ctx, c.Query("code"))
		if err != nil {
			logger.Error("GitHub code exchange failed", "error", err.Error())
			utils.RespondWithUnauthorized(c, "GitHub login failed.")
			return
		}

		profile, err := fetchGitHubProfile(ctx, oauthCfg, token)
		if err != nil {
			logger.Error("GitHub profile fetch failed", "error", err.Error())
			utils.RespondWithUnauthorized(c, "GitHub login failed.")
			return
		}

		user, err := upsertUser(ctx, usersCollection, cfg, profile)
		if err != nil {
			logger.Error("User upsert failed", "github_id", profile.ID, "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to create user.", nil)
			return
		}

		sessionToken, err := utils.GenerateJWT(user.ID.Hex(), user.GitHubID, cfg.JWTSecret, sessionTTL)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create session.", nil)
			return
		}

		secure := cfg.GinMode == "release"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, sessionToken, int(sessionTTL.Seconds()), "/", "", secure, true)

		// Back to the frontend
		c.Redirect(http.StatusFound, "/")
	})

	auth.GET("/logout", func(c *gin.Context) {
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", cfg.GinMode == "release", true)
		c.Redirect(http.StatusFound, "/")
	})

	// Current user, always re-read from the store so the hearts count is live.
	router.GET("/api/me", authMiddleware.OptionalAuth(), func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		var user models.User
		if err := usersCollection.FindOne(c.Request.Context(), bson.M{"_id": objID}).Decode(&user); err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": models.UserInfo{
			ID:        user.ID.Hex(),
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			Hearts:    user.Hearts,
		}})
	})
}

func fetchGitHubProfile(ctx context.Context, oauthCfg *oauth2.Config, token *oauth2.Token) (*githubProfile, error) {
	resp, err := oauthCfg.Client(ctx, token).Get(githubProfileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github profile request returned %d", resp.StatusCode)
	}

	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("github profile missing id")
	}

	return &profile, nil
}

// upsertUser creates the user on first login with a full heart budget, and
// refreshes the display fields on every later login. The balance is never
// touched here; only the ledger mutates it.
func upsertUser(ctx context.Context, usersCollection *mongo.Collection, cfg *config.Config, profile *githubProfile) (*models.User, error) {
	githubID := fmt.Sprintf("%d", profile.ID)

	username := profile.Login
	if username == "" {
		username = profile.Name
	}
	if username == "" {
		username = "github_user"
	}

	now := time.Now()
	res := usersCollection.FindOneAndUpdate(ctx,
		bson.M{"github_id": githubID},
		bson.M{
			"$set": bson.M{
				"username":   username,
				"email":      profile.Email,
				"avatar_url": profile.AvatarURL,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"github_id":  githubID,
				"hearts":     cfg.MaxHearts,
				"max_hearts": cfg.MaxHearts,
				"created_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var user models.User
	if err := res.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
