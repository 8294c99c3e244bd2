package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader names the caller on every command. The kernel records it; it does not authenticate it.
const ActorHeader = "X-Actor-ID"

// actorKey is the key used to store the acting user's ID in the Gin context.
const actorKey = contextKey("actor")

// RequireActor rejects requests without an actor header and stores the actor
// in both contexts. The logger is enriched with the actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			GetLoggerFromContext(c).Warn("Actor header missing")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ActorHeader + " header is required"})
			return
		}

		logger := GetLoggerFromContext(c).With(slog.String("actor", actor))
		c.Set(string(actorKey), actor)
		c.Set(string(loggerKey), logger)
		ctx := context.WithValue(c.Request.Context(), actorKey, actor)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger))
		c.Next()
	}
}

// GetActorFromContext retrieves the acting user ID from the Gin context.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(actorKey).(string); ok && v != "" {
			return v, true
		}
		return "", false
	}

	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return "", false
	}

	return actor, true
}
