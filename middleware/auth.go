package middleware

import (
	"Trivium/models/postgres"
	"Trivium/services/identity"
	"Trivium/utils"
	"context"
	"log"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// ProfileSyncer is satisfied by *social.Service.
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, id identity.Identity) (*postgres.UserProfile, error)
}

// AuthRequired verifies the bearer token in the Authorization header and
// stores the caller's identity on the context. The caller's profile is
// upserted on every request; a failed upsert is logged and the request
// proceeds.
func AuthRequired(verifier identity.Verifier, profiles ProfileSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(utils.NewError(utils.KindUnauthorized, "Authorization header is required"))
			c.Abort()
			return
		}

		who, err := verifier.Verify(c.Request.Context(), header)
		if err != nil {
			log.Printf("[AUTH] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		if profiles != nil {
			if _, err := profiles.SyncProfile(c.Request.Context(), *who); err != nil {
				log.Printf("[AUTH] syncing profile for %s: %v", who.UID, err)
			}
		}

		c.Set(identityKey, *who)
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthRequired.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	who, ok := value.(identity.Identity)
	return who, ok
}

// RequireIdentity is CurrentIdentity for handlers behind AuthRequired. It
// pushes an Unauthorized error when the identity is missing.
func RequireIdentity(c *gin.Context) (identity.Identity, bool) {
	who, ok := CurrentIdentity(c)
	if !ok {
		_ = c.Error(utils.NewError(utils.KindUnauthorized, "not authenticated"))
	}
	return who, ok
}
