package controllers

import (
	"Trivium/middleware"
	"Trivium/models/postgres"
	"Trivium/services/social"
	"net/http"

	"github.com/gin-gonic/gin"
)

type userSummary struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func summarizeUsers(users []postgres.UserProfile) []userSummary {
	out := make([]userSummary, len(users))
	for i, u := range users {
		out[i] = userSummary{UID: u.UID, Name: u.Name, Email: u.Email, Picture: u.Picture}
	}
	return out
}

// @Summary Current user
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} postgres.UserProfile
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/users/me [get]
// @Security ApiKeyAuth
func GetCurrentUser(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		profile, err := svc.CurrentUser(c.Request.Context(), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// @Summary Register the caller
// @Description Creates the caller's profile if it does not exist yet.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{message=string,user=postgres.UserProfile}
// @Success 201 {object} object{message=string,user=postgres.UserProfile}
// @Router /api/users/register [post]
// @Security ApiKeyAuth
func RegisterUser(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		profile, created, err := svc.RegisterIfNeeded(c.Request.Context(), who)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if created {
			c.JSON(http.StatusCreated, gin.H{"message": "User registered", "user": profile})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User already registered", "user": profile})
	}
}

// @Summary Search users
// @Description Case-insensitive match on name or email, excluding the caller.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param query query string true "Search text"
// @Success 200 {array} userSummary
// @Failure 400 {object} object{error=string,kind=string}
// @Router /api/users/search [get]
// @Security ApiKeyAuth
func SearchUsers(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		users, err := svc.SearchUsers(c.Request.Context(), c.Query("query"), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, summarizeUsers(users))
	}
}

// @Summary Suggested users
// @Description A random sample of other users.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} userSummary
// @Router /api/users/suggested [get]
// @Security ApiKeyAuth
func SuggestedUsers(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		users, err := svc.SuggestedUsers(c.Request.Context(), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, summarizeUsers(users))
	}
}
