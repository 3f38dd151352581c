package controllers

import (
	"Trivium/middleware"
	"Trivium/services/social"
	"net/http"

	"github.com/gin-gonic/gin"
)

type friendRequestBody struct {
	Recipient string `json:"recipient" binding:"required"`
}

type friendResponseBody struct {
	Action social.FriendAction `json:"action" binding:"required"`
}

// @Summary Send a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body friendRequestBody true "Recipient uid"
// @Success 201 {object} object{message=string,request=postgres.FriendLink}
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /api/friends/request [post]
// @Security ApiKeyAuth
func SendFriendRequest(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req friendRequestBody
		if !bind(c, &req) {
			return
		}

		link, err := svc.SendFriendRequest(c.Request.Context(), who.UID, req.Recipient)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent", "request": link})
	}
}

// @Summary Accept or decline a friend request
// @Description Only the recipient may respond. action is "accept" or "decline".
// @Tags friends
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param requestId path string true "Friend request id"
// @Param request body friendResponseBody true "Action"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/friends/request/{requestId} [put]
// @Security ApiKeyAuth
func RespondToFriendRequest(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req friendResponseBody
		if !bind(c, &req) {
			return
		}

		link, err := svc.RespondToRequest(c.Request.Context(), c.Param("requestId"), who.UID, req.Action)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request " + string(link.Status)})
	}
}

// @Summary List friends
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{friends=[]postgres.UserProfile}
// @Router /api/friends/list [get]
// @Security ApiKeyAuth
func ListFriends(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		friends, err := svc.ListFriends(c.Request.Context(), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"friends": friends})
	}
}

// @Summary List pending friend requests
// @Description Requests received by the caller that are still pending.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{pendingRequests=[]social.PendingRequest}
// @Router /api/friends/pending [get]
// @Security ApiKeyAuth
func ListPendingRequests(svc *social.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		pending, err := svc.PendingRequests(c.Request.Context(), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pendingRequests": pending})
	}
}
