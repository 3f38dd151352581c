package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OnlineCounter reports how many users hold a realtime connection.
type OnlineCounter interface {
	Online() int
}

// @Summary Endpoint just pings the server
// @Description Returns a basic message and the number of connected users
// @Tags test
// @Produce json
// @Success 200 {object} object{message=string,online=integer}
// @Router /api/ping [get]
func Ping(online OnlineCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"message": "pong"}
		if online != nil {
			body["online"] = online.Online()
		}
		c.JSON(http.StatusOK, body)
	}
}
