package routes

import (
	"Trivium/controllers"
	"Trivium/middleware"
	"Trivium/services/identity"
	"Trivium/services/match"
	"Trivium/services/social"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services the HTTP handlers call into.
type Dependencies struct {
	Matches   *match.Manager
	Social    *social.Service
	Questions match.QuestionSource
	Verifier  identity.Verifier
	Online    controllers.OnlineCounter
	PublicURL string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	api.GET("/ping", controllers.Ping(deps.Online))

	quiz := api.Group("/quiz")
	{
		quiz.GET("/questions", controllers.GetQuizQuestions(deps.Questions))
		quiz.GET("/categories", controllers.GetQuizCategories)
	}

	authenticated := api.Group("/")
	authenticated.Use(middleware.AuthRequired(deps.Verifier, deps.Social))

	roomRoutes := authenticated.Group("/rooms")
	{
		roomRoutes.POST("", controllers.CreateRoom(deps.Matches))
		roomRoutes.POST("/create", controllers.CreateRoom(deps.Matches))
		roomRoutes.POST("/join", controllers.JoinRoom(deps.Matches))
		roomRoutes.POST("/random", controllers.RandomMatch(deps.Matches))
		roomRoutes.POST("/start", controllers.StartMatch(deps.Matches))
		roomRoutes.POST("/finish", controllers.FinishMatch(deps.Matches))
		roomRoutes.POST("/answer", controllers.SubmitAnswer(deps.Matches))
		roomRoutes.POST("/answer-bulk", controllers.SubmitAnswersBulk(deps.Matches))
		roomRoutes.GET("/status/:id", controllers.GetStatus(deps.Matches))
		roomRoutes.GET("/questions", controllers.GetQuestions(deps.Matches))
		roomRoutes.GET("/leaderboard/:id", controllers.GetLeaderboard(deps.Matches))
		roomRoutes.POST("/leaderboard/:id/submit", controllers.SubmitScore(deps.Matches))
		roomRoutes.GET("/qr/:id", controllers.GetInviteQR(deps.Matches, deps.PublicURL))
	}

	leaderboard := authenticated.Group("/leaderboard")
	{
		leaderboard.GET("/:id", controllers.GetLeaderboard(deps.Matches))
		leaderboard.POST("/:id/submit", controllers.SubmitScore(deps.Matches))
	}

	users := authenticated.Group("/users")
	{
		users.GET("/me", controllers.GetCurrentUser(deps.Social))
		users.POST("/register", controllers.RegisterUser(deps.Social))
		users.GET("/search", controllers.SearchUsers(deps.Social))
		users.GET("/suggested", controllers.SuggestedUsers(deps.Social))
	}

	friends := authenticated.Group("/friends")
	{
		friends.POST("/request", controllers.SendFriendRequest(deps.Social))
		friends.PUT("/request/:requestId", controllers.RespondToFriendRequest(deps.Social))
		friends.GET("/list", controllers.ListFriends(deps.Social))
		friends.GET("/pending", controllers.ListPendingRequests(deps.Social))
	}
}
