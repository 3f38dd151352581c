package controllers

import (
	"Trivium/middleware"
	"Trivium/models/postgres"
	"Trivium/services/match"
	"Trivium/utils"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

type createRoomRequest struct {
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
	Amount       int    `json:"amount" binding:"omitempty,min=1,max=50"`
	Capacity     int    `json:"capacity" binding:"omitempty,min=2,max=10"`
	CustomRoomID string `json:"customRoomId"`
}

type roomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

type randomMatchRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Amount     int    `json:"amount" binding:"omitempty,min=1,max=50"`
}

type startMatchRequest struct {
	RoomID     string `json:"roomId" binding:"required"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Amount     int    `json:"amount" binding:"omitempty,min=1,max=50"`
}

type answerRequest struct {
	RoomID        string `json:"roomId" binding:"required"`
	QuestionIndex *int   `json:"questionIndex" binding:"required,min=0"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"isCorrect"`
}

type bulkAnswerRequest struct {
	RoomID     string           `json:"roomId" binding:"required"`
	Answers    *match.AnswerSet `json:"answers" binding:"required"`
	FinalScore *int             `json:"finalScore" binding:"required,min=0"`
}

type scoreRequest struct {
	Score *int `json:"score" binding:"required,min=0"`
}

// bind decodes the JSON body into req, pushing a BadRequest on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(utils.Wrap(utils.KindBadRequest, "Invalid request body", err))
		return false
	}
	return true
}

// @Summary Create a match room
// @Description Creates a waiting room with the caller as host. Rooms for more than two players get a generated code unless customRoomId is given.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body createRoomRequest true "Room settings"
// @Success 201 {object} object{roomId=string,room=postgres.MatchRoom}
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /api/rooms [post]
// @Security ApiKeyAuth
func CreateRoom(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req createRoomRequest
		if !bind(c, &req) {
			return
		}

		room, err := matches.CreateRoom(c.Request.Context(), match.RoomConfig{
			Category:   req.Category,
			Difficulty: req.Difficulty,
			Amount:     req.Amount,
			Capacity:   req.Capacity,
			CustomCode: req.CustomRoomID,
		}, who)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"roomId": room.Identifier(), "room": room})
	}
}

// @Summary Join a match room
// @Description Joins a waiting room by internal id or custom code. Joining twice is a no-op.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body roomRequest true "Room to join"
// @Success 200 {object} object{message=string,room=postgres.MatchRoom}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /api/rooms/join [post]
// @Security ApiKeyAuth
func JoinRoom(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req roomRequest
		if !bind(c, &req) {
			return
		}

		room, err := matches.JoinRoom(c.Request.Context(), req.RoomID, who)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Joined match room successfully", "room": room})
	}
}

// @Summary Random matchmaking
// @Description Joins the oldest waiting two-player room with the same settings, or opens a new one.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body randomMatchRequest false "Match settings"
// @Success 200 {object} object{roomId=string,room=postgres.MatchRoom}
// @Router /api/rooms/random [post]
// @Security ApiKeyAuth
func RandomMatch(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req randomMatchRequest
		if c.Request.ContentLength != 0 && !bind(c, &req) {
			return
		}

		room, err := matches.FindOrCreateRandomMatch(c.Request.Context(), match.RoomConfig{
			Category:   req.Category,
			Difficulty: req.Difficulty,
			Amount:     req.Amount,
		}, who)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": room.Identifier(), "room": room})
	}
}

// @Summary Start a match
// @Description Host only. Fetches the questions and moves the room to started. Fails with 502 if the source returns fewer questions than requested.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body startMatchRequest true "Room and optional question overrides"
// @Success 200 {object} object{questions=[]postgres.Question}
// @Failure 403 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Failure 502 {object} object{error=string,kind=string}
// @Router /api/rooms/start [post]
// @Security ApiKeyAuth
func StartMatch(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req startMatchRequest
		if !bind(c, &req) {
			return
		}

		questions, err := matches.StartMatch(c.Request.Context(), req.RoomID, match.StartOverrides{
			Category:   req.Category,
			Difficulty: req.Difficulty,
			Amount:     req.Amount,
		}, who)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"questions": questions})
	}
}

// @Summary Finish a match
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body roomRequest true "Room to finish"
// @Success 200 {object} object{message=string,room=postgres.MatchRoom}
// @Failure 403 {object} object{error=string,kind=string}
// @Router /api/rooms/finish [post]
// @Security ApiKeyAuth
func FinishMatch(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req roomRequest
		if !bind(c, &req) {
			return
		}

		room, err := matches.FinishMatch(c.Request.Context(), req.RoomID, who)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Match finished", "room": room})
	}
}

// @Summary Submit one answer
// @Description Records the answer for questionIndex and adds 10 points when isCorrect is true.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body answerRequest true "Answer"
// @Success 200 {object} object{message=string,score=integer}
// @Failure 404 {object} object{error=string,kind=string}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /api/rooms/answer [post]
// @Security ApiKeyAuth
func SubmitAnswer(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req answerRequest
		if !bind(c, &req) {
			return
		}

		score, err := matches.SubmitAnswer(c.Request.Context(), match.AnswerSubmission{
			RoomID:        req.RoomID,
			QuestionIndex: req.QuestionIndex,
			Answer:        req.Answer,
			IsCorrect:     req.IsCorrect,
		}, who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Answer submitted", "score": score})
	}
}

// @Summary Submit all answers at once
// @Description Replaces the caller's answers and score. answers is an array or an index-keyed object.
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param request body bulkAnswerRequest true "Answers and final score"
// @Success 200 {object} object{message=string,score=integer}
// @Failure 409 {object} object{error=string,kind=string}
// @Router /api/rooms/answer-bulk [post]
// @Security ApiKeyAuth
func SubmitAnswersBulk(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req bulkAnswerRequest
		if !bind(c, &req) {
			return
		}

		score, err := matches.SubmitAnswersBulk(c.Request.Context(), match.BulkSubmission{
			RoomID:     req.RoomID,
			Answers:    req.Answers,
			FinalScore: req.FinalScore,
		}, who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Answers submitted", "score": score})
	}
}

// @Summary Room status
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Room id or code"
// @Success 200 {object} object{status=string,room=postgres.MatchRoom}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/rooms/status/{id} [get]
// @Security ApiKeyAuth
func GetStatus(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := matches.GetStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": room.Status, "room": room})
	}
}

// @Summary Room questions
// @Description Players only.
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param roomId query string true "Room id or code"
// @Success 200 {object} object{questions=[]postgres.Question}
// @Failure 403 {object} object{error=string,kind=string}
// @Router /api/rooms/questions [get]
// @Security ApiKeyAuth
func GetQuestions(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		questions, err := matches.GetQuestions(c.Request.Context(), c.Query("roomId"), who.UID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"questions": questions})
	}
}

// @Summary Room leaderboard
// @Description Players ranked by score; players without a score come last.
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Room id or code"
// @Success 200 {object} object{leaderboard=[]match.LeaderboardEntry}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/rooms/leaderboard/{id} [get]
// @Security ApiKeyAuth
func GetLeaderboard(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		leaderboard, err := matches.Leaderboard(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
	}
}

// @Summary Submit a final score
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Room id or code"
// @Param request body scoreRequest true "Score"
// @Success 200 {object} object{message=string,score=integer}
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/rooms/leaderboard/{id}/submit [post]
// @Security ApiKeyAuth
func SubmitScore(matches *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}
		var req scoreRequest
		if !bind(c, &req) {
			return
		}

		score, err := matches.SubmitScore(c.Request.Context(), c.Param("id"), who.UID, *req.Score)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Score submitted successfully", "score": score})
	}
}

// @Summary Room invite QR code
// @Description PNG QR code encoding the client join link for the room.
// @Tags rooms
// @Produce png
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Room id or code"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string,kind=string}
// @Router /api/rooms/qr/{id} [get]
// @Security ApiKeyAuth
func GetInviteQR(matches *match.Manager, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := matches.GetStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		if room.Status != postgres.RoomWaiting {
			_ = c.Error(utils.Conflict("Match already in progress"))
			return
		}

		png, err := qrcode.Encode(joinLink(publicURL, room), qrcode.Medium, qrCodeSize)
		if err != nil {
			_ = c.Error(utils.Internal("encoding QR code", err))
			return
		}
		log.Printf("[ROOM] QR invite generated for %s", room.ID)
		c.Data(http.StatusOK, "image/png", png)
	}
}

// joinLink is the client URL an invite QR code points at.
func joinLink(publicURL string, room *postgres.MatchRoom) string {
	return strings.TrimRight(publicURL, "/") + "/join/" + room.Identifier()
}
