package controllers

import (
	"Trivium/services/match"
	"Trivium/services/trivia"
	"Trivium/utils"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary Trivia questions
// @Description Proxies the trivia source. category is a name such as "science" or a numeric id.
// @Tags quiz
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query string false "easy, medium or hard"
// @Param amount query integer false "Number of questions (default 10)"
// @Success 200 {array} postgres.Question
// @Failure 400 {object} object{error=string,kind=string}
// @Failure 502 {object} object{error=string,kind=string}
// @Router /api/quiz/questions [get]
func GetQuizQuestions(questions match.QuestionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount := 0
		if raw := c.Query("amount"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 50 {
				_ = c.Error(utils.BadRequest("amount must be between 1 and 50"))
				return
			}
			amount = n
		}

		result, err := questions.FetchQuestions(c.Request.Context(), trivia.Params{
			Category:   c.Query("category"),
			Difficulty: c.Query("difficulty"),
			Amount:     amount,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Trivia categories
// @Tags quiz
// @Produce json
// @Success 200 {object} object{categories=[]string}
// @Router /api/quiz/categories [get]
func GetQuizCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": trivia.Categories()})
}
