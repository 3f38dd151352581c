// Package trivia fetches multiple-choice questions from Open Trivia DB.
package trivia

import (
	"Trivium/models/postgres"
	"Trivium/utils"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://opentdb.com/api.php"

// Params selects questions. Zero values mean "any" / the default amount.
type Params struct {
	Category   string
	Difficulty string
	Amount     int
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	shuffle    func([]string)
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		shuffle:    shuffleStrings,
	}
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type apiQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// FetchQuestions returns BadRequest for an unknown category or difficulty
// and UpstreamFailure when the source errors or yields nothing usable.
func (c *Client) FetchQuestions(ctx context.Context, p Params) ([]postgres.Question, error) {
	query, err := buildQuery(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, utils.Internal("building trivia request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[TRIVIA] request failed: %v", err)
		return nil, utils.Wrap(utils.KindUpstreamFailure, "failed to fetch questions", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[TRIVIA] unexpected status %d", resp.StatusCode)
		return nil, utils.NewError(utils.KindUpstreamFailure, fmt.Sprintf("trivia source answered %d", resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, utils.Wrap(utils.KindUpstreamFailure, "invalid trivia response", err)
	}
	if body.ResponseCode != 0 {
		log.Printf("[TRIVIA] response_code=%d for %s", body.ResponseCode, query.Encode())
		return nil, utils.NewError(utils.KindUpstreamFailure, "failed to fetch questions")
	}
	if len(body.Results) == 0 {
		return nil, utils.NewError(utils.KindUpstreamFailure, "trivia source returned no questions")
	}

	questions := make([]postgres.Question, 0, len(body.Results))
	for _, r := range body.Results {
		questions = append(questions, c.convert(r))
	}
	return questions, nil
}

func buildQuery(p Params) (url.Values, error) {
	amount := p.Amount
	if amount <= 0 {
		amount = 10
	}

	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))

	categoryID, ok := CategoryID(p.Category)
	if !ok {
		return nil, utils.BadRequest("Invalid category selected")
	}
	if categoryID > 0 {
		query.Set("category", strconv.Itoa(categoryID))
	}

	if !ValidDifficulty(p.Difficulty) {
		return nil, utils.BadRequest("Invalid difficulty selected")
	}
	if d := strings.ToLower(strings.TrimSpace(p.Difficulty)); d != "" && d != "any" {
		query.Set("difficulty", d)
	}

	query.Set("type", "multiple")
	return query, nil
}

func (c *Client) convert(r apiQuestion) postgres.Question {
	incorrect := make([]string, len(r.IncorrectAnswers))
	for i, a := range r.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(a)
	}
	correct := html.UnescapeString(r.CorrectAnswer)

	all := append([]string{correct}, incorrect...)
	c.shuffle(all)

	return postgres.Question{
		Type:             r.Type,
		Difficulty:       r.Difficulty,
		Category:         html.UnescapeString(r.Category),
		Question:         html.UnescapeString(r.Question),
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
		AllAnswers:       all,
	}
}

// uniform Fisher-Yates
func shuffleStrings(s []string) {
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
