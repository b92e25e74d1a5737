package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/platform/httpx"
	"github.com/biocart/api/internal/services"
)

const maxChallengeBodySize = 16 * 1024

// ChallengeHandlers serves the public health challenge questionnaire.
type ChallengeHandlers struct {
	challenge services.ChallengeService
}

// NewChallengeHandlers constructs the challenge endpoints.
func NewChallengeHandlers(challenge services.ChallengeService) *ChallengeHandlers {
	return &ChallengeHandlers{challenge: challenge}
}

// Routes wires the /challenge endpoints onto the provided router.
func (h *ChallengeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/questions", h.questions)
	r.Post("/score", h.score)
}

type challengeQuestionPayload struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

type challengeQuestionsResponse struct {
	Questions   []challengeQuestionPayload `json:"questions"`
	ScoreLabels map[int]string             `json:"scoreLabels"`
}

func (h *ChallengeHandlers) questions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.challenge == nil {
		httpx.WriteError(ctx, w, httpx.NewError("challenge_service_unavailable", "challenge service is unavailable", http.StatusServiceUnavailable))
		return
	}

	questions, err := h.challenge.Questions(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("challenge_error", err.Error(), http.StatusInternalServerError))
		return
	}

	payload := challengeQuestionsResponse{
		Questions:   make([]challengeQuestionPayload, 0, len(questions)),
		ScoreLabels: services.ChallengeScoreLabels,
	}
	for _, question := range questions {
		payload.Questions = append(payload.Questions, challengeQuestionPayload{
			ID:       question.ID,
			Text:     question.Text,
			Category: question.Category,
		})
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

type challengeAnswerPayload struct {
	QuestionID int `json:"questionId"`
	Score      int `json:"score"`
}

type challengeScoreRequest struct {
	Answers []challengeAnswerPayload `json:"answers"`
}

type challengeResultPayload struct {
	TotalScore      int      `json:"totalScore"`
	Average         float64  `json:"average"`
	Tier            string   `json:"tier"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	ScoredAt        string   `json:"scoredAt"`
}

func (h *ChallengeHandlers) score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.challenge == nil {
		httpx.WriteError(ctx, w, httpx.NewError("challenge_service_unavailable", "challenge service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxChallengeBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req challengeScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	answers := make([]domain.ChallengeAnswer, 0, len(req.Answers))
	for _, answer := range req.Answers {
		answers = append(answers, domain.ChallengeAnswer{
			QuestionID: answer.QuestionID,
			Score:      answer.Score,
		})
	}

	result, err := h.challenge.Score(ctx, answers)
	if err != nil {
		if errors.Is(err, services.ErrChallengeInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_answers", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("challenge_error", err.Error(), http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"result": challengeResultPayload{
			TotalScore:      result.TotalScore,
			Average:         result.Average,
			Tier:            string(result.Tier),
			Analysis:        result.Analysis,
			Recommendations: result.Recommendations,
			ScoredAt:        formatTime(result.ScoredAt),
		},
	})
}
