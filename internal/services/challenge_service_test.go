package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

func answersWithScore(score int) []ChallengeAnswer {
	answers := make([]ChallengeAnswer, 5)
	for i := range answers {
		answers[i] = ChallengeAnswer{QuestionID: i + 1, Score: score}
	}
	return answers
}

func newTestChallengeService(t *testing.T) ChallengeService {
	t.Helper()
	service, err := NewChallengeService(ChallengeServiceDeps{
		Clock: func() time.Time { return time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewChallengeService: %v", err)
	}
	return service
}

func TestChallengeServiceQuestionsFixedOrder(t *testing.T) {
	service := newTestChallengeService(t)

	questions, err := service.Questions(context.Background())
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	if questions[0].ID != 1 || questions[0].Category != "운동" {
		t.Fatalf("unexpected first question %#v", questions[0])
	}
	if questions[4].Category != "전반적 건강" {
		t.Fatalf("unexpected last question %#v", questions[4])
	}
}

func TestChallengeServiceScoreTiers(t *testing.T) {
	service := newTestChallengeService(t)

	cases := []struct {
		name    string
		answers []ChallengeAnswer
		average float64
		tier    domain.ChallengeTier
	}{
		{"excellent all fives", answersWithScore(5), 5.0, domain.ChallengeTierExcellent},
		{"good", answersWithScore(4), 4.0, domain.ChallengeTierGood},
		{"average", answersWithScore(3), 3.0, domain.ChallengeTierAverage},
		{"poor", answersWithScore(2), 2.0, domain.ChallengeTierPoor},
		{"very poor all ones", answersWithScore(1), 1.0, domain.ChallengeTierVeryPoor},
		{
			"boundary 4.6 is excellent",
			[]ChallengeAnswer{{QuestionID: 1, Score: 5}, {QuestionID: 2, Score: 5}, {QuestionID: 3, Score: 5}, {QuestionID: 4, Score: 4}, {QuestionID: 5, Score: 4}},
			4.6, domain.ChallengeTierExcellent,
		},
		{
			"boundary 4.4 is good",
			[]ChallengeAnswer{{QuestionID: 1, Score: 5}, {QuestionID: 2, Score: 5}, {QuestionID: 3, Score: 4}, {QuestionID: 4, Score: 4}, {QuestionID: 5, Score: 4}},
			4.4, domain.ChallengeTierGood,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := service.Score(context.Background(), tc.answers)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if result.Average != tc.average {
				t.Fatalf("expected average %v, got %v", tc.average, result.Average)
			}
			if result.Tier != tc.tier {
				t.Fatalf("expected tier %q, got %q", tc.tier, result.Tier)
			}
			if result.Analysis == "" {
				t.Fatal("expected analysis text")
			}
			if len(result.Recommendations) != 3 {
				t.Fatalf("expected 3 recommendations, got %d", len(result.Recommendations))
			}
		})
	}
}

func TestChallengeServiceScoreRoundsToOneDecimal(t *testing.T) {
	service := newTestChallengeService(t)

	result, err := service.Score(context.Background(), []ChallengeAnswer{{QuestionID: 1, Score: 5}, {QuestionID: 2, Score: 4}, {QuestionID: 3, Score: 4}, {QuestionID: 4, Score: 4}, {QuestionID: 5, Score: 4}})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Average != 4.2 {
		t.Fatalf("expected 4.2, got %v", result.Average)
	}
	if result.TotalScore != 21 {
		t.Fatalf("expected total 21, got %d", result.TotalScore)
	}
}

func TestChallengeServiceScoreValidation(t *testing.T) {
	service := newTestChallengeService(t)

	if _, err := service.Score(context.Background(), answersWithScore(3)[:4]); !errors.Is(err, ErrChallengeInvalidInput) {
		t.Fatalf("expected ErrChallengeInvalidInput for partial answers, got %v", err)
	}

	outOfRange := answersWithScore(3)
	outOfRange[2].Score = 6
	if _, err := service.Score(context.Background(), outOfRange); !errors.Is(err, ErrChallengeInvalidInput) {
		t.Fatalf("expected ErrChallengeInvalidInput for out-of-range score, got %v", err)
	}

	duplicate := answersWithScore(3)
	duplicate[4].QuestionID = 1
	if _, err := service.Score(context.Background(), duplicate); !errors.Is(err, ErrChallengeInvalidInput) {
		t.Fatalf("expected ErrChallengeInvalidInput for duplicate question, got %v", err)
	}

	unknown := answersWithScore(3)
	unknown[0].QuestionID = 99
	if _, err := service.Score(context.Background(), unknown); !errors.Is(err, ErrChallengeInvalidInput) {
		t.Fatalf("expected ErrChallengeInvalidInput for unknown question, got %v", err)
	}
}
