package services

import (
	"context"
	"errors"
	"math"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

// ErrChallengeInvalidInput indicates the answer set is incomplete or out of range.
var ErrChallengeInvalidInput = errors.New("challenge service: invalid input")

var challengeQuestions = []domain.ChallengeQuestion{
	{ID: 1, Text: "규칙적인 운동을 하고 있습니까?", Category: "운동"},
	{ID: 2, Text: "충분한 수면을 취하고 있습니까?", Category: "수면"},
	{ID: 3, Text: "균형 잡힌 식단을 유지하고 있습니까?", Category: "영양"},
	{ID: 4, Text: "스트레스를 잘 관리하고 있습니까?", Category: "정신건강"},
	{ID: 5, Text: "전반적으로 건강한 생활습관을 유지하고 있습니까?", Category: "전반적 건강"},
}

// ChallengeScoreLabels maps Likert scores to their display labels.
var ChallengeScoreLabels = map[int]string{
	1: "전혀 아니다",
	2: "아니다",
	3: "보통이다",
	4: "그렇다",
	5: "매우 그렇다",
}

type tierContent struct {
	analysis        string
	recommendations []string
}

var challengeTierContent = map[domain.ChallengeTier]tierContent{
	domain.ChallengeTierExcellent: {
		analysis: "훌륭한 건강 상태를 유지하고 있습니다!",
		recommendations: []string{
			"현재 건강한 생활습관을 잘 유지하고 있습니다.",
			"규칙적인 건강 검진을 받아보세요.",
			"다른 사람들에게 건강한 생활습관을 공유해보세요.",
		},
	},
	domain.ChallengeTierGood: {
		analysis: "좋은 건강 상태를 유지하고 있습니다.",
		recommendations: []string{
			"전반적으로 좋은 건강 상태입니다.",
			"몇 가지 영역에서 개선할 여지가 있습니다.",
			"규칙적인 운동을 더 늘려보세요.",
		},
	},
	domain.ChallengeTierAverage: {
		analysis: "건강 관리에 더 신경 써야 할 것 같습니다.",
		recommendations: []string{
			"건강한 생활습관 개선이 필요합니다.",
			"규칙적인 운동과 균형 잡힌 식단을 유지하세요.",
			"충분한 수면을 취하도록 노력하세요.",
		},
	},
	domain.ChallengeTierPoor: {
		analysis: "건강 관리에 적극적인 개선이 필요합니다.",
		recommendations: []string{
			"건강한 생활습관을 개선해야 합니다.",
			"전문가와 상담을 받아보세요.",
			"작은 변화부터 시작해보세요.",
		},
	},
	domain.ChallengeTierVeryPoor: {
		analysis: "건강 관리에 즉각적인 개선이 필요합니다.",
		recommendations: []string{
			"즉시 건강한 생활습관을 개선해야 합니다.",
			"의료 전문가와 상담을 받으세요.",
			"단계적으로 건강한 습관을 만들어가세요.",
		},
	},
}

// ChallengeServiceDeps wires the clock used to stamp results.
type ChallengeServiceDeps struct {
	Clock  func() time.Time
	Logger Logger
}

type challengeService struct {
	now    func() time.Time
	logger Logger
}

// NewChallengeService constructs a ChallengeService.
func NewChallengeService(deps ChallengeServiceDeps) (ChallengeService, error) {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &challengeService{
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// Questions returns the fixed ordered question set.
func (s *challengeService) Questions(_ context.Context) ([]ChallengeQuestion, error) {
	questions := make([]ChallengeQuestion, len(challengeQuestions))
	copy(questions, challengeQuestions)
	return questions, nil
}

// Score derives the result from a complete answer set. Every question must be
// answered exactly once with a score in [1, 5].
func (s *challengeService) Score(ctx context.Context, answers []ChallengeAnswer) (ChallengeResult, error) {
	if len(answers) != len(challengeQuestions) {
		return ChallengeResult{}, ErrChallengeInvalidInput
	}

	seen := make(map[int]bool, len(answers))
	total := 0
	for _, answer := range answers {
		if answer.Score < 1 || answer.Score > 5 {
			return ChallengeResult{}, ErrChallengeInvalidInput
		}
		if !knownQuestionID(answer.QuestionID) || seen[answer.QuestionID] {
			return ChallengeResult{}, ErrChallengeInvalidInput
		}
		seen[answer.QuestionID] = true
		total += answer.Score
	}

	average := roundToOneDecimal(float64(total) / float64(len(answers)))
	tier := classifyTier(average)
	content := challengeTierContent[tier]

	recommendations := make([]string, len(content.recommendations))
	copy(recommendations, content.recommendations)

	result := ChallengeResult{
		TotalScore:      total,
		Average:         average,
		Tier:            tier,
		Analysis:        content.analysis,
		Recommendations: recommendations,
		ScoredAt:        s.now(),
	}

	s.logger(ctx, "challenge.scored", map[string]any{
		"average": result.Average,
		"tier":    string(result.Tier),
	})
	return result, nil
}

func knownQuestionID(id int) bool {
	for _, question := range challengeQuestions {
		if question.ID == id {
			return true
		}
	}
	return false
}

func classifyTier(average float64) domain.ChallengeTier {
	switch {
	case average >= 4.5:
		return domain.ChallengeTierExcellent
	case average >= 3.5:
		return domain.ChallengeTierGood
	case average >= 2.5:
		return domain.ChallengeTierAverage
	case average >= 1.5:
		return domain.ChallengeTierPoor
	default:
		return domain.ChallengeTierVeryPoor
	}
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
