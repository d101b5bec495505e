package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/providers/llm"
	mongorepo "github.com/voxprep/backend/internal/repositories/mongo"
	"github.com/voxprep/backend/internal/transcript"
	"github.com/voxprep/backend/internal/utils"
)

type CreateFeedbackParams struct {
	InterviewID string
	UserID      string
	Transcript  []models.TranscriptEntry
	// FeedbackID, when set, makes the write an idempotent overwrite of that
	// document. Without it every call allocates a fresh document.
	FeedbackID string
}

// CreateFeedbackResult is the uniform outcome of the pipeline: transport,
// parse, and persistence failures all collapse into Success=false.
type CreateFeedbackResult struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId,omitempty"`
}

type FeedbackService interface {
	Create(ctx context.Context, p CreateFeedbackParams) CreateFeedbackResult
	GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type feedbackService struct {
	feedback mongorepo.FeedbackRepository
	llm      llm.Provider
	log      *logrus.Logger
}

func NewFeedbackService(feedback mongorepo.FeedbackRepository, provider llm.Provider, log *logrus.Logger) FeedbackService {
	if log == nil {
		log = logrus.New()
	}
	return &feedbackService{feedback: feedback, llm: provider, log: log}
}

const feedbackPromptFormat = `Score this interview on 5 categories (0-100 each):
Transcript:
%s

Return JSON: { "totalScore": number, "categoryScores": { "communicationSkills": number, "technicalKnowledge": number, "problemSolving": number, "culturalFit": number, "confidenceClarity": number }, "strengths": string[], "areasForImprovement": string[], "finalAssessment": string }`

// feedbackReply mirrors the JSON shape the prompt demands. Category scores
// decode into a map so omissions are detectable.
type feedbackReply struct {
	TotalScore          float64            `json:"totalScore"`
	CategoryScores      map[string]float64 `json:"categoryScores"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areasForImprovement"`
	FinalAssessment     string             `json:"finalAssessment"`
}

var categoryNames = []string{
	"communicationSkills",
	"technicalKnowledge",
	"problemSolving",
	"culturalFit",
	"confidenceClarity",
}

func (s *feedbackService) Create(ctx context.Context, p CreateFeedbackParams) CreateFeedbackResult {
	log := s.log.WithFields(logrus.Fields{
		"interview_id": p.InterviewID,
		"user_id":      p.UserID,
	})

	prompt := fmt.Sprintf(feedbackPromptFormat, transcript.Format(p.Transcript))

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("feedback generation failed")
		return CreateFeedbackResult{}
	}

	reply, err := parseFeedbackReply(raw)
	if err != nil {
		log.WithError(err).Error("feedback reply rejected")
		return CreateFeedbackResult{}
	}

	fb := &models.Feedback{
		InterviewID: p.InterviewID,
		UserID:      p.UserID,
		TotalScore:  reply.TotalScore,
		CategoryScores: models.CategoryScores{
			CommunicationSkills: reply.CategoryScores["communicationSkills"],
			TechnicalKnowledge:  reply.CategoryScores["technicalKnowledge"],
			ProblemSolving:      reply.CategoryScores["problemSolving"],
			CulturalFit:         reply.CategoryScores["culturalFit"],
			ConfidenceClarity:   reply.CategoryScores["confidenceClarity"],
		},
		Strengths:           reply.Strengths,
		AreasForImprovement: reply.AreasForImprovement,
		FinalAssessment:     reply.FinalAssessment,
		CreatedAt:           time.Now().UTC(),
	}

	id := p.FeedbackID
	if id != "" {
		err = s.feedback.Upsert(ctx, id, fb)
	} else {
		id = uuid.NewString()
		fb.ID = id
		err = s.feedback.Create(ctx, fb)
	}
	if err != nil {
		log.WithError(err).Error("failed to persist feedback")
		return CreateFeedbackResult{}
	}

	return CreateFeedbackResult{Success: true, FeedbackID: id}
}

func (s *feedbackService) GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	const op = "FeedbackService.GetByInterviewAndUser"

	if interviewID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id and user_id are required", nil)
	}

	fb, err := s.feedback.GetByInterviewAndUser(ctx, interviewID, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "feedback not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get feedback", err)
	}
	return fb, nil
}

// fenceRE matches an optional surrounding markdown code fence in the reply.
var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

func parseFeedbackReply(raw string) (*feedbackReply, error) {
	text := strings.TrimSpace(raw)
	if m := fenceRE.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var reply feedbackReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, err
	}

	for _, name := range categoryNames {
		if _, ok := reply.CategoryScores[name]; !ok {
			return nil, fmt.Errorf("reply is missing category score %q", name)
		}
	}
	return &reply, nil
}
