package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/utils"
)

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeFeedbackRepo struct {
	created   []*models.Feedback
	upserted  map[string]*models.Feedback
	writeErr  error
	stored    *models.Feedback
	lookupErr error
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.created = append(f.created, fb)
	return nil
}

func (f *fakeFeedbackRepo) Upsert(_ context.Context, id string, fb *models.Feedback) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	fb.ID = id
	if f.upserted == nil {
		f.upserted = make(map[string]*models.Feedback)
	}
	f.upserted[id] = fb
	return nil
}

func (f *fakeFeedbackRepo) GetByInterviewAndUser(context.Context, string, string) (*models.Feedback, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.stored, nil
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

const sampleFeedbackJSON = `{
  "totalScore": 78,
  "categoryScores": {
    "communicationSkills": 80,
    "technicalKnowledge": 75,
    "problemSolving": 70,
    "culturalFit": 85,
    "confidenceClarity": 80
  },
  "strengths": ["clear communication", "solid Go fundamentals"],
  "areasForImprovement": ["deeper system design reasoning"],
  "finalAssessment": "A solid candidate with room to grow."
}`

func sampleTranscript() []models.TranscriptEntry {
	return []models.TranscriptEntry{
		{Role: models.RoleAssistant, Content: "Walk me through a recent project."},
		{Role: models.RoleUser, Content: "I built a matching service in Go."},
	}
}

func TestCreateFeedbackAcceptsBareAndFencedReplies(t *testing.T) {
	replies := map[string]string{
		"bare":         sampleFeedbackJSON,
		"fenced":       "```json\n" + sampleFeedbackJSON + "\n```",
		"plain fence":  "```\n" + sampleFeedbackJSON + "\n```",
		"padded fence": "  \n```json\n" + sampleFeedbackJSON + "\n```\n  ",
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			repo := &fakeFeedbackRepo{}
			svc := NewFeedbackService(repo, &fakeLLM{reply: reply}, discardLogger())

			res := svc.Create(context.Background(), CreateFeedbackParams{
				InterviewID: "iv-1",
				UserID:      "user-1",
				Transcript:  sampleTranscript(),
			})
			require.True(t, res.Success)
			require.NotEmpty(t, res.FeedbackID)

			require.Len(t, repo.created, 1)
			fb := repo.created[0]
			assert.Equal(t, float64(78), fb.TotalScore)
			assert.Equal(t, float64(80), fb.CategoryScores.CommunicationSkills)
			assert.Equal(t, float64(70), fb.CategoryScores.ProblemSolving)
			assert.Equal(t, "A solid candidate with room to grow.", fb.FinalAssessment)
			assert.Len(t, fb.Strengths, 2)
		})
	}
}

func TestCreateFeedbackPromptContainsTranscript(t *testing.T) {
	provider := &fakeLLM{reply: sampleFeedbackJSON}
	svc := NewFeedbackService(&fakeFeedbackRepo{}, provider, discardLogger())

	svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
	})

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "user: I built a matching service in Go.")
	assert.Contains(t, provider.prompts[0], "assistant: Walk me through a recent project.")
}

func TestCreateFeedbackUpsertKeepsGivenID(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, &fakeLLM{reply: sampleFeedbackJSON}, discardLogger())

	res := svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
		FeedbackID:  "fb-9",
	})
	require.True(t, res.Success)
	assert.Equal(t, "fb-9", res.FeedbackID)

	assert.Empty(t, repo.created)
	require.Contains(t, repo.upserted, "fb-9")
	assert.Equal(t, "fb-9", repo.upserted["fb-9"].ID)
}

func TestCreateFeedbackRejectsMissingCategory(t *testing.T) {
	incomplete := `{
  "totalScore": 60,
  "categoryScores": {
    "communicationSkills": 60,
    "technicalKnowledge": 60,
    "problemSolving": 60,
    "culturalFit": 60
  },
  "strengths": [],
  "areasForImprovement": [],
  "finalAssessment": "ok"
}`
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, &fakeLLM{reply: incomplete}, discardLogger())

	res := svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
	})
	assert.False(t, res.Success)
	assert.Empty(t, repo.created)
	assert.Empty(t, repo.upserted)
}

func TestCreateFeedbackRejectsNonJSONReply(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, &fakeLLM{reply: "Sure! Here is my assessment of the interview..."}, discardLogger())

	res := svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
	})
	assert.False(t, res.Success)
	assert.Empty(t, repo.created)
}

func TestCreateFeedbackGenerationFailure(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, &fakeLLM{err: errors.New("quota exhausted")}, discardLogger())

	res := svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
	})
	assert.False(t, res.Success)
	assert.Empty(t, repo.created)
}

func TestCreateFeedbackPersistFailure(t *testing.T) {
	repo := &fakeFeedbackRepo{writeErr: errors.New("write concern timeout")}
	svc := NewFeedbackService(repo, &fakeLLM{reply: sampleFeedbackJSON}, discardLogger())

	res := svc.Create(context.Background(), CreateFeedbackParams{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Transcript:  sampleTranscript(),
	})
	assert.False(t, res.Success)
	assert.Empty(t, res.FeedbackID)
}

func TestGetByInterviewAndUserValidation(t *testing.T) {
	svc := NewFeedbackService(&fakeFeedbackRepo{}, &fakeLLM{}, discardLogger())

	_, err := svc.GetByInterviewAndUser(context.Background(), "", "user-1")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.GetByInterviewAndUser(context.Background(), "iv-1", "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestGetByInterviewAndUser(t *testing.T) {
	stored := &models.Feedback{ID: "fb-1", InterviewID: "iv-1", UserID: "user-1", TotalScore: 78}
	svc := NewFeedbackService(&fakeFeedbackRepo{stored: stored}, &fakeLLM{}, discardLogger())

	fb, err := svc.GetByInterviewAndUser(context.Background(), "iv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, stored, fb)

	svc = NewFeedbackService(&fakeFeedbackRepo{lookupErr: utils.ErrNotFound}, &fakeLLM{}, discardLogger())
	_, err = svc.GetByInterviewAndUser(context.Background(), "iv-1", "user-1")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	svc = NewFeedbackService(&fakeFeedbackRepo{lookupErr: errors.New("socket closed")}, &fakeLLM{}, discardLogger())
	_, err = svc.GetByInterviewAndUser(context.Background(), "iv-1", "user-1")
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}
