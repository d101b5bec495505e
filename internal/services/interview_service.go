package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voxprep/backend/internal/cache"
	"github.com/voxprep/backend/internal/catalog"
	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/providers/llm"
	mongorepo "github.com/voxprep/backend/internal/repositories/mongo"
	"github.com/voxprep/backend/internal/utils"
)

const (
	defaultListLimit = 20
	listingCacheTTL  = 60 * time.Second
)

type CreateInterviewParams struct {
	Role      string
	Level     string
	Type      string // Technical|Behavioural|Mixed
	TechStack string // comma-joined
	Amount    int
	Domain    string // optional catalog domain id
	UserID    string // always the authenticated caller
}

type InterviewService interface {
	Create(ctx context.Context, p CreateInterviewParams) (string, error)
	GetByID(ctx context.Context, id string) (*models.Interview, error)

	// Listing reads degrade instead of failing: a missing index triggers the
	// fallback plan, and any other failure yields an empty result.
	ListLatest(ctx context.Context, excludeUserID string, limit int) []models.Interview
	ListByUser(ctx context.Context, userID string) []models.Interview
}

type interviewService struct {
	interviews mongorepo.InterviewRepository
	llm        llm.Provider
	cache      cache.Cache
	log        *logrus.Logger
}

func NewInterviewService(interviews mongorepo.InterviewRepository, provider llm.Provider, c cache.Cache, log *logrus.Logger) InterviewService {
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{interviews: interviews, llm: provider, cache: c, log: log}
}

const questionPromptFormat = `Prepare questions for a job interview.
The job role is %s.
The job experience level is %s.
The tech stack used in the job is: %s.
The focus between behavioural and technical questions should lean towards: %s.
%s
The amount of questions required is: %d.

Create a mix of:
- Technical questions specific to the role and tech stack
- Problem-solving scenarios relevant to the domain
- Behavioral questions about teamwork and communication
- Questions about industry best practices and trends

Please return only the questions, without any additional text.
The questions are going to be read by a voice assistant so do not use "/" or "*" or any other special characters which might break the voice assistant.
Return the questions formatted like this:
["Question 1", "Question 2", "Question 3"]`

func (s *interviewService) Create(ctx context.Context, p CreateInterviewParams) (string, error) {
	const op = "InterviewService.Create"

	if p.UserID == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "authenticated user is required", nil)
	}
	if p.Role == "" || p.Level == "" || p.Type == "" || p.TechStack == "" || p.Amount <= 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "role, level, type, techstack, and amount are required", nil)
	}
	// Domain validation happens before any external call.
	if p.Domain != "" && catalog.DomainByID(p.Domain) == nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "invalid domain selected", nil)
	}

	domainContext := ""
	if p.Domain != "" {
		domainContext = fmt.Sprintf(`This interview is specifically for the %s domain.
Focus on domain-specific scenarios, challenges, and best practices.
Include questions about industry trends, common tools, and real-world applications in this domain.`, p.Domain)
	}

	prompt := fmt.Sprintf(questionPromptFormat, p.Role, p.Level, p.TechStack, p.Type, domainContext, p.Amount)

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to generate interview questions", err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &questions); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to generate valid interview questions", err)
	}

	iv := &models.Interview{
		ID:         uuid.NewString(),
		Role:       p.Role,
		Type:       p.Type,
		Level:      p.Level,
		TechStack:  splitTechStack(p.TechStack),
		Questions:  questions,
		Domain:     p.Domain,
		Finalized:  true,
		CoverImage: catalog.RandomCover(),
		UserID:     p.UserID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.interviews.Create(ctx, iv); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}
	return iv.ID, nil
}

func (s *interviewService) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	const op = "InterviewService.GetByID"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}

	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	return iv, nil
}

func (s *interviewService) ListLatest(ctx context.Context, excludeUserID string, limit int) []models.Interview {
	if limit <= 0 {
		limit = defaultListLimit
	}

	key := fmt.Sprintf("interviews:latest:%s:%d", excludeUserID, limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached
	}

	out, err := s.interviews.FindLatestIndexed(ctx, excludeUserID, int64(limit))
	if err == nil {
		s.toCache(ctx, key, out)
		return out
	}
	if !errors.Is(err, mongorepo.ErrIndexUnavailable) {
		s.log.WithError(err).Error("failed to list latest interviews")
		return []models.Interview{}
	}

	s.log.WithError(err).Warn("listing index missing, using fallback query")

	// Over-fetch to compensate for dropping the caller's own records.
	docs, err := s.interviews.FindFinalized(ctx, int64(limit*3))
	if err != nil {
		s.log.WithError(err).Error("fallback listing query failed")
		return []models.Interview{}
	}

	filtered := docs[:0]
	for _, iv := range docs {
		if iv.UserID != excludeUserID {
			filtered = append(filtered, iv)
		}
	}
	sortByCreatedDesc(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func (s *interviewService) ListByUser(ctx context.Context, userID string) []models.Interview {
	key := "interviews:user:" + userID
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached
	}

	out, err := s.interviews.FindByUserIndexed(ctx, userID)
	if err == nil {
		s.toCache(ctx, key, out)
		return out
	}
	if !errors.Is(err, mongorepo.ErrIndexUnavailable) {
		s.log.WithError(err).Error("failed to list user interviews")
		return []models.Interview{}
	}

	s.log.WithError(err).Warn("listing index missing, using fallback query")

	docs, err := s.interviews.FindByUser(ctx, userID)
	if err != nil {
		s.log.WithError(err).Error("fallback listing query failed")
		return []models.Interview{}
	}
	sortByCreatedDesc(docs)
	return docs
}

// fromCache / toCache are read-through helpers; cache trouble never surfaces.
func (s *interviewService) fromCache(ctx context.Context, key string) ([]models.Interview, bool) {
	if s.cache == nil {
		return nil, false
	}
	var out []models.Interview
	hit, err := s.cache.GetJSON(ctx, key, &out)
	if err != nil || !hit {
		return nil, false
	}
	return out, true
}

func (s *interviewService) toCache(ctx context.Context, key string, val []models.Interview) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, val, listingCacheTTL); err != nil {
		s.log.WithError(err).Debug("failed to cache listing")
	}
}

// sortByCreatedDesc orders newest first; a zero timestamp sorts last.
func sortByCreatedDesc(ivs []models.Interview) {
	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].CreatedAt.After(ivs[j].CreatedAt)
	})
}

func splitTechStack(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
