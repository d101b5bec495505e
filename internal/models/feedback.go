package models

import "time"

// CategoryScores holds the five fixed scoring categories (0-100 each).
type CategoryScores struct {
	CommunicationSkills float64 `bson:"communication_skills" json:"communicationSkills"`
	TechnicalKnowledge  float64 `bson:"technical_knowledge" json:"technicalKnowledge"`
	ProblemSolving      float64 `bson:"problem_solving" json:"problemSolving"`
	CulturalFit         float64 `bson:"cultural_fit" json:"culturalFit"`
	ConfidenceClarity   float64 `bson:"confidence_clarity" json:"confidenceClarity"`
}

type Feedback struct {
	ID          string `bson:"_id" json:"id"`
	InterviewID string `bson:"interview_id" json:"interviewId"`
	UserID      string `bson:"user_id" json:"userId"`

	TotalScore          float64        `bson:"total_score" json:"totalScore"`
	CategoryScores      CategoryScores `bson:"category_scores" json:"categoryScores"`
	Strengths           []string       `bson:"strengths" json:"strengths"`
	AreasForImprovement []string       `bson:"areas_for_improvement" json:"areasForImprovement"`
	FinalAssessment     string         `bson:"final_assessment" json:"finalAssessment"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
