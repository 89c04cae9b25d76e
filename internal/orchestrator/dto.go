package orchestrator

import (
	"time"

	"github.com/hirecoach/interviewcore/pkg/types"
)

// createSessionRequest is the JSON body for POST /sessions.
type createSessionRequest struct {
	JobTitle     string `json:"job_title"`
	Seniority    string `json:"seniority"`
	Language     string `json:"language"`
	NumQuestions int    `json:"num_questions"`
	Mode         string `json:"mode"`
}

// questionView is the caller-facing projection of a types.Question; it omits
// SessionID, which is already implied by the URL path.
type questionView struct {
	ID         string `json:"id"`
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Competency string `json:"competency"`
	Text       string `json:"text"`
}

func newQuestionView(q types.Question) questionView {
	return questionView{
		ID:         q.ID,
		Index:      q.Index,
		Kind:       string(q.Kind),
		Competency: q.Competency,
		Text:       q.Text,
	}
}

// createSessionResponse is the JSON body returned from POST /sessions.
type createSessionResponse struct {
	Session   sessionView    `json:"session"`
	Questions []questionView `json:"questions,omitempty"`
}

// sessionView is the caller-facing projection of a types.Session.
type sessionView struct {
	ID             string      `json:"id"`
	JobTitle       string      `json:"job_title"`
	Seniority      string      `json:"seniority"`
	Language       string      `json:"language"`
	NumQuestions   int         `json:"num_questions"`
	Mode           string      `json:"mode"`
	Status         string      `json:"status"`
	OverallScore   *int        `json:"overall_score,omitempty"`
	QuestionsAsked int         `json:"questions_asked"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	Report         *reportView `json:"report,omitempty"`
}

func newSessionView(s types.Session) sessionView {
	v := sessionView{
		ID:             s.ID,
		JobTitle:       s.JobTitle,
		Seniority:      string(s.Seniority),
		Language:       s.Language,
		NumQuestions:   s.NumQuestions,
		Mode:           string(s.Mode),
		Status:         string(s.Status),
		OverallScore:   s.OverallScore,
		QuestionsAsked: s.QuestionsAsked,
		CreatedAt:      s.CreatedAt,
		CompletedAt:    s.CompletedAt,
	}
	if s.Summary != nil {
		rv := newReportView(*s.Summary)
		v.Report = &rv
	}
	return v
}

// reportView is the caller-facing projection of a types.Report.
type reportView struct {
	OverallScore   int      `json:"overall_score"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	ActionPlan     []string `json:"action_plan"`
	SuggestedRoles []string `json:"suggested_roles,omitempty"`
	CompletionNote string   `json:"completion_note,omitempty"`
	GeneratedBy    string   `json:"generated_by"`
}

func newReportView(r types.Report) reportView {
	return reportView{
		OverallScore:   r.OverallScore,
		Strengths:      r.Strengths,
		Weaknesses:     r.Weaknesses,
		ActionPlan:     r.ActionPlan,
		SuggestedRoles: r.SuggestedRoles,
		CompletionNote: r.CompletionNote,
		GeneratedBy:    string(r.GeneratedBy),
	}
}

// submitAnswerRequest is the JSON body for POST /sessions/{id}/answers.
type submitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

// answerView is the caller-facing projection of a types.Answer.
type answerView struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Text       string    `json:"text"`
	Relevance  int       `json:"relevance"`
	Clarity    int       `json:"clarity"`
	Structure  int       `json:"structure"`
	Impact     int       `json:"impact"`
	Overall    int       `json:"overall"`
	CoachNotes string    `json:"coach_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAnswerView(a types.Answer) answerView {
	return answerView{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Text:       a.Text,
		Relevance:  a.Relevance,
		Clarity:    a.Clarity,
		Structure:  a.Structure,
		Impact:     a.Impact,
		Overall:    a.Overall,
		CoachNotes: a.CoachNotes,
		CreatedAt:  a.CreatedAt,
	}
}

// submitAnswerResponse is the JSON body returned from
// POST /sessions/{id}/answers: the scored answer plus enough information for
// the client to drive a scripted session without its own copy of the
// question list.
type submitAnswerResponse struct {
	Answer       answerView    `json:"answer"`
	NextQuestion *questionView `json:"next_question,omitempty"`
	IsLast       bool          `json:"is_last"`
}

// mintTokenRequest is the JSON body for POST /sessions/{id}/token.
type mintTokenRequest struct {
	ParticipantIdentity string `json:"participant_identity"`
}

// mintTokenResponse is the JSON body returned from POST /sessions/{id}/token.
type mintTokenResponse struct {
	Token     string    `json:"token"`
	Room      string    `json:"room"`
	Identity  string    `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// errorResponse is the uniform JSON error body written by writeError.
type errorResponse struct {
	Error string `json:"error"`
}
