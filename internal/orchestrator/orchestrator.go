// Package orchestrator implements the Session Orchestrator (component C5):
// the HTTP surface that lets a client create an interview session, submit
// scripted-mode answers, mint a room credential for the voice agent, and
// retrieve the session's report on demand.
//
// Handlers follow the same shape as the teacher's WebRTC signaling server —
// a thin http.ServeMux, JSON request/response bodies decoded and encoded by
// hand, errors classified once via [apierr] and mapped to a status code.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/apierr"
	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/pkg/broker"
	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// defaultNumQuestions is used when a create-session request omits num_questions.
const defaultNumQuestions = 5

// maxNumQuestions bounds how many questions a single session may request.
const maxNumQuestions = 20

// roomTokenTTL is how long a minted room credential remains valid.
const roomTokenTTL = 10 * time.Minute

// Server holds the dependencies shared by every handler: the durable store,
// the transport broker, and the AI service adapters used for scripted-mode
// question planning and answer evaluation.
type Server struct {
	store     store.Store
	brk       broker.Broker
	planner   *aiservice.Planner
	evaluator *aiservice.Evaluator
	finalizer *finalizer.Finalizer
}

// New builds a Server. fin is used to generate reports on demand and at
// scripted-session completion; planner and evaluator back scripted mode's
// question generation and per-answer scoring.
func New(st store.Store, brk broker.Broker, planner *aiservice.Planner, evaluator *aiservice.Evaluator, fin *finalizer.Finalizer) *Server {
	return &Server{store: st, brk: brk, planner: planner, evaluator: evaluator, finalizer: fin}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("POST /sessions/{id}/finish", s.handleFinishSession)
	mux.HandleFunc("GET /sessions/{id}/report", s.handleGetReport)
	mux.HandleFunc("POST /sessions/{id}/token", s.handleMintToken)
}

// handleCreateSession handles POST /sessions. In scripted mode it plans the
// full question set up front via the Planner; conversational mode creates a
// bare session that the Interview Agent populates as it runs.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.ValidationErr(err, "decode request body"))
		return
	}

	if req.JobTitle == "" {
		writeError(w, apierr.ValidationErr(nil, "job_title is required"))
		return
	}
	seniority := types.Seniority(req.Seniority)
	if !seniority.Valid() {
		writeError(w, apierr.ValidationErr(nil, "seniority %q is not recognised", req.Seniority))
		return
	}
	mode := types.InterviewMode(req.Mode)
	if mode == "" {
		mode = types.ModeConversational
	}
	if mode != types.ModeScripted && mode != types.ModeConversational {
		writeError(w, apierr.ValidationErr(nil, "mode %q is not recognised", req.Mode))
		return
	}
	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = defaultNumQuestions
	}
	if numQuestions > maxNumQuestions {
		writeError(w, apierr.ValidationErr(nil, "num_questions %d exceeds the maximum of %d", numQuestions, maxNumQuestions))
		return
	}

	session := types.Session{
		ID:           uuid.NewString(),
		JobTitle:     req.JobTitle,
		Seniority:    seniority,
		Language:     req.Language,
		NumQuestions: numQuestions,
		Mode:         mode,
		Status:       types.StatusActive,
		CreatedAt:    time.Now(),
	}

	ctx := r.Context()
	if err := s.store.CreateSession(ctx, session); err != nil {
		writeError(w, apierr.FromStore(err, "create session"))
		return
	}

	var views []questionView
	if mode == types.ModeScripted {
		questions, err := s.planner.Plan(ctx, aiservice.PlanRequest{
			JobTitle:     req.JobTitle,
			Seniority:    seniority,
			Language:     req.Language,
			NumQuestions: numQuestions,
		})
		if err != nil {
			writeError(w, apierr.FatalErr(err, "plan questions for session %q", session.ID))
			return
		}
		for i := range questions {
			questions[i].ID = uuid.NewString()
			questions[i].SessionID = session.ID
		}
		if err := s.store.CreateQuestions(ctx, session.ID, questions); err != nil {
			writeError(w, apierr.FromStore(err, "store questions for session %q", session.ID))
			return
		}
		views = make([]questionView, len(questions))
		for i, q := range questions {
			views[i] = newQuestionView(q)
		}
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session:   newSessionView(session),
		Questions: views,
	})
}

// handleGetSession handles GET /sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, apierr.FromStore(err, "get session %q", r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(*session))
}

// handleSubmitAnswer handles POST /sessions/{id}/answers: evaluates the
// candidate's text answer to a scripted question and stores the scored
// result. Only meaningful for scripted-mode sessions; the Interview Agent
// drives conversational-mode answers directly via the realtime transcript.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.ValidationErr(err, "decode request body"))
		return
	}
	if req.QuestionID == "" || req.Text == "" {
		writeError(w, apierr.ValidationErr(nil, "question_id and text are required"))
		return
	}

	ctx := r.Context()
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		writeError(w, apierr.FromStore(err, "get session %q", sessionID))
		return
	}
	if session.Status != types.StatusActive {
		writeError(w, apierr.ConflictErr(nil, "session %q is not active", sessionID))
		return
	}
	if session.Mode != types.ModeScripted {
		writeError(w, apierr.ConflictErr(nil, "session %q is not in scripted mode", sessionID))
		return
	}

	question, err := s.store.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		writeError(w, apierr.FromStore(err, "get question %q", req.QuestionID))
		return
	}
	if question.SessionID != sessionID {
		writeError(w, apierr.ValidationErr(nil, "question %q does not belong to session %q", req.QuestionID, sessionID))
		return
	}

	result, err := s.evaluator.Evaluate(ctx, aiservice.EvalRequest{
		QuestionText: question.Text,
		AnswerText:   req.Text,
		Context:      fmt.Sprintf("%s interview for a %s position", session.Seniority, session.JobTitle),
	})
	if err != nil {
		writeError(w, apierr.FatalErr(err, "evaluate answer to question %q", req.QuestionID))
		return
	}

	answer := types.Answer{
		ID:         uuid.NewString(),
		QuestionID: req.QuestionID,
		Text:       req.Text,
		Relevance:  result.Relevance,
		Clarity:    result.Clarity,
		Structure:  result.Structure,
		Impact:     result.Impact,
		Overall:    result.Overall,
		CoachNotes: result.CoachNotes,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateAnswer(ctx, answer); err != nil {
		writeError(w, apierr.FromStore(err, "store answer for question %q", req.QuestionID))
		return
	}

	questions, err := s.store.ListQuestions(ctx, sessionID)
	if err != nil {
		writeError(w, apierr.FromStore(err, "list questions for session %q", sessionID))
		return
	}
	var next *questionView
	for _, q := range questions {
		if q.Index == question.Index+1 {
			v := newQuestionView(q)
			next = &v
			break
		}
	}

	writeJSON(w, http.StatusCreated, submitAnswerResponse{
		Answer:       newAnswerView(answer),
		NextQuestion: next,
		IsLast:       next == nil,
	})
}

// handleFinishSession handles POST /sessions/{id}/finish: a scripted-mode
// session tells the orchestrator all answers have been submitted, triggering
// finalization without waiting for a realtime agent disconnect. Scripted
// sessions must have every Question answered first; finishing early returns
// Conflict listing the indices still outstanding, the same check
// finalizer.summarizeScripted performs to compute partiality.
func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	ctx := r.Context()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		writeError(w, apierr.FromStore(err, "get session %q", sessionID))
		return
	}

	if session.Mode == types.ModeScripted {
		questions, err := s.store.ListQuestions(ctx, sessionID)
		if err != nil {
			writeError(w, apierr.FromStore(err, "list questions for session %q", sessionID))
			return
		}
		answers, err := s.store.ListAnswers(ctx, sessionID)
		if err != nil {
			writeError(w, apierr.FromStore(err, "list answers for session %q", sessionID))
			return
		}
		answered := make(map[string]bool, len(answers))
		for _, a := range answers {
			answered[a.QuestionID] = true
		}
		var unanswered []int
		for _, q := range questions {
			if !answered[q.ID] {
				unanswered = append(unanswered, q.Index)
			}
		}
		if len(unanswered) > 0 {
			writeError(w, apierr.ConflictErr(nil, "session %q has unanswered questions at indices %v", sessionID, unanswered))
			return
		}
	}

	report, err := s.finalizer.Finalize(ctx, sessionID)
	if err != nil {
		// This is an explicit, client-driven terminal request — unlike
		// handleGetReport's idempotent polling, an error here really does
		// mean the session can never be finalized by this call again, so
		// mark it Failed rather than leaving it stuck Active.
		if failErr := s.finalizer.Fail(ctx, sessionID, err); failErr != nil {
			slog.Warn("orchestrator: failed to mark session failed", "session_id", sessionID, "err", failErr)
		}
		writeError(w, apierr.FatalErr(err, "finalize session %q", sessionID))
		return
	}
	writeJSON(w, http.StatusOK, newReportView(*report))
}

// handleGetReport handles GET /sessions/{id}/report. Finalize is idempotent,
// so this both generates the report on first call and returns the
// already-committed one on every subsequent call. A transient error here
// stays retryable — Finalize is not told the session is unrecoverable,
// unlike handleFinishSession's explicit terminal request.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	report, err := s.finalizer.Finalize(r.Context(), sessionID)
	if err != nil {
		writeError(w, apierr.FatalErr(err, "generate report for session %q", sessionID))
		return
	}
	writeJSON(w, http.StatusOK, newReportView(*report))
}

// handleMintToken handles POST /sessions/{id}/token: issues a scoped room
// credential for the candidate to join the session's voice room. Returns
// 503 (via apierr.FromBroker) when the broker is [broker.Unconfigured],
// signalling the client to fall back to text-only mode.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.ValidationErr(err, "decode request body"))
		return
	}
	if req.ParticipantIdentity == "" {
		req.ParticipantIdentity = "candidate-" + sessionID
	}

	ctx := r.Context()
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		writeError(w, apierr.FromStore(err, "get session %q", sessionID))
		return
	}

	token, err := s.brk.MintRoomToken(ctx, broker.RoomName(sessionID), req.ParticipantIdentity, roomTokenTTL, broker.Grants{
		CanPublish:   true,
		CanSubscribe: true,
	})
	if err != nil {
		writeError(w, apierr.FromBroker(err, "mint room token for session %q", sessionID))
		return
	}

	writeJSON(w, http.StatusOK, mintTokenResponse{
		Token:     token.Token,
		Room:      token.Room,
		Identity:  token.Identity,
		ExpiresAt: token.ExpiresAt,
	})
}

// writeJSON encodes v as JSON with status, matching the teacher's
// signaling-server response style.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err via [apierr.StatusCode] and writes a uniform
// JSON error body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apierr.StatusCode(err), errorResponse{Error: err.Error()})
}
