package httpapi

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/imagestore"
	"github.com/jjayakar/campusgate/internal/campusgate/service"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

type Dependencies struct {
	Logger     *log.Logger
	Addr       string
	Access     *service.AccessService
	Enrollment *service.EnrollmentService
	Reports    *service.ReportService
	Images     imagestore.Store
	DB         *sql.DB // health checks only
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	access     *service.AccessService
	enrollment *service.EnrollmentService
	reports    *service.ReportService
	images     imagestore.Store
	db         *sql.DB
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		access:     d.Access,
		enrollment: d.Enrollment,
		reports:    d.Reports,
		images:     d.Images,
		db:         d.DB,
	}

	mux.HandleFunc("POST /v1/entry", s.handleEntry)
	mux.HandleFunc("POST /v1/exit", s.handleExit)
	mux.HandleFunc("GET /security/verify/{attempt_id}/{decision}", s.handleVerify)

	mux.HandleFunc("POST /v1/people", s.handleEnroll)
	mux.HandleFunc("GET /v1/people", s.handleListPeople)
	mux.HandleFunc("PATCH /v1/people/{student_id}", s.handleRename)
	mux.HandleFunc("DELETE /v1/people/{student_id}", s.handleRemove)

	mux.HandleFunc("GET /v1/reports", s.handleReports)
	mux.HandleFunc("GET /v1/export/{table}", s.handleExport)
	mux.HandleFunc("GET /v1/status", s.handleStatus)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Entry / exit presentation ────────────────────────────────────────────────

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	var req types.PresentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	imageRef := ""
	if req.ImageB64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageB64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_image", "image_b64 is not valid base64")
			return
		}
		ref, err := s.images.Save(data)
		if err != nil {
			s.logger.Printf("save captured image: %v", err)
			// Lose the still, not the decision: the entry is still processed.
		} else {
			imageRef = ref
		}
	}

	res, err := s.access.PresentForEntry(r.Context(), facevec.Encoding(req.Encoding), imageRef)

	// Only an unauthorized outcome hands the still to the dispatcher, which
	// deletes it after the alert is sent; every other outcome cleans it up
	// here so the upload dir holds nothing but pending alert images.
	if imageRef != "" && (err != nil || res.Outcome != types.EntryUnauthorized) {
		if derr := s.images.Delete(imageRef); derr != nil {
			s.logger.Printf("delete unused captured image %q: %v", imageRef, derr)
		}
	}

	if err != nil {
		if errors.Is(err, facevec.ErrInvalidVector) {
			writeError(w, http.StatusBadRequest, "invalid_encoding", err.Error())
			return
		}
		s.logger.Printf("entry error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	switch res.Outcome {
	case types.EntryAuthorized:
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "success",
			Message:    "Authorized entry recorded",
			StudentID:  res.StudentID,
			ServerTime: now,
		})
	case types.EntryUnauthorized:
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "warning",
			Message:    "Unauthorized person detected - Security notified",
			AttemptID:  res.AttemptID,
			ServerTime: now,
		})
	default: // no face
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "error",
			Message:    "No face detected",
			ServerTime: now,
		})
	}
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	var req types.PresentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	res, err := s.access.PresentForExit(r.Context(), facevec.Encoding(req.Encoding))
	if err != nil {
		if errors.Is(err, facevec.ErrInvalidVector) {
			writeError(w, http.StatusBadRequest, "invalid_encoding", err.Error())
			return
		}
		s.logger.Printf("exit error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	switch res.Outcome {
	case types.Exited:
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "success",
			Message:    "Exit recorded",
			StudentID:  res.StudentID,
			ServerTime: now,
		})
	case types.NotPresent:
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "error",
			Message:    "Person not found in system",
			ServerTime: now,
		})
	default:
		writeJSON(w, http.StatusOK, types.PresentResponse{
			Status:     "error",
			Message:    "No face detected",
			ServerTime: now,
		})
	}
}

// ── Operator verification ────────────────────────────────────────────────────

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	attemptID, err := strconv.ParseInt(r.PathValue("attempt_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_attempt_id", "attempt id must be an integer")
		return
	}
	decision, ok := types.ParseDecision(r.PathValue("decision"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_decision", "Invalid decision")
		return
	}

	tempID, err := s.access.DecideAttempt(r.Context(), attemptID, decision)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Invalid or expired verification link")
		return
	case errors.Is(err, store.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "already_resolved", "This entry attempt has already been processed")
		return
	case err != nil:
		s.logger.Printf("verify error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	if decision == types.DecisionAllow {
		writeJSON(w, http.StatusOK, types.VerifyResponse{
			Status:  "success",
			Message: "Entry approved",
			TempID:  tempID,
		})
		return
	}
	writeJSON(w, http.StatusOK, types.VerifyResponse{
		Status:  "success",
		Message: "Entry denied",
	})
}

// ── People management ────────────────────────────────────────────────────────

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req types.EnrollRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	if len(req.Encoding) == 0 {
		writeError(w, http.StatusBadRequest, "no_face_detected", "No face detected in the image")
		return
	}

	err := s.enrollment.Enroll(r.Context(), req.StudentID, req.Name, facevec.Encoding(req.Encoding))
	switch {
	case errors.Is(err, service.ErrInvalidStudentID), errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	case errors.Is(err, facevec.ErrInvalidVector):
		writeError(w, http.StatusBadRequest, "invalid_encoding", err.Error())
		return
	case errors.Is(err, store.ErrDuplicateIdentity):
		writeError(w, http.StatusConflict, "duplicate_student_id", "Student ID already exists")
		return
	case err != nil:
		s.logger.Printf("enroll error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "Person added successfully",
	})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.enrollment.List(r.Context())
	if err != nil {
		s.logger.Printf("list people error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	out := make([]types.PersonSummary, 0, len(people))
	for _, p := range people {
		out = append(out, types.PersonSummary{StudentID: p.StudentID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req types.RenameRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	err := s.enrollment.Rename(r.Context(), r.PathValue("student_id"), req.Name)
	switch {
	case errors.Is(err, service.ErrInvalidStudentID), errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Person not found")
		return
	case err != nil:
		s.logger.Printf("rename error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Person updated successfully",
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	err := s.enrollment.Remove(r.Context(), r.PathValue("student_id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Person not found")
		return
	case err != nil:
		s.logger.Printf("remove error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Person removed successfully",
	})
}

// ── Reporting / health ───────────────────────────────────────────────────────

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.Summary(r.Context())
	if err != nil {
		s.logger.Printf("reports error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	overall := "operational"
	if err := s.db.PingContext(r.Context()); err != nil {
		dbStatus = "connection failed"
		overall = "issues detected"
	}
	writeJSON(w, http.StatusOK, types.StatusResponse{
		Status:    overall,
		Database:  dbStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
