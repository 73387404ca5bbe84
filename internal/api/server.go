package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/renen/renen/internal/ai"
	"github.com/renen/renen/internal/auth"
	"github.com/renen/renen/internal/db"
	"github.com/renen/renen/internal/docs"
	"github.com/renen/renen/internal/eval"
	"github.com/renen/renen/internal/models"
)

type Server struct {
	Store        *db.Store
	AuthService  *auth.Service
	Echo         *echo.Echo
	DB           *pgxpool.Pool
	Orchestrator *eval.Orchestrator

	// Embedder is nil when running against the mock extractor.
	Embedder ai.Embedder

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	rubric, err := eval.LoadRubric(os.Getenv("RENEN_RUBRIC_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to load rubric: %w", err)
	}

	// Live extraction only when an API key is configured; otherwise the
	// deterministic mock keeps the pipeline usable in dev.
	var extractor ai.Extractor
	var embedder ai.Embedder
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		client := ai.NewOpenAIClient(
			os.Getenv("OPENAI_BASE_URL"), apiKey,
			os.Getenv("OPENAI_MODEL"), os.Getenv("OPENAI_EMBED_MODEL"),
		)
		extractor = client
		embedder = client
	} else {
		log.Print("OPENAI_API_KEY is not set; using mock extractor")
		extractor = &ai.MockExtractor{}
	}

	s := &Server{
		DB:           pool,
		Store:        db.NewStore(pool),
		AuthService:  auth.NewService(pool),
		Echo:         e,
		Orchestrator: eval.NewOrchestrator(extractor, rubric.Model, rubric.Segments),
		Embedder:     embedder,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.POST("/submissions", s.handleCreateSubmission)
	api.GET("/submissions", s.handleListSubmissions)
	api.GET("/submissions/:id", s.handleGetSubmission)
	api.GET("/submissions/:id/snapshots", s.handleListSnapshots)
	api.GET("/submissions/:id/similar", s.handleSimilarSubmissions)

	api.GET("/funnels", s.handleListFunnels)
	api.GET("/funnels/:id", s.handleGetFunnel)
	api.GET("/stats", s.handleGetStats)

	// Admin Routes
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/admin/funnels", s.handleCreateFunnel)
	admin.POST("/admin/submissions/:id/reevaluate", s.handleReevaluate)
	admin.POST("/admin/evaluate-batch", s.handleEvaluateBatch)
	admin.GET("/admin/job/:id", s.handleJobStatus)
	admin.POST("/admin/seed", s.handleSeed)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes (Starred Submissions)
	starred := api.Group("/starred")
	starred.Use(auth.Middleware)
	starred.POST("/:id", s.handleStarSubmission)
	starred.DELETE("/:id", s.handleUnstarSubmission)
	starred.GET("", s.handleGetStarredSubmissions)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Submissions

type createSubmissionRequest struct {
	FunnelID          string         `json:"funnel_id"`
	SubmitterEmail    string         `json:"submitter_email"`
	SubmitterName     string         `json:"submitter_name"`
	IdeaText          string         `json:"idea_text"`
	AssessmentAnswers map[string]any `json:"assessment_answers"`
	Documents         []string       `json:"documents"`
	PitchDeckBase64   string         `json:"pitch_deck_base64"`
}

func (s *Server) handleCreateSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	var req createSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.IdeaText) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "idea_text is required"})
	}

	funnelID, err := uuid.Parse(req.FunnelID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid funnel ID"})
	}
	if _, err := s.Store.GetFunnel(ctx, funnelID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Funnel not found"})
	}

	var documents []string
	for _, doc := range req.Documents {
		if cleaned := docs.CleanDocument(doc); cleaned != "" {
			documents = append(documents, cleaned)
		}
	}
	if req.PitchDeckBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(req.PitchDeckBase64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid pitch deck encoding"})
		}
		text, err := docs.ExtractPDFText(raw)
		if err != nil {
			c.Logger().Errorf("Failed to parse pitch deck: %v", err)
		} else if text != "" {
			documents = append(documents, docs.CleanDocument(text))
		}
	}

	submission := models.Submission{
		FunnelID:       funnelID,
		SubmitterEmail: strings.TrimSpace(req.SubmitterEmail),
		SubmitterName:  strings.TrimSpace(req.SubmitterName),
		IdeaText:       req.IdeaText,
		Status:         models.StatusSubmitted,
	}
	if err := s.Store.CreateSubmission(ctx, &submission); err != nil {
		c.Logger().Errorf("Failed to create submission: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	result := s.Orchestrator.Evaluate(ctx, eval.EvaluationRequest{
		Submission:           submission,
		AssessmentAnswers:    req.AssessmentAnswers,
		UploadedFilesContent: documents,
	})
	if result.Success {
		if err := s.persistEvaluation(ctx, &submission, result.Snapshot); err != nil {
			c.Logger().Errorf("Failed to persist evaluation: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		}
	} else {
		// Submission stays in 'submitted' for a later batch retry.
		c.Logger().Errorf("Evaluation failed for submission %s: %s", submission.ID, result.Error)
	}

	s.embedSubmission(ctx, submission)

	return c.JSON(http.StatusCreated, map[string]any{
		"submission": submission,
		"evaluation": result,
	})
}

// persistEvaluation stores the snapshot and advances the submission to
// evaluated.
func (s *Server) persistEvaluation(ctx context.Context, submission *models.Submission, snapshot *models.EvaluationSnapshot) error {
	if err := s.Store.InsertSnapshot(ctx, snapshot); err != nil {
		return err
	}
	if err := s.Store.UpdateSubmissionStatus(ctx, submission.ID, models.StatusEvaluated); err != nil {
		return err
	}
	submission.Status = models.StatusEvaluated
	return nil
}

// embedSubmission stores an idea embedding for similarity search. Best
// effort: failures are logged, never surfaced.
func (s *Server) embedSubmission(ctx context.Context, submission models.Submission) {
	if s.Embedder == nil {
		return
	}

	embedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	vec, err := s.Embedder.GenerateEmbedding(embedCtx, docs.TruncateText(submission.IdeaText, 8000))
	if err != nil {
		log.Printf("Failed to embed submission %s: %v", submission.ID, err)
		return
	}
	if err := s.Store.UpdateSubmissionEmbedding(embedCtx, submission.ID, vec); err != nil {
		log.Printf("Failed to store embedding for submission %s: %v", submission.ID, err)
	}
}

func (s *Server) handleListSubmissions(c echo.Context) error {
	params := db.ListParams{
		Status:  c.QueryParam("status"),
		Outcome: c.QueryParam("outcome"),
		Tier:    c.QueryParam("tier"),
		Query:   c.QueryParam("q"),
	}
	if raw := c.QueryParam("funnel_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid funnel ID"})
		}
		params.FunnelID = id
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	result, err := s.Store.ListSubmissions(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list submissions: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetSubmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	submission, err := s.Store.GetSubmission(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, submission)
}

func (s *Server) handleListSnapshots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	snapshots, err := s.Store.ListSnapshots(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorf("Failed to list snapshots: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, snapshots)
}

func (s *Server) handleSimilarSubmissions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	limit := 5
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 20 {
		limit = l
	}

	similar, err := s.Store.SimilarSubmissions(c.Request().Context(), id, limit)
	if err != nil {
		c.Logger().Errorf("Failed to find similar submissions: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if similar == nil {
		similar = []models.Submission{}
	}
	return c.JSON(http.StatusOK, similar)
}

// Funnels

type createFunnelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateFunnel(c echo.Context) error {
	var req createFunnelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	funnel := models.Funnel{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := s.Store.CreateFunnel(c.Request().Context(), &funnel); err != nil {
		c.Logger().Errorf("Failed to create funnel: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, funnel)
}

func (s *Server) handleGetFunnel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid funnel ID"})
	}

	funnel, err := s.Store.GetFunnel(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, funnel)
}

func (s *Server) handleListFunnels(c echo.Context) error {
	funnels, err := s.Store.ListFunnels(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, funnels)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

// Admin: re-evaluation and batch processing

func (s *Server) handleReevaluate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	submission, err := s.Store.GetSubmission(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if submission.Evaluation == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Submission has no prior evaluation to rerun"})
	}

	result := s.Orchestrator.Reevaluate(ctx, submission.Submission, &submission.Evaluation.ExtractedFields)
	if !result.Success {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}

	if err := s.Store.InsertSnapshot(ctx, result.Snapshot); err != nil {
		c.Logger().Errorf("Failed to persist re-evaluation: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleEvaluateBatch(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "An evaluation job is already running",
			"job_id": job.ID,
		})
	}

	var funnelID uuid.UUID
	if raw := strings.TrimSpace(c.QueryParam("funnel_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			s.jobMu.Unlock()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid funnel ID"})
		}
		funnelID = parsed
	}

	batchSize := 50
	if raw := strings.TrimSpace(c.QueryParam("batch_size")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			batchSize = parsed
		}
	}

	// context.WithoutCancel detaches from HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine and return 202 immediately.
	go func() {
		defer jobCancel()

		summary, err := s.runEvaluationBatch(jobCtx, funnelID, batchSize)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			log.Printf("[evaluate-job %s] failed: %v", jobID, err)
			return
		}
		job.Status = "completed"
		job.Result = summary
		log.Printf("[evaluate-job %s] completed: evaluated=%d failed=%d", jobID, summary["evaluated"], summary["failed"])
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Evaluation job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

// runEvaluationBatch evaluates pending submissions one at a time and
// persists each successful snapshot immediately. Items are independent:
// one failure never rolls back its neighbors.
func (s *Server) runEvaluationBatch(ctx context.Context, funnelID uuid.UUID, batchSize int) (map[string]int, error) {
	pending, err := s.Store.ListPendingSubmissions(ctx, funnelID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	reqs := make([]eval.EvaluationRequest, 0, len(pending))
	for _, submission := range pending {
		reqs = append(reqs, eval.EvaluationRequest{Submission: submission})
	}

	results := s.Orchestrator.EvaluateBatch(ctx, reqs)

	summary := map[string]int{"pending": len(pending), "evaluated": 0, "failed": 0}
	for i, result := range results {
		if !result.Success {
			summary["failed"]++
			log.Printf("Batch evaluation failed for submission %s: %s", pending[i].ID, result.Error)
			continue
		}
		if err := s.persistEvaluation(ctx, &pending[i], result.Snapshot); err != nil {
			summary["failed"]++
			log.Printf("Failed to persist batch evaluation for submission %s: %v", pending[i].ID, err)
			continue
		}
		summary["evaluated"]++
	}

	return summary, nil
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSeed(c echo.Context) error {
	ctx := c.Request().Context()

	funnel := models.Funnel{
		Name:        "Demo Startup Funnel",
		Description: "Seeded funnel for local development",
		IsActive:    true,
	}
	if err := s.Store.CreateFunnel(ctx, &funnel); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	seeds := []struct {
		Email string
		Name  string
		Idea  string
	}{
		{
			Email: "maria@solarloop.example",
			Name:  "Maria Lindqvist",
			Idea:  "SolarLoop leases refurbished solar panels to small farms on a pay-per-harvest model. We handle installation and maintenance; farmers pay a share of energy savings. 40 pilot farms signed, 12 paying.",
		},
		{
			Email: "dev@quickbrief.example",
			Name:  "Dev Patel",
			Idea:  "QuickBrief turns court filings into plain-language summaries for journalists. Subscription per newsroom seat. Three regional papers on a paid pilot.",
		},
		{
			Email: "anna@restock.example",
			Name:  "Anna Kovacs",
			Idea:  "ReStock predicts inventory for independent grocers using POS data. SaaS at 99 euro per store per month. Currently pre-revenue, waitlist of 60 stores.",
		},
	}

	count := 0
	for _, seed := range seeds {
		submission := models.Submission{
			FunnelID:       funnel.ID,
			SubmitterEmail: seed.Email,
			SubmitterName:  seed.Name,
			IdeaText:       seed.Idea,
			Status:         models.StatusSubmitted,
		}
		if err := s.Store.CreateSubmission(ctx, &submission); err != nil {
			c.Logger().Errorf("Failed to seed submission: %v", err)
			continue
		}
		count++
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Seed complete",
		"funnel_id": funnel.ID,
		"count":     count,
	})
}

// Auth

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Protected Handlers

func (s *Server) handleStarSubmission(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	if err := s.Store.StarSubmission(ctx, userID, submissionID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to star submission"})
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnstarSubmission(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	if err := s.Store.UnstarSubmission(ctx, userID, submissionID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unstar submission"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "unstarred"})
}

func (s *Server) handleGetStarredSubmissions(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	subs, err := s.Store.GetStarredSubmissions(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch starred submissions"})
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	return c.JSON(http.StatusOK, subs)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
