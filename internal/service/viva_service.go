package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/labworks/labviva-backend/internal/config"
	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
	"github.com/labworks/labviva-backend/internal/viva"
)

// ErrNoAttempt is returned when results are requested before any attempt exists.
var ErrNoAttempt = errors.New("no viva attempt found")

// VivaService drives the proctored viva engine and its surrounding reads:
// preflight, results, replay, audit history, and live monitoring.
type VivaService struct {
	engine        *viva.Engine
	questionRepo  *repository.QuestionRepository
	attemptRepo   *repository.AttemptRepository
	violationRepo *repository.ViolationRepository
	experimentSvc *ExperimentService
	rdb           *redis.Client
	logger        zerolog.Logger
}

// NewVivaService wires the engine over the repositories. The service itself
// is the engine's audit sink: violations go to a Redis queue and reach
// PostgreSQL through the background worker, keeping writes off the exam's
// hot path.
func NewVivaService(
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	violationRepo *repository.ViolationRepository,
	experimentSvc *ExperimentService,
	rdb *redis.Client,
) *VivaService {
	s := &VivaService{
		questionRepo:  questionRepo,
		attemptRepo:   attemptRepo,
		violationRepo: violationRepo,
		experimentSvc: experimentSvc,
		rdb:           rdb,
		logger:        log.With().Str("component", "viva_service").Logger(),
	}
	s.engine = viva.NewEngine(questionRepo, attemptRepo, s)
	return s
}

// Engine exposes the underlying engine to the WebSocket handler.
func (s *VivaService) Engine() *viva.Engine {
	return s.engine
}

// RecordViolation implements viva.AuditSink by enqueueing the event for the
// persistence worker. A full or unreachable queue is logged and dropped;
// the attempt's own counters remain authoritative.
func (s *VivaService) RecordViolation(experimentID uuid.UUID, studentID int, category viva.Category, message string) {
	event := model.ViolationEvent{
		ExperimentID: experimentID,
		StudentID:    studentID,
		Category:     string(category),
		Message:      message,
		RecordedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal violation event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		s.logger.Error().Err(err).Msg("enqueue violation event")
	}
}

// PreflightInfo is the student's pre-test view of an experiment's viva.
type PreflightInfo struct {
	Experiment      model.Experiment `json:"experiment"`
	BankSize        int              `json:"bank_size"`
	QuestionCount   int              `json:"question_count"`
	DurationSeconds int              `json:"duration_seconds"`
	Attempted       bool             `json:"attempted"`
}

// Preflight reports what a student is about to face: how many questions
// will be drawn, the time budget, and whether they already attempted.
func (s *VivaService) Preflight(ctx context.Context, studentID int, experimentID uuid.UUID) (*PreflightInfo, error) {
	experiment, err := s.experimentSvc.GetByID(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	bankSize, err := s.questionRepo.CountByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.GetByStudentAndExperiment(ctx, studentID, experimentID)
	if err != nil {
		return nil, err
	}

	count := bankSize
	if count > viva.DefaultSampleSize {
		count = viva.DefaultSampleSize
	}
	return &PreflightInfo{
		Experiment:      *experiment,
		BankSize:        bankSize,
		QuestionCount:   count,
		DurationSeconds: count * viva.SecondsPerQuestion,
		Attempted:       attempt != nil,
	}, nil
}

// OpenExam opens an exam for the student over the given event channel.
func (s *VivaService) OpenExam(ctx context.Context, studentID int, experimentID uuid.UUID, presenter viva.PresentationController, events viva.Events) (*viva.Exam, error) {
	return s.engine.Open(ctx, studentID, experimentID, presenter, events)
}

// AttemptResult bundles a persisted attempt with its graded presentation
// and per-question review.
type AttemptResult struct {
	Attempt model.VivaAttempt `json:"attempt"`
	Result  viva.Result       `json:"result"`
	Review  []viva.ReviewRow  `json:"review"`
}

// Results rebuilds the result screen for a completed attempt. The review
// replays the exact question order the student saw.
func (s *VivaService) Results(ctx context.Context, studentID int, experimentID uuid.UUID) (*AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByStudentAndExperiment(ctx, studentID, experimentID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNoAttempt
	}

	bank, err := s.questionRepo.QuestionsByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	questions := viva.ReorderForReplay(attempt, bank, strconv.Itoa(studentID))

	return &AttemptResult{
		Attempt: *attempt,
		Result:  viva.BuildResult(attempt),
		Review:  viva.BuildReview(questions, attempt.Answers),
	}, nil
}

// AttemptsByExperiment lists all attempts on an owned experiment for the
// faculty results table.
func (s *VivaService) AttemptsByExperiment(ctx context.Context, experimentID uuid.UUID, facultyID int) ([]model.VivaAttempt, error) {
	if _, err := s.experimentSvc.GetOwned(ctx, experimentID, facultyID); err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.ListByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.VivaAttempt{}
	}
	return attempts, nil
}

// MyAttempts lists the student's own attempts across experiments.
func (s *VivaService) MyAttempts(ctx context.Context, studentID int) ([]model.VivaAttempt, error) {
	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.VivaAttempt{}
	}
	return attempts, nil
}

// ViolationHistory lists a student's audit trail on an owned experiment.
func (s *VivaService) ViolationHistory(ctx context.Context, experimentID uuid.UUID, studentID, facultyID int) ([]model.ViolationEvent, error) {
	if _, err := s.experimentSvc.GetOwned(ctx, experimentID, facultyID); err != nil {
		return nil, err
	}
	events, err := s.violationRepo.ListByExperimentAndStudent(ctx, experimentID, studentID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.ViolationEvent{}
	}
	return events, nil
}

// LiveSnapshots returns the state of every exam currently in flight.
func (s *VivaService) LiveSnapshots() []viva.Snapshot {
	return s.engine.LiveSnapshots()
}
