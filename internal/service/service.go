package service

import (
	"context"
	"sync"
	"time"

	"github.com/ds124wfegd/electrorescue/internal/database"
	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/gemini"
	"github.com/ds124wfegd/electrorescue/internal/pkg/kafka"
	"github.com/ds124wfegd/electrorescue/internal/pkg/processor"
)

type AnalysisService interface {
	GetSession(sessionID string) (*entity.Session, error)
	SelectImage(ctx context.Context, sessionID, dataURL string) (*entity.Session, error)
	AnalyzeSync(ctx context.Context, sessionID, dataURL string) (*entity.AnalysisResult, error)
	Reject(sessionID string, cause error) (*entity.Session, error)
	Reset(sessionID string) (*entity.Session, error)
	Retry(sessionID string) (*entity.Session, error)
	StartSweeper(ctx context.Context, interval time.Duration)
	Wait()
}

type Options struct {
	AnalysisTimeout time.Duration
	EventTopic      string
}

type analysisService struct {
	repo      database.SessionRepository
	analyzer  gemini.Analyzer
	processor processor.ImageProcessor
	producer  kafka.Producer
	opts      Options

	mu       sync.Mutex // serializes read-modify-write of sessions
	inflight sync.WaitGroup
}

func NewAnalysisService(repo database.SessionRepository, analyzer gemini.Analyzer, processor processor.ImageProcessor, producer kafka.Producer, opts Options) AnalysisService {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 90 * time.Second
	}
	if opts.EventTopic == "" {
		opts.EventTopic = "pcb-analysis"
	}
	return &analysisService{
		repo:      repo,
		analyzer:  analyzer,
		processor: processor,
		producer:  producer,
		opts:      opts,
	}
}
