package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/dataurl"
	"github.com/sirupsen/logrus"
)

func (s *analysisService) GetSession(sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadOrCreate(sessionID)
}

// SelectImage starts an analysis for the session. Malformed input moves the
// session straight to ERROR and never reaches the analyzer. A newer image
// supersedes an analysis still in flight: its result is discarded on arrival.
func (s *analysisService) SelectImage(ctx context.Context, sessionID, dataURL string) (*entity.Session, error) {
	mimeType, b64, raw, validErr := s.decode(dataURL)
	var preview string
	if validErr == nil {
		preview = s.preview(raw, dataURL)
	}

	s.mu.Lock()
	session, err := s.loadOrCreate(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	session.Image = dataURL
	session.Preview = ""
	session.MimeType = mimeType
	session.Result = nil
	session.Error = ""
	session.Generation++
	if err := session.Transition(entity.StateAnalyzing); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if validErr != nil {
		session, err = s.fail(session, validErr)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return session, validErr
	}

	session.Preview = preview
	if err := s.repo.Save(session); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	generation := session.Generation
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AnalysisTimeout)
		defer cancel()

		start := time.Now()
		result, err := s.analyzer.AnalyzePCBImage(actx, b64, mimeType)
		s.complete(sessionID, generation, mimeType, result, err, time.Since(start))
	}()

	logrus.WithFields(logrus.Fields{
		"session":    sessionID,
		"generation": generation,
		"mime_type":  mimeType,
		"bytes":      len(raw),
	}).Info("Analysis started")

	return session, nil
}

func (s *analysisService) complete(sessionID string, generation uint64, mimeType string, result *entity.AnalysisResult, analyzeErr error, took time.Duration) {
	event := entity.AnalysisEvent{
		SessionID:  sessionID,
		MimeType:   mimeType,
		DurationMs: took.Milliseconds(),
		Timestamp:  time.Now(),
	}

	s.mu.Lock()
	session, err := s.repo.FindByID(sessionID)
	if err != nil || session.Generation != generation || session.State != entity.StateAnalyzing {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{"session": sessionID, "generation": generation}).Info("Discarding stale analysis result")
		return
	}

	next := entity.StateSuccess
	if analyzeErr != nil {
		next = entity.StateError
	}
	if err := session.Transition(next); err != nil {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{"session": sessionID, "from": session.State, "to": next}).Errorf("Failed to apply analysis result: %v", err)
		return
	}
	if analyzeErr != nil {
		session.Error = errorMessage(analyzeErr)
		event.Error = session.Error
	} else {
		session.Result = result
		event.ComponentTotal = result.TotalComponents()
	}
	event.State = session.State

	if err := s.repo.Save(session); err != nil {
		logrus.Errorf("Failed to save session %s: %v", sessionID, err)
	}
	s.mu.Unlock()

	entry := logrus.WithFields(logrus.Fields{"session": sessionID, "state": event.State, "duration": took})
	if analyzeErr != nil {
		entry.Errorf("Analysis failed: %v", analyzeErr)
	} else {
		entry.Info("Analysis completed")
	}
	s.publish(event)
}

// Reject records an upload that could not be turned into an image (too
// large, unreadable) as a failed analysis without calling the analyzer.
func (s *analysisService) Reject(sessionID string, cause error) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	session.Image = ""
	session.Preview = ""
	session.MimeType = ""
	session.Result = nil
	session.Generation++
	if err := session.Transition(entity.StateAnalyzing); err != nil {
		return nil, err
	}
	return s.fail(session, cause)
}

// caller holds s.mu; session must be ANALYZING
func (s *analysisService) fail(session *entity.Session, cause error) (*entity.Session, error) {
	session.Error = errorMessage(cause)
	if err := session.Transition(entity.StateError); err != nil {
		return nil, err
	}
	if err := s.repo.Save(session); err != nil {
		return nil, err
	}
	logrus.WithField("session", session.ID).Warnf("Rejected image before analysis: %v", cause)
	return session, nil
}

// AnalyzeSync runs a single request/response analysis without touching
// session state.
func (s *analysisService) AnalyzeSync(ctx context.Context, sessionID, dataURL string) (*entity.AnalysisResult, error) {
	mimeType, b64, _, err := s.decode(dataURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.AnalysisTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.analyzer.AnalyzePCBImage(ctx, b64, mimeType)

	event := entity.AnalysisEvent{
		SessionID:  sessionID,
		MimeType:   mimeType,
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}
	if err != nil {
		event.State = entity.StateError
		event.Error = errorMessage(err)
	} else {
		event.State = entity.StateSuccess
		event.ComponentTotal = result.TotalComponents()
	}
	s.publish(event)

	return result, err
}

func (s *analysisService) Reset(sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Transition(entity.StateIdle); err != nil {
		return nil, err
	}
	session.Image = ""
	session.Preview = ""
	session.MimeType = ""
	session.Result = nil
	session.Error = ""

	return session, s.repo.Save(session)
}

// Retry returns a failed session to IDLE so a new image can be chosen.
func (s *analysisService) Retry(sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != entity.StateError {
		return nil, entity.ErrInvalidTransition
	}
	if err := session.Transition(entity.StateIdle); err != nil {
		return nil, err
	}

	return session, s.repo.Save(session)
}

func (s *analysisService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.repo.Sweep(now); n > 0 {
					logrus.Debugf("Evicted %d idle sessions", n)
				}
			}
		}
	}()
}

// Wait blocks until every started analysis has completed.
func (s *analysisService) Wait() {
	s.inflight.Wait()
}

// caller holds s.mu
func (s *analysisService) loadOrCreate(sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, entity.ErrSessionNotFound
	}
	session, err := s.repo.FindByID(sessionID)
	if errors.Is(err, entity.ErrSessionNotFound) {
		session = entity.NewSession(sessionID)
		if err := s.repo.Save(session); err != nil {
			return nil, err
		}
		return session, nil
	}
	return session, err
}

// decode returns the payload re-encoded so the analyzer always receives
// canonical base64.
func (s *analysisService) decode(dataURL string) (mimeType, b64 string, raw []byte, err error) {
	mimeType, raw, err = dataurl.Decode(dataURL)
	if err != nil {
		return "", "", nil, err
	}
	if err := s.processor.Validate(mimeType, raw); err != nil {
		return mimeType, "", nil, err
	}
	return mimeType, base64.StdEncoding.EncodeToString(raw), raw, nil
}

func (s *analysisService) preview(raw []byte, fallback string) string {
	preview, err := s.processor.Preview(raw)
	if err != nil {
		logrus.Warnf("Preview failed, showing original upload: %v", err)
		return fallback
	}
	return preview
}

func (s *analysisService) publish(event entity.AnalysisEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.SendMessage(s.opts.EventTopic, event); err != nil {
		logrus.Warnf("Failed to publish analysis event: %v", err)
	}
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return entity.DefaultAnalysisError
	}
	return err.Error()
}
