package service

import (
	"context"
	"fmt"
	"time"

	"specter-vision/imaging"
	"specter-vision/llm"
	"specter-vision/metrics"
	"specter-vision/models"
	"specter-vision/parser"
	"specter-vision/prompt"

	"github.com/apex/log"
)

const (
	ModeSync   = "sync"
	ModeStream = "stream"

	MessageScanning = "Scanning image..."
	MessageStarting = "Starting heuristic analysis engine..."
	MessageParsing  = "Parsing hidden attributes..."
)

// Service runs image analyses against the shared model client
type Service struct {
	provider *llm.Provider
	prompts  *prompt.Builder
	resizer  *imaging.Resizer
}

// NewService creates a new analysis service. resizer may be nil, in which
// case images are sent unchanged.
func NewService(provider *llm.Provider, prompts *prompt.Builder, resizer *imaging.Resizer) *Service {
	return &Service{
		provider: provider,
		prompts:  prompts,
		resizer:  resizer,
	}
}

// Analyze runs one analysis and returns the complete result. Upstream
// failures are returned as *UpstreamCallError; unparseable replies are not
// errors.
func (s *Service) Analyze(ctx context.Context, imageData []byte, mimeType string) (*models.AnalysisResult, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	p := s.prompts.Build()
	reply, err := s.generate(ctx, p, imageData, mimeType)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(ModeSync, resultLabel(err)).Inc()
		logger.WithError(err).Error("analysis.sync.failed")
		return nil, err
	}

	result := parser.Parse(reply)
	result.SetProcessingTime(elapsedMs(start))

	metrics.AnalysesTotal.WithLabelValues(ModeSync, "success").Inc()
	logger.WithFields(log.Fields{
		"attributes":         len(result.Attributes),
		"processing_time_ms": *result.ProcessingTimeMs,
	}).Info("analysis.sync.complete")
	return result, nil
}

// AnalyzeStream runs one analysis and reports it as a sequence of events:
// three progress events around the model call, one attribute event per
// attribute, then a single complete event. Any failure ends the sequence
// with a single error event instead. The channel is closed after the last
// event. Canceling ctx stops production at the next send.
func (s *Service) AnalyzeStream(ctx context.Context, imageData []byte, mimeType string) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)
		logger := log.FromContext(ctx)
		start := time.Now()

		emit := func(ev models.StreamEvent) bool {
			select {
			case events <- ev:
				metrics.StreamEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			metrics.AnalysesTotal.WithLabelValues(ModeStream, resultLabel(err)).Inc()
			logger.WithError(err).Error("analysis.stream.failed")
			emit(models.ErrorEvent(ErrorKind(err), err.Error()))
		}
		defer func() {
			if r := recover(); r != nil {
				fail(fmt.Errorf("analysis aborted: %v", r))
			}
		}()

		if !emit(models.ProgressEvent(MessageScanning)) {
			return
		}
		p := s.prompts.Build()
		if !emit(models.ProgressEvent(MessageStarting)) {
			return
		}

		reply, err := s.generate(ctx, p, imageData, mimeType)
		if err != nil {
			fail(err)
			return
		}

		if !emit(models.ProgressEvent(MessageParsing)) {
			return
		}
		result := parser.Parse(reply)

		total := len(result.Attributes)
		for i, attr := range result.Attributes {
			if !emit(models.AttributeEvent(i, total, attr)) {
				return
			}
		}

		ms := elapsedMs(start)
		if emit(models.CompleteEvent(result.Summary, total, ms)) {
			metrics.AnalysesTotal.WithLabelValues(ModeStream, "success").Inc()
			logger.WithFields(log.Fields{
				"attributes":         total,
				"processing_time_ms": ms,
			}).Info("analysis.stream.complete")
		}
	}()

	return events
}

// generate performs the single model call for a request.
func (s *Service) generate(ctx context.Context, p string, imageData []byte, mimeType string) (string, error) {
	client, err := s.provider.Client()
	if err != nil {
		return "", err
	}

	if s.resizer != nil {
		imageData, mimeType = s.resizer.Prepare(imageData, mimeType)
	}

	start := time.Now()
	reply, err := client.Generate(ctx, p, imageData, mimeType)
	if err != nil {
		metrics.UpstreamDurationSeconds.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &UpstreamCallError{Source: client.SourceName(), Err: err}
	}
	metrics.UpstreamDurationSeconds.WithLabelValues("success").Observe(time.Since(start).Seconds())

	log.FromContext(ctx).WithFields(log.Fields{
		"source":      client.SourceName(),
		"reply_chars": len(reply),
	}).Debug("analysis.upstream.reply")
	return reply, nil
}

func resultLabel(err error) string {
	switch ErrorKind(err) {
	case KindUpstreamCall:
		return "upstream_error"
	case KindCanceled:
		return "canceled"
	default:
		return "error"
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
