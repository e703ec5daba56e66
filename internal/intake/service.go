// Package intake is the entry point applications use to check clinical
// payloads. It wraps the validator and the vital-sign classifier with
// logging, metrics, tracing, a result cache and batch fan-out.
package intake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/afmhelaluddin77/EMR/internal/emr"
	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/observability/metrics"
	"github.com/afmhelaluddin77/EMR/internal/validation"
	"github.com/afmhelaluddin77/EMR/internal/vitals"
	"github.com/afmhelaluddin77/EMR/pkg/idempotency"
	"github.com/afmhelaluddin77/EMR/pkg/workerpool"
)

// Config holds service configuration
type Config struct {
	Workers    int
	CacheSize  int
	RequireID  bool
	DerivedBMI bool
}

// Service validates resources and classifies vital signs. It is safe for
// concurrent use.
type Service struct {
	config     Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	classifier *vitals.Classifier
	inbox      *idempotency.Inbox[validation.Result]
	opts       []validation.Option
	pool       *workerpool.Pool
}

// New creates a Service. A nil m records into a private registry.
func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	var classifierOpts []vitals.ClassifierOption
	if cfg.DerivedBMI {
		classifierOpts = append(classifierOpts, vitals.WithDerivedBMI())
	}
	var opts []validation.Option
	if cfg.RequireID {
		opts = append(opts, validation.RequireID())
	}

	s := &Service{
		config:     cfg,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("intake"),
		classifier: vitals.NewClassifier(classifierOpts...),
		inbox:      idempotency.NewInbox[validation.Result](cfg.CacheSize, logger),
		opts:       opts,
	}
	// New only fails on a nil worker func.
	s.pool, _ = workerpool.New(workerpool.Config{Workers: cfg.Workers}, s.validateTask, logger)
	return s
}

// ValidateResource decodes payload as a resource of kind and validates it.
// Results are remembered by payload fingerprint. Errors are precondition
// failures from the validation package.
func (s *Service) ValidateResource(ctx context.Context, kind r4.ResourceKind, payload []byte) (validation.Result, error) {
	ctx, span := s.tracer.Start(ctx, "intake.validate",
		trace.WithAttributes(
			attribute.String("fhir.resource_kind", string(kind)),
			attribute.Int("payload.bytes", len(payload)),
		))
	defer span.End()
	start := time.Now()

	key := idempotency.PayloadKey(payload, string(kind), strconv.FormatBool(s.config.RequireID))
	processed, err := s.inbox.Process(key, func() (validation.Result, error) {
		return validation.ValidateJSON(payload, kind, s.opts...)
	})
	s.metrics.ProcessingDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		s.metrics.Validations.WithLabelValues(string(kind), metrics.ResultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "precondition failed")
		s.logger.Warn("resource not validated",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return validation.Result{}, err
	}

	if processed.IsNew {
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	} else {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
	}

	result := processed.Result
	result.Violations = slices.Clone(result.Violations)

	outcome := metrics.ResultValid
	if !result.Valid() {
		outcome = metrics.ResultInvalid
	}
	s.metrics.Validations.WithLabelValues(string(kind), outcome).Inc()
	for _, v := range result.Violations {
		s.metrics.Violations.WithLabelValues(string(kind), string(v.Kind)).Inc()
	}

	span.SetAttributes(
		attribute.Bool("validation.cached", !processed.IsNew),
		attribute.Int("validation.violations", len(result.Violations)),
	)
	s.logger.Debug("resource validated",
		zap.String("kind", string(kind)),
		zap.Bool("valid", result.Valid()),
		zap.Int("violations", len(result.Violations)),
		zap.Bool("cached", !processed.IsNew))

	return result, nil
}

// Item is one payload of a batch.
type Item struct {
	ID      string
	Kind    r4.ResourceKind
	Payload []byte
}

// ItemResult is the outcome for one batch item. Err holds a precondition
// failure for that item only.
type ItemResult struct {
	ID     string
	Result validation.Result
	Err    error
}

// ValidateBatch validates items concurrently and returns results in input
// order. Items without an ID get a generated one. The returned error is
// non-nil only when ctx ends before the batch completes.
func (s *Service) ValidateBatch(ctx context.Context, items []Item) ([]ItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "intake.validate_batch",
		trace.WithAttributes(attribute.Int("batch.size", len(items))))
	defer span.End()

	tasks := make([]workerpool.Task, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		tasks[i] = workerpool.Task{ID: item.ID, Payload: item}
	}

	results, err := s.pool.Run(ctx, tasks)

	out := make([]ItemResult, len(results))
	for i, r := range results {
		out[i] = ItemResult{ID: r.TaskID, Err: r.Error}
		if res, ok := r.Data.(validation.Result); ok {
			out[i].Result = res
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch interrupted")
		return out, fmt.Errorf("validate batch: %w", err)
	}
	return out, nil
}

func (s *Service) validateTask(ctx context.Context, task workerpool.Task) (any, error) {
	item, ok := task.Payload.(Item)
	if !ok {
		return nil, errors.New("unexpected batch payload")
	}
	s.metrics.BatchInFlight.Inc()
	defer s.metrics.BatchInFlight.Dec()
	return s.ValidateResource(ctx, item.Kind, item.Payload)
}

// ClassifyVitals classifies current against previous, which may be nil.
func (s *Service) ClassifyVitals(ctx context.Context, current vitals.Reading, previous *vitals.Reading) vitals.Result {
	_, span := s.tracer.Start(ctx, "intake.classify_vitals")
	defer span.End()
	start := time.Now()

	result := s.classifier.Classify(current, previous)
	s.metrics.ProcessingDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())

	for ch, c := range result {
		s.metrics.Classifications.WithLabelValues(string(ch), string(c.Severity)).Inc()
	}
	worst := result.Worst()
	span.SetAttributes(
		attribute.Int("vitals.channels", len(result)),
		attribute.String("vitals.worst", string(worst)),
	)
	if worst == vitals.Critical {
		s.logger.Info("critical vital signs",
			zap.String("reading_id", current.ID),
			zap.String("patient_id", current.PatientID))
	}
	return result
}

// ValidateExtension checks an EMR extension record.
func (s *Service) ValidateExtension(ctx context.Context, ext *emr.AppointmentExtension) validation.Result {
	_, span := s.tracer.Start(ctx, "intake.validate_extension",
		trace.WithAttributes(attribute.String("emr.appointment_id", ext.AppointmentID)))
	defer span.End()

	result := ext.Validate()
	outcome := metrics.ResultValid
	if !result.Valid() {
		outcome = metrics.ResultInvalid
	}
	s.metrics.ExtensionChecks.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.Int("validation.violations", len(result.Violations)))
	return result
}
