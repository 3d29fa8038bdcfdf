// Package service runs analysis jobs in the background and tracks their state
package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"orderlens/internal/core/datefilter"
	"orderlens/internal/core/normalize"
	"orderlens/internal/core/order"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/metrics"
	exdom "orderlens/internal/services/extract/domain"
	"orderlens/internal/services/jobs/domain"
)

// Defaults for Config
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
	DefaultTimeout   = 30 * time.Minute
)

// Config for the jobs service
type Config struct {
	ListLimit int           // default page size for List
	Timeout   time.Duration // upper bound for one analysis run
}

// Service implements domain.ServicePort
type Service struct {
	Repo     domain.Repo
	Analyzer exdom.AnalyzerPort
	Met      *metrics.Registry // optional
	Cfg      Config

	now func() time.Time
	wg  sync.WaitGroup
}

// New constructs the service
func New(r domain.Repo, a exdom.AnalyzerPort, met *metrics.Registry, cfg Config) *Service {
	if r == nil || a == nil {
		panic("jobs service: nil repo or analyzer")
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = DefaultListLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{Repo: r, Analyzer: a, Met: met, Cfg: cfg, now: time.Now}
}

var _ domain.ServicePort = (*Service)(nil)

// Submit stores the job as processing and starts the analysis. The run is detached
// from ctx cancellation but keeps its values so logs carry the request id
func (s *Service) Submit(ctx context.Context, in domain.Submission) (string, error) {
	if normalize.Blank(in.Conversation) {
		return "", perr.WithField(perr.InvalidArgf("conversation is empty"), "conversation")
	}
	// bad bounds fail the request rather than the job
	if _, err := datefilter.ParseWindow(in.StartDate, in.EndDate); err != nil {
		return "", err
	}

	j := domain.Job{
		ID:                 uuid.New().String(),
		Status:             domain.StatusProcessing,
		StartedAt:          s.now().UTC(),
		ShopName:           in.ShopName,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		FileName:           in.FileName,
		ConversationLength: utf8.RuneCountInString(in.Conversation),
	}
	if err := s.Repo.Create(ctx, j); err != nil {
		return "", err
	}
	s.count(string(domain.StatusProcessing))

	runCtx := logger.WithJob(context.WithoutCancel(ctx), j.ID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx, j.ID, exdom.Request{
			Text:      in.Conversation,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			ShopName:  in.ShopName,
			JobID:     j.ID,
		})
	}()
	return j.ID, nil
}

func (s *Service) run(ctx context.Context, id string, req exdom.Request) {
	log := logger.C(ctx)

	if err := s.Repo.SetStatus(ctx, id, domain.StatusAnalyzing); err != nil {
		log.Error().Err(err).Msg("job status update failed")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
	defer cancel()

	res, err := s.analyze(ctx, req)
	done := s.now().UTC()
	if err != nil {
		msg := failMessage(err)
		log.Warn().Err(err).Stringer("code", perr.CodeOf(err)).Msg("job failed")
		if ferr := s.Repo.Fail(context.WithoutCancel(ctx), id, msg, done); ferr != nil {
			log.Error().Err(ferr).Msg("job fail update failed")
		}
		s.count(string(domain.StatusFailed))
		return
	}

	if err := s.Repo.Complete(context.WithoutCancel(ctx), id, res, done); err != nil {
		log.Error().Err(err).Msg("job complete update failed")
		return
	}
	log.Info().Int("orders", len(res.TimeBasedOrders)).Msg("job completed")
	s.count(string(domain.StatusCompleted))
}

// analyze turns a pipeline panic into a coded error
func (s *Service) analyze(ctx context.Context, req exdom.Request) (res order.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("analysis panicked: %v", r)
		}
	}()
	return s.Analyzer.Analyze(ctx, req)
}

func failMessage(err error) string {
	if perr.IsCode(err, perr.ErrorCodeNoData) {
		return datefilter.NoDataMessage
	}
	if e, ok := perr.As(err); ok && e.Message() != "" {
		return e.Message()
	}
	return fmt.Sprintf("analysis failed: %v", err)
}

// Get returns one job; malformed ids read as unknown
func (s *Service) Get(ctx context.Context, id string) (domain.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Job{}, perr.NotFoundf("job %s not found", id)
	}
	return s.Repo.Get(ctx, id)
}

// List returns recent jobs newest first
func (s *Service) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	switch {
	case limit <= 0:
		limit = s.Cfg.ListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.Repo.List(ctx, limit)
}

// Wait blocks until in-flight runs finish or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) count(status string) {
	if s.Met != nil {
		s.Met.Jobs.WithLabelValues(status).Inc()
	}
}
