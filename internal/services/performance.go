package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/qa"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

const (
	defaultConcurrency      = 10
	maxConcurrency          = 10000
	defaultDurationSeconds  = 60
	maxDurationSeconds      = 3600
	defaultTargetResponseMs = 500
)

type PerformanceTestInput struct {
	Name             string                    `json:"name"`
	TargetURL        string                    `json:"targetUrl"`
	TestType         string                    `json:"testType"`
	Concurrency      *int                      `json:"concurrency"`
	DurationSeconds  *int                      `json:"durationSeconds"`
	TargetResponseMs *float64                  `json:"targetResponseMs"`
	Metrics          *types.PerformanceMetrics `json:"metrics"`
	ProjectID        *uuid.UUID                `json:"projectId"`
}

type PerformanceListQuery struct {
	Status    string
	ProjectID *uuid.UUID
	Page      repoutil.Page
}

type PerformanceTestService interface {
	List(ctx context.Context, q PerformanceListQuery) ([]*types.PerformanceTest, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PerformanceTest, error)
	Create(ctx context.Context, createdBy uuid.UUID, in PerformanceTestInput) (*types.PerformanceTest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type performanceTestService struct {
	log      *logger.Logger
	perfRepo repos.PerformanceTestRepo
	pub      realtime.Publisher
	seed     func(in PerformanceTestInput) uint64
}

func NewPerformanceTestService(log *logger.Logger, perfRepo repos.PerformanceTestRepo, pub realtime.Publisher) PerformanceTestService {
	return &performanceTestService{
		log:      log.With("service", "PerformanceTestService"),
		perfRepo: perfRepo,
		pub:      pub,
		seed:     timeSeed,
	}
}

func (ps *performanceTestService) List(ctx context.Context, q PerformanceListQuery) ([]*types.PerformanceTest, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, qa.PerfStatuses)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := ps.perfRepo.List(ctx, nil, repos.PerformanceFilter{Status: q.Status, ProjectID: q.ProjectID, Page: page})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ps *performanceTestService) Get(ctx context.Context, id uuid.UUID) (*types.PerformanceTest, error) {
	pt, err := ps.perfRepo.GetByID(ctx, nil, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("performance test")
	}
	return pt, err
}

func (ps *performanceTestService) Create(ctx context.Context, createdBy uuid.UUID, in PerformanceTestInput) (*types.PerformanceTest, error) {
	in.Name = trim(in.Name)
	in.TargetURL = trim(in.TargetURL)
	in.TestType = trim(in.TestType)
	if in.TestType == "" {
		in.TestType = qa.PerfTypeLoad
	}

	concurrency := intOr(in.Concurrency, defaultConcurrency)
	duration := intOr(in.DurationSeconds, defaultDurationSeconds)
	target := float64(defaultTargetResponseMs)
	if in.TargetResponseMs != nil {
		target = *in.TargetResponseMs
	}

	fe := fieldErrors{}
	fe.required("name", in.Name)
	fe.required("targetUrl", in.TargetURL)
	if in.TargetURL != "" && !validHTTPURL(in.TargetURL) {
		fe.add("targetUrl", "targetUrl must be a valid http or https URL")
	}
	fe.oneOf("testType", in.TestType, qa.PerfTypes)
	if concurrency < 1 || concurrency > maxConcurrency {
		fe.add("concurrency", "concurrency must be between 1 and 10000")
	}
	if duration < 1 || duration > maxDurationSeconds {
		fe.add("durationSeconds", "durationSeconds must be between 1 and 3600")
	}
	if target <= 0 {
		fe.add("targetResponseMs", "targetResponseMs must be positive")
	}
	if in.Metrics != nil && (in.Metrics.ErrorRate < 0 || in.Metrics.ErrorRate > 100 || in.Metrics.AvgResponseMs < 0) {
		fe.add("metrics", "metrics are out of range")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	pt := &types.PerformanceTest{
		Name:             in.Name,
		TargetURL:        in.TargetURL,
		TestType:         in.TestType,
		Concurrency:      concurrency,
		DurationSeconds:  duration,
		TargetResponseMs: target,
		ProjectID:        optionalID(nil, in.ProjectID),
		CreatedBy:        createdBy,
	}
	var metrics types.PerformanceMetrics
	if in.Metrics != nil {
		metrics = *in.Metrics
	} else {
		metrics = SyntheticMetrics(ps.seed(in), in.TestType, concurrency, duration)
		pt.Synthetic = true
	}
	pt.Metrics = datatypes.NewJSONType(metrics)
	pt.Status = ClassifyPerformance(metrics, target)

	if _, err := ps.perfRepo.Create(ctx, nil, pt); err != nil {
		return nil, err
	}
	ps.log.Info("Performance test recorded", "performance_test_id", pt.ID, "status", pt.Status, "synthetic", pt.Synthetic)
	publish(ctx, ps.log, ps.pub, realtime.Activity(realtime.EventPerformanceTestCreated, pt))
	return pt, nil
}

func (ps *performanceTestService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ps.perfRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("performance test")
		}
		return err
	}
	return nil
}

// ClassifyPerformance grades a run against its response-time target.
// ErrorRate is a percentage.
func ClassifyPerformance(m types.PerformanceMetrics, targetMs float64) string {
	switch {
	case m.ErrorRate > 5 || m.AvgResponseMs > 1.5*targetMs:
		return types.PerfStatusFailed
	case m.AvgResponseMs > targetMs || m.ErrorRate > 1:
		return types.PerfStatusWarning
	default:
		return types.PerfStatusPassed
	}
}

var perfTypeLoadFactor = map[string]float64{
	qa.PerfTypeLoad:      1.0,
	qa.PerfTypeEndurance: 1.2,
	qa.PerfTypeStress:    1.6,
	qa.PerfTypeSpike:     1.9,
}

// SyntheticMetrics produces plausible, reproducible numbers for a run that
// was not actually executed. Latency and error rate grow with concurrency.
func SyntheticMetrics(seed uint64, testType string, concurrency, durationSeconds int) types.PerformanceMetrics {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	factor := perfTypeLoadFactor[testType]
	if factor == 0 {
		factor = 1
	}
	between := func(lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }
	load := float64(concurrency)

	avg := (60 + load*0.12*factor) * between(0.85, 1.25)
	errRate := (0.05 + load/maxConcurrency*6*factor) * between(0.5, 1.5)
	throughput := load * 1000 / avg * between(0.8, 0.98)

	m := types.PerformanceMetrics{
		AvgResponseMs: round2(avg),
		MinResponseMs: round2(avg * between(0.25, 0.45)),
		MaxResponseMs: round2(avg * between(2.5, 4.0)),
		P95ResponseMs: round2(avg * between(1.5, 2.1)),
		ThroughputRps: round2(throughput),
		ErrorRate:     round2(math.Min(errRate, 100)),
	}
	m.TotalRequests = int64(throughput * float64(durationSeconds))
	return m
}

func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func timeSeed(in PerformanceTestInput) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(in.Name))
	_, _ = h.Write([]byte(in.TargetURL))
	return h.Sum64() ^ uint64(time.Now().UnixNano())
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
