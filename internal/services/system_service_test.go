package services

import (
	"context"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

type stubHealthRepository struct {
	collectFunc func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	return s.collectFunc(ctx)
}

func TestSystemServiceHealthReportStampsBuildMetadata(t *testing.T) {
	started := time.Date(2025, 5, 6, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)

	repo := &stubHealthRepository{
		collectFunc: func(context.Context) (domain.SystemHealthReport, error) {
			return domain.SystemHealthReport{
				Status: domain.HealthStatusOK,
				Checks: map[string]domain.SystemHealthCheck{
					"firestore": {Status: domain.HealthStatusOK, Detail: "ok"},
				},
			}, nil
		},
	}

	service, err := NewSystemService(SystemServiceDeps{
		HealthRepository: repo,
		Clock:            func() time.Time { return now },
		Build: BuildInfo{
			Version:     "1.4.0",
			Environment: "production",
			StartedAt:   started,
		},
	})
	if err != nil {
		t.Fatalf("NewSystemService: %v", err)
	}

	report, err := service.HealthReport(context.Background())
	if err != nil {
		t.Fatalf("HealthReport: %v", err)
	}
	if report.Version != "1.4.0" || report.Environment != "production" {
		t.Fatalf("build metadata missing: %#v", report)
	}
	if report.Uptime != time.Hour {
		t.Fatalf("expected 1h uptime, got %v", report.Uptime)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Fatalf("expected generatedAt %v, got %v", now, report.GeneratedAt)
	}
	if len(report.Checks) != 1 {
		t.Fatalf("expected checks preserved, got %#v", report.Checks)
	}
}
