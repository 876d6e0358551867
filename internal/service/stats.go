package service

import (
	"context"

	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
)

type AdminAPI interface {
	GetAdminStats(ctx context.Context) (*model.DashboardStats, error)
	GetAdminActivity(ctx context.Context) (model.ActivityList, error)
}

type AdminService struct {
	reporter
	api AdminAPI
}

func NewAdminService(api AdminAPI, notifier notify.Notifier) *AdminService {
	return &AdminService{reporter: reporter{notifier: notifier}, api: api}
}

func (s *AdminService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.api.GetAdminStats(ctx)
	if err != nil {
		return nil, s.failWith(ctx, "admin_stats", err, "Failed to load statistics")
	}
	return stats, nil
}

func (s *AdminService) Activity(ctx context.Context) (model.ActivityList, error) {
	activity, err := s.api.GetAdminActivity(ctx)
	if err != nil {
		return nil, s.failWith(ctx, "admin_activity", err, "Failed to load activity")
	}
	return activity, nil
}
