package service

import (
	"context"

	"auditdesk/internal/model"
	"auditdesk/internal/repository"
)

// ActivityService exposes the read-only activity trail.
type ActivityService interface {
	List(ctx context.Context, actor Actor, entityType string, page, limit int) ([]model.ActivityEntry, int64, error)
}

type activityService struct {
	activity repository.ActivityRepository
}

func NewActivityService(activity repository.ActivityRepository) ActivityService {
	return &activityService{activity: activity}
}

func (s *activityService) List(ctx context.Context, actor Actor, entityType string, page, limit int) ([]model.ActivityEntry, int64, error) {
	return s.activity.List(ctx, actor.OrgID, entityType, page, limit)
}
