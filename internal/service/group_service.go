package service

import (
	"context"
	"log/slog"

	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// GroupService manages poker groups.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	group := &models.Group{
		Name:    name,
		Members: members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(members))
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// UpdateGroup replaces a group's name and member list.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, name string, members []string) (*models.Group, error) {
	group := &models.Group{
		ID:      groupID,
		Name:    name,
		Members: members,
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// DeleteGroup removes a group and its games.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}
