package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	groups storage.GroupStore
	logger *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(groups storage.GroupStore, logger *slog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

// CreateGroup creates a new group administered by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.InfoContext(ctx, "CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name is required"))
	}

	// The admin is always the first member; duplicates and blanks are dropped.
	members := []string{userID}
	seen := map[string]bool{userID: true}
	for _, m := range req.Msg.Members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	group := &models.Group{
		Name:        name,
		AdminUserID: userID,
		Members:     members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		s.logger.ErrorContext(ctx, "CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.InfoContext(ctx, "Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup deletes a group. Only its admin may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	group, err := s.groups.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if group.AdminUserID != middleware.GetUserID(ctx) {
		return nil, toConnectError(errNotAdmin)
	}

	if err := s.groups.DeleteGroup(ctx, group.ID); err != nil {
		s.logger.ErrorContext(ctx, "DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.InfoContext(ctx, "Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.groups.ListGroupsByMember(ctx, middleware.GetUserID(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, *toAPIGroup(g))
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}
