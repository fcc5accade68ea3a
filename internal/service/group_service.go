package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/piggybank/internal/middleware"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/paygroup"
	"github.com/mmynk/piggybank/pkg/api"
)

// MemberNames resolves account IDs to display names.
type MemberNames interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// GroupService implements the Connect PaymentGroupService over the payment
// group engine.
type GroupService struct {
	groups *paygroup.Service
	names  MemberNames
}

var _ api.PaymentGroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService. names may be nil, in which case
// members are shown without display names.
func NewGroupService(groups *paygroup.Service, names MemberNames) *GroupService {
	return &GroupService{groups: groups, names: names}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	caller := middleware.GetUserID(ctx)
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"capacity", req.Msg.MaxCapacity,
		"user_id", caller,
	)

	snap, err := s.groups.CreateGroup(ctx, caller, paygroup.CreateGroupInput{
		Name:             req.Msg.Name,
		Description:      req.Msg.Description,
		TargetAmount:     req.Msg.TargetAmount,
		ContributionType: models.ContributionType(req.Msg.ContributionType),
		Frequency:        models.Frequency(req.Msg.Frequency),
		MaxCapacity:      req.Msg.MaxCapacity,
		Visibility:       models.Visibility(req.Msg.Visibility),
		RequiresApproval: req.Msg.RequiresApproval,
		AllowAnonymous:   req.Msg.AllowAnonymous,
		Deadline:         req.Msg.Deadline,
		CreatorAnonymous: req.Msg.Anonymous,
	})
	return s.respond(ctx, "CreateGroup", snap, err)
}

// GetGroup returns a group as seen by the caller.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)
	snap, err := s.groups.GetGroup(ctx, middleware.GetUserID(ctx), req.Msg.GroupID)
	return s.respond(ctx, "GetGroup", snap, err)
}

// ListGroups returns public groups and the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.groups.ListGroups(ctx, middleware.GetUserID(ctx))
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g.Group)
		out[i].CurrentAmount = g.CurrentAmount
	}
	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateSettings changes group settings.
func (s *GroupService) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("UpdateSettings request received", "group_id", req.Msg.GroupID)

	in := paygroup.SettingsInput{
		Name:             req.Msg.Name,
		Description:      req.Msg.Description,
		TargetAmount:     req.Msg.TargetAmount,
		MaxCapacity:      req.Msg.MaxCapacity,
		RequiresApproval: req.Msg.RequiresApproval,
		AllowAnonymous:   req.Msg.AllowAnonymous,
	}
	if v := req.Msg.ContributionType; v != nil {
		ct := models.ContributionType(*v)
		in.ContributionType = &ct
	}
	if v := req.Msg.Frequency; v != nil {
		f := models.Frequency(*v)
		in.Frequency = &f
	}
	if v := req.Msg.Visibility; v != nil {
		vis := models.Visibility(*v)
		in.Visibility = &vis
	}
	snap, err := s.groups.UpdateSettings(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, in)
	return s.respond(ctx, "UpdateSettings", snap, err)
}

// JoinGroup adds the caller to a public group.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("JoinGroup request received", "group_id", req.Msg.GroupID, "anonymous", req.Msg.Anonymous)
	snap, err := s.groups.Join(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.Anonymous)
	return s.respond(ctx, "JoinGroup", snap, err)
}

// LeaveGroup removes the caller from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("LeaveGroup request received", "group_id", req.Msg.GroupID)
	snap, err := s.groups.Leave(ctx, middleware.GetUserID(ctx), req.Msg.GroupID)
	return s.respond(ctx, "LeaveGroup", snap, err)
}

// PromoteMember grants admin rights.
func (s *GroupService) PromoteMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("PromoteMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)
	snap, err := s.groups.Promote(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.MemberID)
	return s.respond(ctx, "PromoteMember", snap, err)
}

// DemoteMember revokes admin rights.
func (s *GroupService) DemoteMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("DemoteMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)
	snap, err := s.groups.Demote(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.MemberID)
	return s.respond(ctx, "DemoteMember", snap, err)
}

// Invite invites an email address, or asks for confirmation when it has no account.
func (s *GroupService) Invite(ctx context.Context, req *connect.Request[api.InviteRequest]) (*connect.Response[api.InviteResponse], error) {
	slog.Info("Invite request received", "group_id", req.Msg.GroupID, "force_external", req.Msg.ForceExternal)

	res, err := s.groups.Invite(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.Email, req.Msg.ForceExternal)
	if err != nil {
		slog.Warn("Invite failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := &api.InviteResponse{Snapshot: s.snapshot(ctx, res.Snapshot)}
	if res.ConfirmationRequired != nil {
		out.ConfirmationRequired = true
		out.Prompt = res.ConfirmationRequired.Prompt
	}
	if res.Invitation != nil {
		inv := toAPIInvitation(res.Invitation)
		out.Invitation = &inv
	}
	return connect.NewResponse(out), nil
}

// RespondInvitation accepts or declines an invitation.
func (s *GroupService) RespondInvitation(ctx context.Context, req *connect.Request[api.RespondInvitationRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("RespondInvitation request received", "invitation_id", req.Msg.InvitationID, "accept", req.Msg.Accept)
	snap, err := s.groups.RespondInvitation(ctx, middleware.GetUserID(ctx), req.Msg.InvitationID, req.Msg.Accept, req.Msg.Anonymous)
	return s.respond(ctx, "RespondInvitation", snap, err)
}

// RevokeInvitation withdraws a pending invitation.
func (s *GroupService) RevokeInvitation(ctx context.Context, req *connect.Request[api.RevokeInvitationRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("RevokeInvitation request received", "invitation_id", req.Msg.InvitationID)
	snap, err := s.groups.RevokeInvitation(ctx, middleware.GetUserID(ctx), req.Msg.InvitationID)
	return s.respond(ctx, "RevokeInvitation", snap, err)
}

// ListMyInvitations returns the caller's pending invitations.
func (s *GroupService) ListMyInvitations(ctx context.Context, req *connect.Request[api.ListMyInvitationsRequest]) (*connect.Response[api.ListMyInvitationsResponse], error) {
	invs, err := s.groups.ListMyInvitations(ctx, middleware.GetUserID(ctx))
	if err != nil {
		slog.Error("ListMyInvitations failed", "error", err)
		return nil, toConnectError(err)
	}
	out := make([]api.Invitation, len(invs))
	for i, inv := range invs {
		out[i] = toAPIInvitation(inv)
	}
	return connect.NewResponse(&api.ListMyInvitationsResponse{Invitations: out}), nil
}

// Contribute charges the caller and records a contribution.
func (s *GroupService) Contribute(ctx context.Context, req *connect.Request[api.ContributeRequest]) (*connect.Response[api.ContributeResponse], error) {
	slog.Info("Contribute request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"method", req.Msg.Method,
	)

	res, err := s.groups.Contribute(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.Amount, models.PaymentMethod(req.Msg.Method), req.Msg.Notes)
	if err != nil {
		slog.Warn("Contribute failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ContributeResponse{
		Snapshot:     s.snapshot(ctx, res.Snapshot),
		Contribution: toAPIContribution(res.Contribution),
	}), nil
}

// ConfirmContribution is the payment provider's settlement callback.
func (s *GroupService) ConfirmContribution(ctx context.Context, req *connect.Request[api.ConfirmContributionRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("ConfirmContribution request received", "reference", req.Msg.Reference)
	snap, err := s.groups.ConfirmContribution(ctx, req.Msg.Reference)
	return s.respond(ctx, "ConfirmContribution", snap, err)
}

// FailContribution is the payment provider's failure callback.
func (s *GroupService) FailContribution(ctx context.Context, req *connect.Request[api.FailContributionRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("FailContribution request received", "reference", req.Msg.Reference)
	snap, err := s.groups.FailContribution(ctx, req.Msg.Reference, req.Msg.Reason)
	return s.respond(ctx, "FailContribution", snap, err)
}

// ReverseContribution takes back a confirmed contribution.
func (s *GroupService) ReverseContribution(ctx context.Context, req *connect.Request[api.ReverseContributionRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("ReverseContribution request received", "contribution_id", req.Msg.ContributionID)
	snap, err := s.groups.ReverseContribution(ctx, middleware.GetUserID(ctx), req.Msg.ContributionID, req.Msg.Reason)
	return s.respond(ctx, "ReverseContribution", snap, err)
}

// ExtendDeadline moves the deadline and reactivates the group.
func (s *GroupService) ExtendDeadline(ctx context.Context, req *connect.Request[api.ExtendDeadlineRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("ExtendDeadline request received", "group_id", req.Msg.GroupID, "deadline", req.Msg.Deadline)
	snap, err := s.groups.ExtendDeadline(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.Deadline)
	return s.respond(ctx, "ExtendDeadline", snap, err)
}

// RequestTermination casts an agreeing termination vote.
func (s *GroupService) RequestTermination(ctx context.Context, req *connect.Request[api.RequestTerminationRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("RequestTermination request received", "group_id", req.Msg.GroupID)
	snap, err := s.groups.RequestTermination(ctx, middleware.GetUserID(ctx), req.Msg.GroupID)
	return s.respond(ctx, "RequestTermination", snap, err)
}

// CastVote records a termination vote.
func (s *GroupService) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.GroupResponse], error) {
	slog.Info("CastVote request received", "group_id", req.Msg.GroupID, "agreed", req.Msg.Agreed)
	snap, err := s.groups.CastVote(ctx, middleware.GetUserID(ctx), req.Msg.GroupID, req.Msg.Agreed)
	return s.respond(ctx, "CastVote", snap, err)
}

func (s *GroupService) respond(ctx context.Context, op string, snap *models.Snapshot, err error) (*connect.Response[api.GroupResponse], error) {
	if err != nil {
		slog.Warn(op+" failed", "error", err)
		return nil, toConnectError(err)
	}
	slog.Info(op+" successful", "group_id", snap.Group.ID, "status", snap.Group.Status)
	return connect.NewResponse(&api.GroupResponse{Snapshot: s.snapshot(ctx, snap)}), nil
}

// snapshot converts snap and fills in display names of visible members. A
// failed name lookup leaves the names empty.
func (s *GroupService) snapshot(ctx context.Context, snap *models.Snapshot) api.GroupSnapshot {
	out := toAPISnapshot(snap)
	if s.names == nil {
		return out
	}

	var ids []string
	for _, m := range out.Members {
		if m.UserRef != "" {
			ids = append(ids, m.UserRef)
		}
	}
	if len(ids) == 0 {
		return out
	}
	names, err := s.names.DisplayNames(ctx, ids)
	if err != nil {
		slog.Warn("Failed to resolve member names", "group_id", snap.Group.ID, "error", err)
		return out
	}
	for i := range out.Members {
		out.Members[i].DisplayName = names[out.Members[i].UserRef]
	}
	return out
}
