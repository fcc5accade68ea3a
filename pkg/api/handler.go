package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// PaymentGroupServiceHandler is implemented by the server side of PaymentGroupService.
type PaymentGroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[GroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[GroupResponse], error)
	LeaveGroup(context.Context, *connect.Request[LeaveGroupRequest]) (*connect.Response[GroupResponse], error)
	PromoteMember(context.Context, *connect.Request[MemberRequest]) (*connect.Response[GroupResponse], error)
	DemoteMember(context.Context, *connect.Request[MemberRequest]) (*connect.Response[GroupResponse], error)
	Invite(context.Context, *connect.Request[InviteRequest]) (*connect.Response[InviteResponse], error)
	RespondInvitation(context.Context, *connect.Request[RespondInvitationRequest]) (*connect.Response[GroupResponse], error)
	RevokeInvitation(context.Context, *connect.Request[RevokeInvitationRequest]) (*connect.Response[GroupResponse], error)
	ListMyInvitations(context.Context, *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error)
	Contribute(context.Context, *connect.Request[ContributeRequest]) (*connect.Response[ContributeResponse], error)
	ConfirmContribution(context.Context, *connect.Request[ConfirmContributionRequest]) (*connect.Response[GroupResponse], error)
	FailContribution(context.Context, *connect.Request[FailContributionRequest]) (*connect.Response[GroupResponse], error)
	ReverseContribution(context.Context, *connect.Request[ReverseContributionRequest]) (*connect.Response[GroupResponse], error)
	ExtendDeadline(context.Context, *connect.Request[ExtendDeadlineRequest]) (*connect.Response[GroupResponse], error)
	RequestTermination(context.Context, *connect.Request[RequestTerminationRequest]) (*connect.Response[GroupResponse], error)
	CastVote(context.Context, *connect.Request[CastVoteRequest]) (*connect.Response[GroupResponse], error)
}

// NewPaymentGroupServiceHandler builds an HTTP handler for every PaymentGroupService procedure.
// It returns the path prefix to mount it on.
func NewPaymentGroupServiceHandler(svc PaymentGroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(PaymentGroupServiceCreateGroupProcedure, connect.NewUnaryHandler(PaymentGroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(PaymentGroupServiceGetGroupProcedure, connect.NewUnaryHandler(PaymentGroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(PaymentGroupServiceListGroupsProcedure, connect.NewUnaryHandler(PaymentGroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(PaymentGroupServiceUpdateSettingsProcedure, connect.NewUnaryHandler(PaymentGroupServiceUpdateSettingsProcedure, svc.UpdateSettings, opts...))
	mux.Handle(PaymentGroupServiceJoinGroupProcedure, connect.NewUnaryHandler(PaymentGroupServiceJoinGroupProcedure, svc.JoinGroup, opts...))
	mux.Handle(PaymentGroupServiceLeaveGroupProcedure, connect.NewUnaryHandler(PaymentGroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...))
	mux.Handle(PaymentGroupServicePromoteMemberProcedure, connect.NewUnaryHandler(PaymentGroupServicePromoteMemberProcedure, svc.PromoteMember, opts...))
	mux.Handle(PaymentGroupServiceDemoteMemberProcedure, connect.NewUnaryHandler(PaymentGroupServiceDemoteMemberProcedure, svc.DemoteMember, opts...))
	mux.Handle(PaymentGroupServiceInviteProcedure, connect.NewUnaryHandler(PaymentGroupServiceInviteProcedure, svc.Invite, opts...))
	mux.Handle(PaymentGroupServiceRespondInvitationProcedure, connect.NewUnaryHandler(PaymentGroupServiceRespondInvitationProcedure, svc.RespondInvitation, opts...))
	mux.Handle(PaymentGroupServiceRevokeInvitationProcedure, connect.NewUnaryHandler(PaymentGroupServiceRevokeInvitationProcedure, svc.RevokeInvitation, opts...))
	mux.Handle(PaymentGroupServiceListMyInvitationsProcedure, connect.NewUnaryHandler(PaymentGroupServiceListMyInvitationsProcedure, svc.ListMyInvitations, opts...))
	mux.Handle(PaymentGroupServiceContributeProcedure, connect.NewUnaryHandler(PaymentGroupServiceContributeProcedure, svc.Contribute, opts...))
	mux.Handle(PaymentGroupServiceConfirmContributionProcedure, connect.NewUnaryHandler(PaymentGroupServiceConfirmContributionProcedure, svc.ConfirmContribution, opts...))
	mux.Handle(PaymentGroupServiceFailContributionProcedure, connect.NewUnaryHandler(PaymentGroupServiceFailContributionProcedure, svc.FailContribution, opts...))
	mux.Handle(PaymentGroupServiceReverseContributionProcedure, connect.NewUnaryHandler(PaymentGroupServiceReverseContributionProcedure, svc.ReverseContribution, opts...))
	mux.Handle(PaymentGroupServiceExtendDeadlineProcedure, connect.NewUnaryHandler(PaymentGroupServiceExtendDeadlineProcedure, svc.ExtendDeadline, opts...))
	mux.Handle(PaymentGroupServiceRequestTerminationProcedure, connect.NewUnaryHandler(PaymentGroupServiceRequestTerminationProcedure, svc.RequestTermination, opts...))
	mux.Handle(PaymentGroupServiceCastVoteProcedure, connect.NewUnaryHandler(PaymentGroupServiceCastVoteProcedure, svc.CastVote, opts...))
	return "/" + PaymentGroupServiceName + "/", mux
}

// AuthServiceHandler is implemented by the server side of AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for every AuthService procedure.
// It returns the path prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}
