package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// PaymentGroupServiceClient calls PaymentGroupService procedures.
type PaymentGroupServiceClient struct {
	createGroup         *connect.Client[CreateGroupRequest, GroupResponse]
	getGroup            *connect.Client[GetGroupRequest, GroupResponse]
	listGroups          *connect.Client[ListGroupsRequest, ListGroupsResponse]
	updateSettings      *connect.Client[UpdateSettingsRequest, GroupResponse]
	joinGroup           *connect.Client[JoinGroupRequest, GroupResponse]
	leaveGroup          *connect.Client[LeaveGroupRequest, GroupResponse]
	promoteMember       *connect.Client[MemberRequest, GroupResponse]
	demoteMember        *connect.Client[MemberRequest, GroupResponse]
	invite              *connect.Client[InviteRequest, InviteResponse]
	respondInvitation   *connect.Client[RespondInvitationRequest, GroupResponse]
	revokeInvitation    *connect.Client[RevokeInvitationRequest, GroupResponse]
	listMyInvitations   *connect.Client[ListMyInvitationsRequest, ListMyInvitationsResponse]
	contribute          *connect.Client[ContributeRequest, ContributeResponse]
	confirmContribution *connect.Client[ConfirmContributionRequest, GroupResponse]
	failContribution    *connect.Client[FailContributionRequest, GroupResponse]
	reverseContribution *connect.Client[ReverseContributionRequest, GroupResponse]
	extendDeadline      *connect.Client[ExtendDeadlineRequest, GroupResponse]
	requestTermination  *connect.Client[RequestTerminationRequest, GroupResponse]
	castVote            *connect.Client[CastVoteRequest, GroupResponse]
}

// NewPaymentGroupServiceClient creates a client for the service at baseURL, e.g.
// http://localhost:8080.
func NewPaymentGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PaymentGroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &PaymentGroupServiceClient{
		createGroup:         connect.NewClient[CreateGroupRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceCreateGroupProcedure, opts...),
		getGroup:            connect.NewClient[GetGroupRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceGetGroupProcedure, opts...),
		listGroups:          connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+PaymentGroupServiceListGroupsProcedure, opts...),
		updateSettings:      connect.NewClient[UpdateSettingsRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceUpdateSettingsProcedure, opts...),
		joinGroup:           connect.NewClient[JoinGroupRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceJoinGroupProcedure, opts...),
		leaveGroup:          connect.NewClient[LeaveGroupRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceLeaveGroupProcedure, opts...),
		promoteMember:       connect.NewClient[MemberRequest, GroupResponse](httpClient, baseURL+PaymentGroupServicePromoteMemberProcedure, opts...),
		demoteMember:        connect.NewClient[MemberRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceDemoteMemberProcedure, opts...),
		invite:              connect.NewClient[InviteRequest, InviteResponse](httpClient, baseURL+PaymentGroupServiceInviteProcedure, opts...),
		respondInvitation:   connect.NewClient[RespondInvitationRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceRespondInvitationProcedure, opts...),
		revokeInvitation:    connect.NewClient[RevokeInvitationRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceRevokeInvitationProcedure, opts...),
		listMyInvitations:   connect.NewClient[ListMyInvitationsRequest, ListMyInvitationsResponse](httpClient, baseURL+PaymentGroupServiceListMyInvitationsProcedure, opts...),
		contribute:          connect.NewClient[ContributeRequest, ContributeResponse](httpClient, baseURL+PaymentGroupServiceContributeProcedure, opts...),
		confirmContribution: connect.NewClient[ConfirmContributionRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceConfirmContributionProcedure, opts...),
		failContribution:    connect.NewClient[FailContributionRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceFailContributionProcedure, opts...),
		reverseContribution: connect.NewClient[ReverseContributionRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceReverseContributionProcedure, opts...),
		extendDeadline:      connect.NewClient[ExtendDeadlineRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceExtendDeadlineProcedure, opts...),
		requestTermination:  connect.NewClient[RequestTerminationRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceRequestTerminationProcedure, opts...),
		castVote:            connect.NewClient[CastVoteRequest, GroupResponse](httpClient, baseURL+PaymentGroupServiceCastVoteProcedure, opts...),
	}
}

// CreateGroup calls PaymentGroupService.CreateGroup.
func (c *PaymentGroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

// GetGroup calls PaymentGroupService.GetGroup.
func (c *PaymentGroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

// ListGroups calls PaymentGroupService.ListGroups.
func (c *PaymentGroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// UpdateSettings calls PaymentGroupService.UpdateSettings.
func (c *PaymentGroupServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[GroupResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}

// JoinGroup calls PaymentGroupService.JoinGroup.
func (c *PaymentGroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

// LeaveGroup calls PaymentGroupService.LeaveGroup.
func (c *PaymentGroupServiceClient) LeaveGroup(ctx context.Context, req *connect.Request[LeaveGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.leaveGroup.CallUnary(ctx, req)
}

// PromoteMember calls PaymentGroupService.PromoteMember.
func (c *PaymentGroupServiceClient) PromoteMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[GroupResponse], error) {
	return c.promoteMember.CallUnary(ctx, req)
}

// DemoteMember calls PaymentGroupService.DemoteMember.
func (c *PaymentGroupServiceClient) DemoteMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[GroupResponse], error) {
	return c.demoteMember.CallUnary(ctx, req)
}

// Invite calls PaymentGroupService.Invite.
func (c *PaymentGroupServiceClient) Invite(ctx context.Context, req *connect.Request[InviteRequest]) (*connect.Response[InviteResponse], error) {
	return c.invite.CallUnary(ctx, req)
}

// RespondInvitation calls PaymentGroupService.RespondInvitation.
func (c *PaymentGroupServiceClient) RespondInvitation(ctx context.Context, req *connect.Request[RespondInvitationRequest]) (*connect.Response[GroupResponse], error) {
	return c.respondInvitation.CallUnary(ctx, req)
}

// RevokeInvitation calls PaymentGroupService.RevokeInvitation.
func (c *PaymentGroupServiceClient) RevokeInvitation(ctx context.Context, req *connect.Request[RevokeInvitationRequest]) (*connect.Response[GroupResponse], error) {
	return c.revokeInvitation.CallUnary(ctx, req)
}

// ListMyInvitations calls PaymentGroupService.ListMyInvitations.
func (c *PaymentGroupServiceClient) ListMyInvitations(ctx context.Context, req *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error) {
	return c.listMyInvitations.CallUnary(ctx, req)
}

// Contribute calls PaymentGroupService.Contribute.
func (c *PaymentGroupServiceClient) Contribute(ctx context.Context, req *connect.Request[ContributeRequest]) (*connect.Response[ContributeResponse], error) {
	return c.contribute.CallUnary(ctx, req)
}

// ConfirmContribution calls PaymentGroupService.ConfirmContribution.
func (c *PaymentGroupServiceClient) ConfirmContribution(ctx context.Context, req *connect.Request[ConfirmContributionRequest]) (*connect.Response[GroupResponse], error) {
	return c.confirmContribution.CallUnary(ctx, req)
}

// FailContribution calls PaymentGroupService.FailContribution.
func (c *PaymentGroupServiceClient) FailContribution(ctx context.Context, req *connect.Request[FailContributionRequest]) (*connect.Response[GroupResponse], error) {
	return c.failContribution.CallUnary(ctx, req)
}

// ReverseContribution calls PaymentGroupService.ReverseContribution.
func (c *PaymentGroupServiceClient) ReverseContribution(ctx context.Context, req *connect.Request[ReverseContributionRequest]) (*connect.Response[GroupResponse], error) {
	return c.reverseContribution.CallUnary(ctx, req)
}

// ExtendDeadline calls PaymentGroupService.ExtendDeadline.
func (c *PaymentGroupServiceClient) ExtendDeadline(ctx context.Context, req *connect.Request[ExtendDeadlineRequest]) (*connect.Response[GroupResponse], error) {
	return c.extendDeadline.CallUnary(ctx, req)
}

// RequestTermination calls PaymentGroupService.RequestTermination.
func (c *PaymentGroupServiceClient) RequestTermination(ctx context.Context, req *connect.Request[RequestTerminationRequest]) (*connect.Response[GroupResponse], error) {
	return c.requestTermination.CallUnary(ctx, req)
}

// CastVote calls PaymentGroupService.CastVote.
func (c *PaymentGroupServiceClient) CastVote(ctx context.Context, req *connect.Request[CastVoteRequest]) (*connect.Response[GroupResponse], error) {
	return c.castVote.CallUnary(ctx, req)
}

// AuthServiceClient calls AuthService procedures.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, AuthResponse]
	login          *connect.Client[LoginRequest, AuthResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient creates a client for the service at baseURL, e.g.
// http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &AuthServiceClient{
		register:       connect.NewClient[RegisterRequest, AuthResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, AuthResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

// Register calls AuthService.Register.
func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

// Login calls AuthService.Login.
func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// GetCurrentUser calls AuthService.GetCurrentUser.
func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
