// Package api defines the piggybank.v1 Connect services: wire messages,
// procedure names, the JSON codec, and typed handlers and clients.
//
// Messages are plain Go structs carried as JSON, so clients in any language can
// call the services with the Connect protocol over HTTP/1.1 or h2c.
package api

const (
	// PaymentGroupServiceName is the fully-qualified name of the payment group service.
	PaymentGroupServiceName = "piggybank.v1.PaymentGroupService"
	// AuthServiceName is the fully-qualified name of the authentication service.
	AuthServiceName = "piggybank.v1.AuthService"
)

// Procedure paths.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	PaymentGroupServiceCreateGroupProcedure         = "/" + PaymentGroupServiceName + "/CreateGroup"
	PaymentGroupServiceGetGroupProcedure            = "/" + PaymentGroupServiceName + "/GetGroup"
	PaymentGroupServiceListGroupsProcedure          = "/" + PaymentGroupServiceName + "/ListGroups"
	PaymentGroupServiceUpdateSettingsProcedure      = "/" + PaymentGroupServiceName + "/UpdateSettings"
	PaymentGroupServiceJoinGroupProcedure           = "/" + PaymentGroupServiceName + "/JoinGroup"
	PaymentGroupServiceLeaveGroupProcedure          = "/" + PaymentGroupServiceName + "/LeaveGroup"
	PaymentGroupServicePromoteMemberProcedure       = "/" + PaymentGroupServiceName + "/PromoteMember"
	PaymentGroupServiceDemoteMemberProcedure        = "/" + PaymentGroupServiceName + "/DemoteMember"
	PaymentGroupServiceInviteProcedure              = "/" + PaymentGroupServiceName + "/Invite"
	PaymentGroupServiceRespondInvitationProcedure   = "/" + PaymentGroupServiceName + "/RespondInvitation"
	PaymentGroupServiceRevokeInvitationProcedure    = "/" + PaymentGroupServiceName + "/RevokeInvitation"
	PaymentGroupServiceListMyInvitationsProcedure   = "/" + PaymentGroupServiceName + "/ListMyInvitations"
	PaymentGroupServiceContributeProcedure          = "/" + PaymentGroupServiceName + "/Contribute"
	PaymentGroupServiceConfirmContributionProcedure = "/" + PaymentGroupServiceName + "/ConfirmContribution"
	PaymentGroupServiceFailContributionProcedure    = "/" + PaymentGroupServiceName + "/FailContribution"
	PaymentGroupServiceReverseContributionProcedure = "/" + PaymentGroupServiceName + "/ReverseContribution"
	PaymentGroupServiceExtendDeadlineProcedure      = "/" + PaymentGroupServiceName + "/ExtendDeadline"
	PaymentGroupServiceRequestTerminationProcedure  = "/" + PaymentGroupServiceName + "/RequestTermination"
	PaymentGroupServiceCastVoteProcedure            = "/" + PaymentGroupServiceName + "/CastVote"
)

// ErrorKindHeader carries the domain error kind on failed responses.
const ErrorKindHeader = "Piggybank-Error-Kind"

// ProviderSecretHeader carries the payment provider's shared secret on
// ConfirmContribution and FailContribution calls.
const ProviderSecretHeader = "Piggybank-Provider-Secret"
