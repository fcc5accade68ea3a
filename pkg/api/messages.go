package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// Group is a payment group's settings and status.
type Group struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	CurrentAmount    decimal.Decimal `json:"current_amount"`
	ContributionType string          `json:"contribution_type"`
	Frequency        string          `json:"frequency"`
	MaxCapacity      int             `json:"max_capacity"`
	Visibility       string          `json:"visibility"`
	RequiresApproval bool            `json:"requires_approval"`
	AllowAnonymous   bool            `json:"allow_anonymous"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	CreatedBy        string          `json:"created_by"`
	MaturedAt        *time.Time      `json:"matured_at,omitempty"`
	TerminatedAt     *time.Time      `json:"terminated_at,omitempty"`
	Version          int64           `json:"version"`
}

type Member struct {
	ID               string          `json:"id"`
	UserRef          string          `json:"user_ref,omitempty"`
	DisplayName      string          `json:"display_name,omitempty"`
	IsAnonymous      bool            `json:"is_anonymous"`
	IsAdmin          bool            `json:"is_admin"`
	JoinedAt         time.Time       `json:"joined_at"`
	TotalContributed decimal.Decimal `json:"total_contributed"`
}

type Invitation struct {
	ID           string     `json:"id"`
	GroupID      string     `json:"group_id"`
	InviteeEmail string     `json:"invitee_email"`
	InvitedBy    string     `json:"invited_by"`
	Status       string     `json:"status"`
	IsExternal   bool       `json:"is_external"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

type Contribution struct {
	ID                string          `json:"id"`
	MemberID          string          `json:"member_id"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Notes             string          `json:"notes,omitempty"`
	ContributedAt     time.Time       `json:"contributed_at"`
	ExternalReference string          `json:"external_reference,omitempty"`
	Confirmed         bool            `json:"confirmed"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`
	Reversed          bool            `json:"reversed"`
	ReversedAt        *time.Time      `json:"reversed_at,omitempty"`
	ReversalReason    string          `json:"reversal_reason,omitempty"`
}

type VoteProgress struct {
	Agreed   int `json:"agreed"`
	Total    int `json:"total"`
	Required int `json:"required"`
}

// GroupSnapshot is the full read model of a group.
type GroupSnapshot struct {
	Group         Group          `json:"group"`
	Members       []Member       `json:"members"`
	Invitations   []Invitation   `json:"invitations,omitempty"`
	Contributions []Contribution `json:"contributions"`
	Votes         VoteProgress   `json:"votes"`
	// Transition describes a status change made by the call, if any.
	Transition string `json:"transition,omitempty"`
}

// GroupResponse is returned by every call that reads or changes one group.
type GroupResponse struct {
	Snapshot GroupSnapshot `json:"snapshot"`
}

type CreateGroupRequest struct {
	Name             string          `json:"name" validate:"required,max=120"`
	Description      string          `json:"description" validate:"max=1000"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	ContributionType string          `json:"contribution_type" validate:"required,oneof=fixed flexible percentage"`
	Frequency        string          `json:"frequency" validate:"required,oneof=daily weekly monthly once"`
	MaxCapacity      int             `json:"max_capacity" validate:"gte=2"`
	Visibility       string          `json:"visibility" validate:"required,oneof=public private"`
	RequiresApproval bool            `json:"requires_approval"`
	AllowAnonymous   bool            `json:"allow_anonymous"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	// Anonymous makes the creator's own membership anonymous.
	Anonymous bool `json:"anonymous"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// UpdateSettingsRequest changes group settings. Omitted fields are unchanged.
type UpdateSettingsRequest struct {
	GroupID          string           `json:"group_id" validate:"required"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	TargetAmount     *decimal.Decimal `json:"target_amount,omitempty"`
	ContributionType *string          `json:"contribution_type,omitempty" validate:"omitempty,oneof=fixed flexible percentage"`
	Frequency        *string          `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly monthly once"`
	MaxCapacity      *int             `json:"max_capacity,omitempty" validate:"omitempty,gte=2"`
	Visibility       *string          `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	RequiresApproval *bool            `json:"requires_approval,omitempty"`
	AllowAnonymous   *bool            `json:"allow_anonymous,omitempty"`
}

type JoinGroupRequest struct {
	GroupID   string `json:"group_id" validate:"required"`
	Anonymous bool   `json:"anonymous"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// MemberRequest targets one member of a group.
type MemberRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	MemberID string `json:"member_id" validate:"required"`
}

type InviteRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	// ForceExternal confirms an invitation to an address with no account.
	ForceExternal bool `json:"force_external"`
}

// InviteResponse carries either the created invitation or a confirmation
// prompt. No invitation exists when ConfirmationRequired is true.
type InviteResponse struct {
	Snapshot             GroupSnapshot `json:"snapshot"`
	Invitation           *Invitation   `json:"invitation,omitempty"`
	ConfirmationRequired bool          `json:"confirmation_required"`
	Prompt               string        `json:"prompt,omitempty"`
}

type RespondInvitationRequest struct {
	InvitationID string `json:"invitation_id" validate:"required"`
	Accept       bool   `json:"accept"`
	Anonymous    bool   `json:"anonymous"`
}

type RevokeInvitationRequest struct {
	InvitationID string `json:"invitation_id" validate:"required"`
}

type ListMyInvitationsRequest struct{}

type ListMyInvitationsResponse struct {
	Invitations []Invitation `json:"invitations"`
}

type ContributeRequest struct {
	GroupID string          `json:"group_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method" validate:"required,oneof=wallet mobile_money card"`
	Notes   string          `json:"notes" validate:"max=500"`
}

type ContributeResponse struct {
	Snapshot     GroupSnapshot `json:"snapshot"`
	Contribution Contribution  `json:"contribution"`
}

// ConfirmContributionRequest is sent by the payment provider once a pending
// payment settles.
type ConfirmContributionRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// FailContributionRequest is sent by the payment provider when a pending
// payment fails.
type FailContributionRequest struct {
	Reference string `json:"reference" validate:"required"`
	Reason    string `json:"reason" validate:"max=500"`
}

type ReverseContributionRequest struct {
	ContributionID string `json:"contribution_id" validate:"required"`
	Reason         string `json:"reason" validate:"required,max=500"`
}

type ExtendDeadlineRequest struct {
	GroupID  string    `json:"group_id" validate:"required"`
	Deadline time.Time `json:"deadline" validate:"required"`
}

type RequestTerminationRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type CastVoteRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Agreed  bool   `json:"agreed"`
}
