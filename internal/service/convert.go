package service

import (
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/pkg/api"
)

func toAPIGroup(g *models.Group) api.Group {
	return api.Group{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		TargetAmount:     g.TargetAmount,
		ContributionType: string(g.ContributionType),
		Frequency:        string(g.Frequency),
		MaxCapacity:      g.MaxCapacity,
		Visibility:       string(g.Visibility),
		RequiresApproval: g.RequiresApproval,
		AllowAnonymous:   g.AllowAnonymous,
		Deadline:         g.Deadline,
		Status:           string(g.Status),
		CreatedAt:        g.CreatedAt,
		CreatedBy:        g.CreatedBy,
		MaturedAt:        g.MaturedAt,
		TerminatedAt:     g.TerminatedAt,
		Version:          g.Version,
	}
}

func toAPIInvitation(inv *models.Invitation) api.Invitation {
	return api.Invitation{
		ID:           inv.ID,
		GroupID:      inv.GroupID,
		InviteeEmail: inv.InviteeEmail,
		InvitedBy:    inv.InvitedBy,
		Status:       string(inv.Status),
		IsExternal:   inv.IsExternal,
		CreatedAt:    inv.CreatedAt,
		RespondedAt:  inv.RespondedAt,
	}
}

func toAPIContribution(c *models.Contribution) api.Contribution {
	return api.Contribution{
		ID:                c.ID,
		MemberID:          c.MemberID,
		Amount:            c.Amount,
		Method:            string(c.Method),
		Notes:             c.Notes,
		ContributedAt:     c.ContributedAt,
		ExternalReference: c.ExternalReference,
		Confirmed:         c.Confirmed,
		ConfirmedAt:       c.ConfirmedAt,
		Reversed:          c.Reversed,
		ReversedAt:        c.ReversedAt,
		ReversalReason:    c.ReversalReason,
	}
}

func toAPISnapshot(s *models.Snapshot) api.GroupSnapshot {
	group := toAPIGroup(&s.Group)
	group.CurrentAmount = s.CurrentAmount

	out := api.GroupSnapshot{
		Group:         group,
		Members:       make([]api.Member, len(s.Members)),
		Contributions: make([]api.Contribution, len(s.Contributions)),
		Votes: api.VoteProgress{
			Agreed:   s.Votes.Agreed,
			Total:    s.Votes.Total,
			Required: s.Votes.Required,
		},
		Transition: s.Transition,
	}
	for i, m := range s.Members {
		out.Members[i] = api.Member{
			ID:               m.ID,
			UserRef:          m.UserRef,
			IsAnonymous:      m.IsAnonymous,
			IsAdmin:          m.IsAdmin,
			JoinedAt:         m.JoinedAt,
			TotalContributed: m.TotalContributed,
		}
	}
	for i := range s.Invitations {
		out.Invitations = append(out.Invitations, toAPIInvitation(&s.Invitations[i]))
	}
	for i := range s.Contributions {
		out.Contributions[i] = toAPIContribution(&s.Contributions[i])
	}
	return out
}
