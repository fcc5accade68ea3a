package paygroup

import (
	"fmt"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/ledger"
	"github.com/mmynk/piggybank/internal/models"
)

// snapshot builds the read model of st as seen by viewer. Anonymous members'
// accounts are hidden from everyone but themselves, invitations are shown to
// members only, and a contribution's provider reference is shown only to admins
// and the member who paid.
func (s *Service) snapshot(st *models.GroupState, viewer string, fx *effects) *models.Snapshot {
	totals := ledger.MemberTotals(st.Contributions)
	self := st.MemberByUser(viewer)
	isMember := self != nil
	isAdmin := isMember && self.IsAdmin

	snap := &models.Snapshot{
		Group:         *st.Group.Clone(),
		CurrentAmount: ledger.Balance(st.Contributions),
		Members:       make([]models.MemberView, 0, len(st.Members)),
		Contributions: make([]models.Contribution, 0, len(st.Contributions)),
	}
	for _, m := range st.Members {
		view := models.MemberView{Member: *m.Clone(), TotalContributed: totals[m.ID]}
		if m.IsAnonymous && m.UserRef != viewer {
			view.UserRef = ""
		}
		snap.Members = append(snap.Members, view)
	}
	if isMember {
		for _, inv := range st.Invitations {
			snap.Invitations = append(snap.Invitations, *inv.Clone())
		}
	}
	for _, c := range st.Contributions {
		view := *c.Clone()
		if !isAdmin && (self == nil || c.MemberID != self.ID) {
			view.ExternalReference = ""
		}
		snap.Contributions = append(snap.Contributions, view)
	}

	p := s.engine.Progress(st)
	snap.Votes = models.VoteProgress{Agreed: p.Agreed, Total: p.Total, Required: p.Required}
	if fx != nil {
		snap.Transition = fx.lastTransition()
	}
	return snap
}

func canView(st *models.GroupState, userRef string) error {
	if st.Group.Visibility == models.VisibilityPublic || st.MemberByUser(userRef) != nil {
		return nil
	}
	return apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("group %s is private", st.Group.ID))
}

func requireMember(st *models.GroupState, userRef string) (*models.Member, error) {
	m := st.MemberByUser(userRef)
	if m == nil {
		return nil, apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("not a member of group %s", st.Group.ID))
	}
	return m, nil
}

func requireAdmin(st *models.GroupState, userRef string) (*models.Member, error) {
	m, err := requireMember(st, userRef)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin {
		return nil, apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("admin of group %s required", st.Group.ID))
	}
	return m, nil
}
