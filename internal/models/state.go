package models

// GroupState is the aggregate the engine loads, mutates and saves as one unit.
type GroupState struct {
	Group         *Group
	Members       []*Member
	Invitations   []*Invitation
	Contributions []*Contribution
	Votes         []*Vote
}

// Clone returns a deep copy so a failed operation can be discarded.
func (s *GroupState) Clone() *GroupState {
	c := &GroupState{
		Group:         s.Group.Clone(),
		Members:       make([]*Member, len(s.Members)),
		Invitations:   make([]*Invitation, len(s.Invitations)),
		Contributions: make([]*Contribution, len(s.Contributions)),
		Votes:         make([]*Vote, len(s.Votes)),
	}
	for i, m := range s.Members {
		c.Members[i] = m.Clone()
	}
	for i, inv := range s.Invitations {
		c.Invitations[i] = inv.Clone()
	}
	for i, con := range s.Contributions {
		c.Contributions[i] = con.Clone()
	}
	for i, v := range s.Votes {
		vc := *v
		c.Votes[i] = &vc
	}
	return c
}

// Member returns the member with the given ID, or nil.
func (s *GroupState) Member(memberID string) *Member {
	for _, m := range s.Members {
		if m.ID == memberID {
			return m
		}
	}
	return nil
}

// MemberByUser returns the member backed by the given account, or nil.
func (s *GroupState) MemberByUser(userRef string) *Member {
	if userRef == "" {
		return nil
	}
	for _, m := range s.Members {
		if m.UserRef == userRef {
			return m
		}
	}
	return nil
}

// Invitation returns the invitation with the given ID, or nil.
func (s *GroupState) Invitation(invitationID string) *Invitation {
	for _, inv := range s.Invitations {
		if inv.ID == invitationID {
			return inv
		}
	}
	return nil
}
