package paygroup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/notify"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	snap := env.publicGroup(t, 4)
	if snap.Group.Status != models.StatusActive {
		t.Errorf("Status = %s, want active", snap.Group.Status)
	}
	if len(snap.Members) != 1 || !snap.Members[0].IsAdmin || snap.Members[0].UserRef != "alice" {
		t.Errorf("members = %+v, want alice as admin", snap.Members)
	}
	if snap.Group.CreatedBy != snap.Members[0].ID {
		t.Errorf("CreatedBy = %s, want creator member", snap.Group.CreatedBy)
	}

	past := epoch.Add(-time.Hour)
	tests := []struct {
		name string
		in   CreateGroupInput
		code apperr.Code
	}{
		{"missing name", CreateGroupInput{MaxCapacity: 2}, apperr.CodeValidation},
		{"capacity below two", CreateGroupInput{Name: "x", MaxCapacity: 1, ContributionType: models.ContributionFixed, Frequency: models.FrequencyOnce, Visibility: models.VisibilityPublic}, apperr.CodeValidation},
		{"negative target", CreateGroupInput{Name: "x", MaxCapacity: 2, TargetAmount: decimal.NewFromInt(-1), ContributionType: models.ContributionFixed, Frequency: models.FrequencyOnce, Visibility: models.VisibilityPublic}, apperr.CodeValidation},
		{"past deadline", CreateGroupInput{Name: "x", MaxCapacity: 2, Deadline: &past, ContributionType: models.ContributionFixed, Frequency: models.FrequencyOnce, Visibility: models.VisibilityPublic}, apperr.CodeInvalidDeadline},
		{"anonymous creator", CreateGroupInput{Name: "x", MaxCapacity: 2, CreatorAnonymous: true, ContributionType: models.ContributionFixed, Frequency: models.FrequencyOnce, Visibility: models.VisibilityPublic}, apperr.CodeAnonymousNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateGroup(ctx, "alice", tt.in)
			wantCode(t, err, tt.code)
		})
	}
}

func TestJoinCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 2)

	if _, err := env.svc.Join(ctx, "bob", g.Group.ID, false); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	_, err := env.svc.Join(ctx, "carol", g.Group.ID, false)
	wantCode(t, err, apperr.CodeCapacityExceeded)

	_, err = env.svc.Join(ctx, "bob", g.Group.ID, false)
	wantCode(t, err, apperr.CodeAlreadyMember)
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 5)

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := string(rune('a'+i)) + "-user"
			_, err := env.svc.Join(ctx, user, g.Group.ID, false)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if apperr.CodeOf(err) != apperr.CodeCapacityExceeded {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 4 {
		t.Errorf("succeeded = %d, want 4", succeeded)
	}
	loaded, err := env.store.LoadGroup(ctx, g.Group.ID)
	if err != nil {
		t.Fatalf("LoadGroup failed: %v", err)
	}
	if len(loaded.Members) != 5 {
		t.Errorf("members = %d, want 5", len(loaded.Members))
	}
	if env.svc.locks.size() != 0 {
		t.Errorf("lock table holds %d entries after all calls returned", env.svc.locks.size())
	}
}

func TestPrivateGroupAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4, func(in *CreateGroupInput) { in.Visibility = models.VisibilityPrivate })

	_, err := env.svc.GetGroup(ctx, "bob", g.Group.ID)
	wantCode(t, err, apperr.CodeUnauthorized)

	_, err = env.svc.Join(ctx, "bob", g.Group.ID, false)
	wantCode(t, err, apperr.CodeUnauthorized)

	_, err = env.svc.GetGroup(ctx, "alice", "missing")
	wantCode(t, err, apperr.CodeNotFound)

	groups, err := env.svc.ListGroups(ctx, "bob")
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("bob sees %d groups, want 0", len(groups))
	}
}

func TestAnonymousMembersAreRedacted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4, func(in *CreateGroupInput) { in.AllowAnonymous = true })

	if _, err := env.svc.Join(ctx, "bob", g.Group.ID, true); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	seenByAlice, err := env.svc.GetGroup(ctx, "alice", g.Group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	for _, m := range seenByAlice.Members {
		if m.IsAnonymous && m.UserRef != "" {
			t.Errorf("anonymous member exposed as %q", m.UserRef)
		}
	}

	seenByBob, _ := env.svc.GetGroup(ctx, "bob", g.Group.ID)
	memberID(t, seenByBob, "bob")

	noAnon := env.publicGroup(t, 4)
	_, err = env.svc.Join(ctx, "bob", noAnon.Group.ID, true)
	wantCode(t, err, apperr.CodeAnonymousNotAllowed)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4)
	env.svc.Join(ctx, "bob", g.Group.ID, false)
	env.svc.Join(ctx, "carol", g.Group.ID, false)

	two := 2
	_, err := env.svc.UpdateSettings(ctx, "alice", g.Group.ID, SettingsInput{MaxCapacity: &two})
	wantCode(t, err, apperr.CodeValidation)

	name := "Renamed"
	_, err = env.svc.UpdateSettings(ctx, "bob", g.Group.ID, SettingsInput{Name: &name})
	wantCode(t, err, apperr.CodeUnauthorized)

	yes := true
	snap, err := env.svc.UpdateSettings(ctx, "alice", g.Group.ID, SettingsInput{Name: &name, AllowAnonymous: &yes, RequiresApproval: &yes})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if snap.Group.Name != "Renamed" || !snap.Group.AllowAnonymous || !snap.Group.RequiresApproval {
		t.Errorf("settings not applied: %+v", snap.Group)
	}
	if snap.Group.Version != 3 {
		t.Errorf("Version = %d, want 3", snap.Group.Version)
	}

	_, err = env.svc.Join(ctx, "dave", g.Group.ID, false)
	wantCode(t, err, apperr.CodeUnauthorized)
}

func TestDisallowAnonymousWithAnonymousMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4, func(in *CreateGroupInput) { in.AllowAnonymous = true })
	id := g.Group.ID
	if _, err := env.svc.Join(ctx, "bob", id, true); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	no := false
	_, err := env.svc.UpdateSettings(ctx, "alice", id, SettingsInput{AllowAnonymous: &no})
	wantCode(t, err, apperr.CodeValidation)
	loaded, _ := env.store.LoadGroup(ctx, id)
	if !loaded.Group.AllowAnonymous {
		t.Error("rejected update changed AllowAnonymous")
	}

	if _, err := env.svc.Leave(ctx, "bob", id); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	snap, err := env.svc.UpdateSettings(ctx, "alice", id, SettingsInput{AllowAnonymous: &no})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if snap.Group.AllowAnonymous {
		t.Error("AllowAnonymous still set")
	}
}

func TestLeaveAndAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4)
	snap, _ := env.svc.Join(ctx, "bob", g.Group.ID, false)
	bob := memberID(t, snap, "bob")
	alice := memberID(t, snap, "alice")

	_, err := env.svc.Leave(ctx, "alice", g.Group.ID)
	wantCode(t, err, apperr.CodeValidation)

	_, err = env.svc.Promote(ctx, "bob", g.Group.ID, bob)
	wantCode(t, err, apperr.CodeUnauthorized)

	_, err = env.svc.Demote(ctx, "alice", g.Group.ID, alice)
	wantCode(t, err, apperr.CodeValidation)

	if _, err := env.svc.Promote(ctx, "alice", g.Group.ID, bob); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	snap, err = env.svc.Leave(ctx, "alice", g.Group.ID)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if len(snap.Members) != 1 || snap.Members[0].UserRef != "bob" {
		t.Errorf("members = %+v, want bob only", snap.Members)
	}

	_, err = env.svc.Leave(ctx, "alice", g.Group.ID)
	wantCode(t, err, apperr.CodeUnauthorized)
}

func TestInviteExternalRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4, func(in *CreateGroupInput) { in.Visibility = models.VisibilityPrivate })

	res, err := env.svc.Invite(ctx, "alice", g.Group.ID, "stranger@x.com", false)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if res.ConfirmationRequired == nil || res.Invitation != nil {
		t.Fatalf("expected confirmation request, got %+v", res)
	}
	loaded, _ := env.store.LoadGroup(ctx, g.Group.ID)
	if len(loaded.Invitations) != 0 || loaded.Group.Version != g.Group.Version {
		t.Errorf("unconfirmed external invite changed state: %d invitations, version %d", len(loaded.Invitations), loaded.Group.Version)
	}
	if env.events.count(notify.KindInvitationCreated) != 0 {
		t.Error("unconfirmed external invite sent a notification")
	}

	res, err = env.svc.Invite(ctx, "alice", g.Group.ID, "stranger@x.com", true)
	if err != nil {
		t.Fatalf("forced Invite failed: %v", err)
	}
	inv := res.Invitation
	if inv == nil || inv.Status != models.InvitationPending || !inv.IsExternal {
		t.Fatalf("expected pending external invitation, got %+v", inv)
	}
	if env.events.count(notify.KindInvitationCreated) != 1 {
		t.Error("expected one invitation.created event")
	}

	_, err = env.svc.Invite(ctx, "alice", g.Group.ID, "Stranger@X.com", true)
	wantCode(t, err, apperr.CodeDuplicatePending)

	// The stranger signs up and accepts.
	env.identity.add("stranger", "stranger@x.com")
	mine, err := env.svc.ListMyInvitations(ctx, "stranger")
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMyInvitations = %v, %v", mine, err)
	}

	_, err = env.svc.RespondInvitation(ctx, "bob", inv.ID, true, false)
	wantCode(t, err, apperr.CodeUnauthorized)

	snap, err := env.svc.RespondInvitation(ctx, "stranger", inv.ID, true, false)
	if err != nil {
		t.Fatalf("RespondInvitation failed: %v", err)
	}
	memberID(t, snap, "stranger")
	if env.events.count(notify.KindInvitationResponded) != 1 {
		t.Error("expected one invitation.responded event")
	}

	_, err = env.svc.RespondInvitation(ctx, "stranger", inv.ID, true, false)
	wantCode(t, err, apperr.CodeInvitationNotPending)
}

func TestInviteChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 2)
	env.svc.Join(ctx, "bob", g.Group.ID, false)

	_, err := env.svc.Invite(ctx, "alice", g.Group.ID, "carol@example.com", false)
	wantCode(t, err, apperr.CodeCapacityExceeded)

	_, err = env.svc.Invite(ctx, "carol", g.Group.ID, "dave@example.com", false)
	wantCode(t, err, apperr.CodeUnauthorized)

	_, err = env.svc.Invite(ctx, "alice", g.Group.ID, "not-an-email", true)
	wantCode(t, err, apperr.CodeValidation)

	env.identity.err = errors.New("directory down")
	_, err = env.svc.Invite(ctx, "alice", g.Group.ID, "carol@example.com", false)
	wantCode(t, err, apperr.CodeDependencyUnavailable)
}

func TestInvitationDeclineAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4)

	res, err := env.svc.Invite(ctx, "alice", g.Group.ID, "bob@example.com", false)
	if err != nil || res.Invitation == nil || res.Invitation.IsExternal {
		t.Fatalf("Invite = %+v, %v", res, err)
	}
	snap, err := env.svc.RespondInvitation(ctx, "bob", res.Invitation.ID, false, false)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if len(snap.Members) != 1 {
		t.Errorf("decline added a member")
	}

	res, _ = env.svc.Invite(ctx, "alice", g.Group.ID, "carol@example.com", false)
	if _, err := env.svc.RevokeInvitation(ctx, "alice", res.Invitation.ID); err != nil {
		t.Fatalf("RevokeInvitation failed: %v", err)
	}
	_, err = env.svc.RespondInvitation(ctx, "carol", res.Invitation.ID, true, false)
	wantCode(t, err, apperr.CodeInvitationNotPending)

	_, err = env.svc.RevokeInvitation(ctx, "alice", "missing")
	wantCode(t, err, apperr.CodeNotFound)
}

func TestInvitationExpiry(t *testing.T) {
	env := newTestEnv(t, withInviteTTL(time.Hour))
	ctx := context.Background()
	g := env.publicGroup(t, 4)

	res, err := env.svc.Invite(ctx, "alice", g.Group.ID, "bob@example.com", false)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	env.clock.advance(2 * time.Hour)

	mine, _ := env.svc.ListMyInvitations(ctx, "bob")
	if len(mine) != 0 {
		t.Errorf("expired invitation still listed: %+v", mine)
	}

	_, err = env.svc.RespondInvitation(ctx, "bob", res.Invitation.ID, true, false)
	wantCode(t, err, apperr.CodeInvitationNotPending)

	loaded, _ := env.store.LoadGroup(ctx, g.Group.ID)
	if loaded.Invitations[0].Status != models.InvitationExpired {
		t.Errorf("status = %s, want expired persisted", loaded.Invitations[0].Status)
	}

	// A new invitation can be sent once the old one expired.
	if _, err := env.svc.Invite(ctx, "alice", g.Group.ID, "bob@example.com", false); err != nil {
		t.Errorf("re-invite failed: %v", err)
	}
}

func TestMaturityAndTermination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 3)
	id := g.Group.ID
	env.svc.Join(ctx, "bob", id, false)
	env.svc.Join(ctx, "carol", id, false)

	_, err := env.svc.RequestTermination(ctx, "alice", id)
	wantCode(t, err, apperr.CodeGroupNotMatured)

	env.clock.advance(48 * time.Hour)
	snap, err := env.svc.GetGroup(ctx, "alice", id)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if snap.Group.Status != models.StatusMatured || snap.Transition == "" {
		t.Fatalf("Status = %s (%q), want matured", snap.Group.Status, snap.Transition)
	}
	loaded, _ := env.store.LoadGroup(ctx, id)
	if loaded.Group.Status != models.StatusMatured {
		t.Errorf("maturity not persisted: %s", loaded.Group.Status)
	}
	if env.events.count(notify.KindGroupMatured) != 1 {
		t.Errorf("group.matured events = %d, want 1", env.events.count(notify.KindGroupMatured))
	}

	// Reading again days later reports the same status.
	env.clock.advance(72 * time.Hour)
	snap, _ = env.svc.GetGroup(ctx, "bob", id)
	if snap.Group.Status != models.StatusMatured {
		t.Errorf("Status = %s after idle days, want matured", snap.Group.Status)
	}

	_, err = env.svc.Leave(ctx, "carol", id)
	wantCode(t, err, apperr.CodeGroupNotActive)

	env.svc.RequestTermination(ctx, "alice", id)
	snap, err = env.svc.CastVote(ctx, "bob", id, true)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if snap.Group.Status != models.StatusMatured || snap.Votes.Agreed != 2 || snap.Votes.Total != 3 {
		t.Errorf("after two votes: status %s, votes %+v", snap.Group.Status, snap.Votes)
	}

	snap, err = env.svc.CastVote(ctx, "carol", id, true)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if snap.Group.Status != models.StatusTerminated || snap.Group.TerminatedAt == nil {
		t.Fatalf("Status = %s, want terminated", snap.Group.Status)
	}
	if env.events.count(notify.KindGroupTerminated) != 3 {
		t.Errorf("group.terminated events = %d, want one per member", env.events.count(notify.KindGroupTerminated))
	}

	_, err = env.svc.Contribute(ctx, "alice", id, decimal.NewFromInt(5), models.MethodWallet, "")
	wantCode(t, err, apperr.CodeGroupTerminated)
	_, err = env.svc.ExtendDeadline(ctx, "alice", id, env.clock.now().Add(time.Hour))
	wantCode(t, err, apperr.CodeGroupTerminated)
	_, err = env.svc.CastVote(ctx, "alice", id, false)
	wantCode(t, err, apperr.CodeGroupTerminated)
}

func TestThresholdTermination(t *testing.T) {
	env := newTestEnv(t, withThreshold("0.5"))
	ctx := context.Background()
	g := env.publicGroup(t, 3)
	env.svc.Join(ctx, "bob", g.Group.ID, false)
	env.svc.Join(ctx, "carol", g.Group.ID, false)
	env.clock.advance(48 * time.Hour)

	snap, _ := env.svc.CastVote(ctx, "alice", g.Group.ID, true)
	if snap.Votes.Required != 2 || snap.Group.Status != models.StatusMatured {
		t.Errorf("after one vote: %+v, %s", snap.Votes, snap.Group.Status)
	}
	snap, _ = env.svc.CastVote(ctx, "bob", g.Group.ID, true)
	if snap.Group.Status != models.StatusTerminated {
		t.Errorf("Status = %s, want terminated at majority", snap.Group.Status)
	}
}

func TestExtendDeadlineResetsVotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 3)
	id := g.Group.ID
	env.svc.Join(ctx, "bob", id, false)
	env.clock.advance(48 * time.Hour)

	snap, err := env.svc.CastVote(ctx, "alice", id, true)
	if err != nil || snap.Votes.Agreed != 1 {
		t.Fatalf("CastVote = %+v, %v", snap, err)
	}

	_, err = env.svc.ExtendDeadline(ctx, "bob", id, env.clock.now().Add(24*time.Hour))
	wantCode(t, err, apperr.CodeUnauthorized)

	_, err = env.svc.ExtendDeadline(ctx, "alice", id, env.clock.now())
	wantCode(t, err, apperr.CodeInvalidDeadline)
	loaded, _ := env.store.LoadGroup(ctx, id)
	if loaded.Group.Status != models.StatusMatured || len(loaded.Votes) != 1 {
		t.Errorf("rejected extension changed state: %s, %d votes", loaded.Group.Status, len(loaded.Votes))
	}

	snap, err = env.svc.ExtendDeadline(ctx, "alice", id, env.clock.now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ExtendDeadline failed: %v", err)
	}
	if snap.Group.Status != models.StatusActive || snap.Votes.Agreed != 0 {
		t.Errorf("after extension: %s, %+v", snap.Group.Status, snap.Votes)
	}
	loaded, _ = env.store.LoadGroup(ctx, id)
	if len(loaded.Votes) != 0 || loaded.Group.MaturedAt != nil {
		t.Errorf("votes = %d, MaturedAt = %v after extension", len(loaded.Votes), loaded.Group.MaturedAt)
	}
}

func TestDeadlinesKeepSecondPrecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 3, func(in *CreateGroupInput) {
		d := epoch.Add(24*time.Hour + 1500*time.Millisecond)
		in.Deadline = &d
	})
	id := g.Group.ID
	if want := epoch.Add(24*time.Hour + time.Second); !g.Group.Deadline.Equal(want) {
		t.Errorf("created deadline = %v, want %v", g.Group.Deadline, want)
	}

	env.clock.advance(48 * time.Hour)
	now := env.clock.now()
	_, err := env.svc.ExtendDeadline(ctx, "alice", id, now.Add(500*time.Millisecond))
	wantCode(t, err, apperr.CodeInvalidDeadline)

	snap, err := env.svc.ExtendDeadline(ctx, "alice", id, now.Add(1500*time.Millisecond))
	if err != nil {
		t.Fatalf("ExtendDeadline failed: %v", err)
	}
	if snap.Group.Status != models.StatusActive || !snap.Group.Deadline.Equal(now.Add(time.Second)) {
		t.Fatalf("after extension: %s, deadline %v", snap.Group.Status, snap.Group.Deadline)
	}
	reread, err := env.svc.GetGroup(ctx, "bob", id)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if reread.Group.Status != snap.Group.Status || !reread.Group.Deadline.Equal(*snap.Group.Deadline) {
		t.Errorf("re-read %s %v, extension returned %s %v",
			reread.Group.Status, reread.Group.Deadline, snap.Group.Status, snap.Group.Deadline)
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 3)

	snap, err := env.svc.Refresh(ctx, g.Group.ID)
	if err != nil || snap.Group.Status != models.StatusActive {
		t.Fatalf("Refresh = %+v, %v", snap, err)
	}
	env.clock.advance(25 * time.Hour)
	snap, err = env.svc.Refresh(ctx, g.Group.ID)
	if err != nil || snap.Group.Status != models.StatusMatured {
		t.Fatalf("Refresh after deadline = %+v, %v", snap, err)
	}
	if snap.Invitations != nil {
		t.Error("refresh without a viewer must not expose invitations")
	}
}

func TestConflictRetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 4)

	env.flaky.conflicts = 2
	if _, err := env.svc.Join(ctx, "bob", g.Group.ID, false); err != nil {
		t.Fatalf("Join with transient conflicts failed: %v", err)
	}

	env.flaky.conflicts = maxAttempts
	_, err := env.svc.Join(ctx, "carol", g.Group.ID, false)
	wantCode(t, err, apperr.CodeConflict)

	loaded, _ := env.store.LoadGroup(ctx, g.Group.ID)
	if len(loaded.Members) != 2 {
		t.Errorf("members = %d, want 2", len(loaded.Members))
	}
}

func TestListGroupsCarriesBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.publicGroup(t, 3)
	if _, err := env.svc.Contribute(ctx, "alice", g.Group.ID, decimal.NewFromInt(40), models.MethodWallet, ""); err != nil {
		t.Fatalf("Contribute failed: %v", err)
	}
	env.clock.advance(48 * time.Hour)

	groups, err := env.svc.ListGroups(ctx, "bob")
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("bob sees %d groups, want 1", len(groups))
	}
	if !groups[0].CurrentAmount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("CurrentAmount = %s, want 40", groups[0].CurrentAmount)
	}
	if groups[0].Group.Status != models.StatusMatured {
		t.Errorf("Status = %s, want matured", groups[0].Group.Status)
	}
}
