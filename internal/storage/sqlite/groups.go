package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/storage"
)

const groupColumns = `id, name, description, target_amount, contribution_type, frequency, max_capacity,
	visibility, requires_approval, allow_anonymous, deadline, status, created_at, created_by,
	matured_at, terminated_at, version`

// CreateGroup persists a new group aggregate.
func (s *SQLiteStore) CreateGroup(ctx context.Context, state *models.GroupState) error {
	g := state.Group

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.TargetAmount, string(g.ContributionType), string(g.Frequency),
		g.MaxCapacity, string(g.Visibility), g.RequiresApproval, g.AllowAnonymous, nullableUnix(g.Deadline),
		string(g.Status), g.CreatedAt.Unix(), g.CreatedBy, nullableUnix(g.MaturedAt),
		nullableUnix(g.TerminatedAt), g.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := writeChildren(ctx, tx, state); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveGroup writes the aggregate with an optimistic version check.
func (s *SQLiteStore) SaveGroup(ctx context.Context, state *models.GroupState) error {
	g := state.Group

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ?, target_amount = ?, contribution_type = ?,
			frequency = ?, max_capacity = ?, visibility = ?, requires_approval = ?, allow_anonymous = ?,
			deadline = ?, status = ?, matured_at = ?, terminated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		g.Name, g.Description, g.TargetAmount, string(g.ContributionType), string(g.Frequency),
		g.MaxCapacity, string(g.Visibility), g.RequiresApproval, g.AllowAnonymous, nullableUnix(g.Deadline),
		string(g.Status), nullableUnix(g.MaturedAt), nullableUnix(g.TerminatedAt),
		g.ID, g.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", g.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("group %s: %w", g.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("group %s version %d: %w", g.ID, g.Version, storage.ErrConflict)
	}

	// Members and votes are small and fully owned; replace them wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE group_id = ?", g.ID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE group_id = ?", g.ID); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}

	if err := writeChildren(ctx, tx, state); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	g.Version++
	return nil
}

// writeChildren inserts members and votes and upserts invitations and contributions.
// Invitations are written in slice order so an expiring invitation is updated
// before its replacement is inserted.
func writeChildren(ctx context.Context, tx *sql.Tx, state *models.GroupState) error {
	for _, m := range state.Members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, group_id, user_ref, is_anonymous, is_admin, joined_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.GroupID, m.UserRef, m.IsAnonymous, m.IsAdmin, m.JoinedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	for _, inv := range state.Invitations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invitations (id, group_id, invitee_email, invited_by, status, is_external, created_at, responded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET status = excluded.status, responded_at = excluded.responded_at`,
			inv.ID, inv.GroupID, inv.InviteeEmail, inv.InvitedBy, string(inv.Status), inv.IsExternal,
			inv.CreatedAt.Unix(), nullableUnix(inv.RespondedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert invitation: %w", err)
		}
	}

	for _, c := range state.Contributions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (id, group_id, member_id, amount, method, notes, contributed_at,
				external_reference, confirmed, confirmed_at, reversed, reversed_at, reversal_reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET confirmed = excluded.confirmed, confirmed_at = excluded.confirmed_at,
				reversed = excluded.reversed, reversed_at = excluded.reversed_at,
				reversal_reason = excluded.reversal_reason`,
			c.ID, c.GroupID, c.MemberID, c.Amount, string(c.Method), c.Notes, c.ContributedAt.Unix(),
			nullableString(c.ExternalReference), c.Confirmed, nullableUnix(c.ConfirmedAt),
			c.Reversed, nullableUnix(c.ReversedAt), c.ReversalReason,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert contribution: %w", err)
		}
	}

	for _, v := range state.Votes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO votes (group_id, member_id, agreed, cast_at) VALUES (?, ?, ?, ?)",
			v.GroupID, v.MemberID, v.Agreed, v.CastAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}
	return nil
}

// LoadGroup retrieves a group aggregate by ID.
// Each child query is drained before the next starts; the pool has one connection.
func (s *SQLiteStore) LoadGroup(ctx context.Context, groupID string) (*models.GroupState, error) {
	g, err := scanGroup(s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, groupID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	state := &models.GroupState{Group: g}

	if state.Members, err = s.loadMembers(ctx, groupID); err != nil {
		return nil, err
	}
	if state.Invitations, err = s.queryInvitations(ctx,
		`SELECT id, group_id, invitee_email, invited_by, status, is_external, created_at, responded_at
		 FROM invitations WHERE group_id = ? ORDER BY created_at, rowid`, groupID); err != nil {
		return nil, err
	}
	if state.Contributions, err = s.loadContributions(ctx, groupID); err != nil {
		return nil, err
	}
	if state.Votes, err = s.loadVotes(ctx, groupID); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, user_ref, is_anonymous, is_admin, joined_at
		 FROM members WHERE group_id = ? ORDER BY joined_at, rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		var joinedAt int64
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserRef, &m.IsAnonymous, &m.IsAdmin, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.JoinedAt = fromUnix(joinedAt)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) queryInvitations(ctx context.Context, query string, args ...interface{}) ([]*models.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		inv := &models.Invitation{}
		var status string
		var createdAt int64
		var respondedAt sql.NullInt64
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.InviteeEmail, &inv.InvitedBy, &status,
			&inv.IsExternal, &createdAt, &respondedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.Status = models.InvitationStatus(status)
		inv.CreatedAt = fromUnix(createdAt)
		inv.RespondedAt = fromNullableUnix(respondedAt)
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}
	return invitations, nil
}

func (s *SQLiteStore) loadContributions(ctx context.Context, groupID string) ([]*models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, member_id, amount, method, notes, contributed_at, external_reference,
			confirmed, confirmed_at, reversed, reversed_at, reversal_reason
		 FROM contributions WHERE group_id = ? ORDER BY contributed_at, rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c := &models.Contribution{}
		var method string
		var contributedAt int64
		var ref sql.NullString
		var confirmedAt, reversedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.GroupID, &c.MemberID, &c.Amount, &method, &c.Notes, &contributedAt,
			&ref, &c.Confirmed, &confirmedAt, &c.Reversed, &reversedAt, &c.ReversalReason); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Method = models.PaymentMethod(method)
		c.ContributedAt = fromUnix(contributedAt)
		if ref.Valid {
			c.ExternalReference = ref.String
		}
		c.ConfirmedAt = fromNullableUnix(confirmedAt)
		c.ReversedAt = fromNullableUnix(reversedAt)
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

func (s *SQLiteStore) loadVotes(ctx context.Context, groupID string) ([]*models.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id, member_id, agreed, cast_at FROM votes WHERE group_id = ? ORDER BY cast_at", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		v := &models.Vote{}
		var castAt int64
		if err := rows.Scan(&v.GroupID, &v.MemberID, &v.Agreed, &castAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.CastAt = fromUnix(castAt)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}

// ListGroupsForUser returns public groups plus groups the user is a member of.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups
		 WHERE visibility = ? OR id IN (SELECT group_id FROM members WHERE user_ref = ?)
		 ORDER BY created_at DESC`,
		string(models.VisibilityPublic), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// ListDueForMaturity returns active groups whose deadline has passed.
func (s *SQLiteStore) ListDueForMaturity(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM groups WHERE status = ? AND deadline IS NOT NULL AND deadline <= ?",
		string(models.StatusActive), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due groups: %w", err)
	}
	return ids, nil
}

// ListPendingInvitations returns pending invitations addressed to email, newest first.
func (s *SQLiteStore) ListPendingInvitations(ctx context.Context, email string) ([]*models.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT id, group_id, invitee_email, invited_by, status, is_external, created_at, responded_at
		 FROM invitations WHERE invitee_email = ? AND status = ? ORDER BY created_at DESC`,
		models.NormalizeEmail(email), string(models.InvitationPending),
	)
}

// FindGroupByReference resolves the group owning a contribution's external reference.
func (s *SQLiteStore) FindGroupByReference(ctx context.Context, ref string) (string, error) {
	return s.findGroup(ctx, "SELECT group_id FROM contributions WHERE external_reference = ?", ref)
}

// FindGroupByInvitation resolves the group owning an invitation.
func (s *SQLiteStore) FindGroupByInvitation(ctx context.Context, invitationID string) (string, error) {
	return s.findGroup(ctx, "SELECT group_id FROM invitations WHERE id = ?", invitationID)
}

// FindGroupByContribution resolves the group owning a contribution.
func (s *SQLiteStore) FindGroupByContribution(ctx context.Context, contributionID string) (string, error) {
	return s.findGroup(ctx, "SELECT group_id FROM contributions WHERE id = ?", contributionID)
}

func (s *SQLiteStore) findGroup(ctx context.Context, query, key string) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&groupID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%q: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve group: %w", err)
	}
	return groupID, nil
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	var contributionType, frequency, visibility, status string
	var createdAt int64
	var deadline, maturedAt, terminatedAt sql.NullInt64
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.TargetAmount, &contributionType, &frequency,
		&g.MaxCapacity, &visibility, &g.RequiresApproval, &g.AllowAnonymous, &deadline, &status,
		&createdAt, &g.CreatedBy, &maturedAt, &terminatedAt, &g.Version)
	if err != nil {
		return nil, err
	}
	g.ContributionType = models.ContributionType(contributionType)
	g.Frequency = models.Frequency(frequency)
	g.Visibility = models.Visibility(visibility)
	g.Status = models.GroupStatus(status)
	g.CreatedAt = fromUnix(createdAt)
	g.Deadline = fromNullableUnix(deadline)
	g.MaturedAt = fromNullableUnix(maturedAt)
	g.TerminatedAt = fromNullableUnix(terminatedAt)
	return g, nil
}
