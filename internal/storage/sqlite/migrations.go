package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns are TEXT holding exact decimal strings.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    target_amount TEXT NOT NULL DEFAULT '0',
    contribution_type TEXT NOT NULL,
    frequency TEXT NOT NULL,
    max_capacity INTEGER NOT NULL CHECK (max_capacity >= 2),
    visibility TEXT NOT NULL,
    requires_approval INTEGER NOT NULL DEFAULT 0,
    allow_anonymous INTEGER NOT NULL DEFAULT 0,
    deadline INTEGER,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    matured_at INTEGER,
    terminated_at INTEGER,
    version INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_ref TEXT NOT NULL,
    is_anonymous INTEGER NOT NULL DEFAULT 0,
    is_admin INTEGER NOT NULL DEFAULT 0,
    joined_at INTEGER NOT NULL,
    UNIQUE (group_id, user_ref),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS invitations (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    invitee_email TEXT NOT NULL,
    invited_by TEXT NOT NULL,
    status TEXT NOT NULL,
    is_external INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    responded_at INTEGER,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    method TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    contributed_at INTEGER NOT NULL,
    external_reference TEXT,
    confirmed INTEGER NOT NULL DEFAULT 0,
    confirmed_at INTEGER,
    reversed INTEGER NOT NULL DEFAULT 0,
    reversed_at INTEGER,
    reversal_reason TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS votes (
    group_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    agreed INTEGER NOT NULL,
    cast_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, member_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_members_group_id ON members(group_id);
CREATE INDEX IF NOT EXISTS idx_members_user_ref ON members(user_ref);
CREATE INDEX IF NOT EXISTS idx_invitations_group_id ON invitations(group_id);
CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(invitee_email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_one_pending
    ON invitations(group_id, invitee_email) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_contributions_group_id ON contributions(group_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contributions_reference
    ON contributions(external_reference) WHERE external_reference IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_groups_status_deadline ON groups(status, deadline);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
