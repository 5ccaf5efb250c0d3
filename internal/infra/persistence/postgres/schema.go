package postgres

const schema = `
CREATE TABLE IF NOT EXISTS roster_members (
	id            BIGSERIAL PRIMARY KEY,
	run_id        TEXT        NOT NULL,
	page          INTEGER     NOT NULL,
	position      INTEGER     NOT NULL,
	sequence      INTEGER     NOT NULL,
	name          TEXT,
	tier          TEXT,
	email         TEXT,
	activity      TEXT,
	joined        TEXT,
	joined_at     TIMESTAMPTZ,
	value         TEXT,
	contribution  TEXT,
	renewal       TEXT,
	handle        TEXT,
	bio           TEXT,
	location      TEXT,
	invited_by    TEXT,
	invited       TEXT,
	tenure_days   INTEGER     NOT NULL,
	tenure_months INTEGER     NOT NULL,
	script        TEXT,
	artifact_path TEXT,
	extracted_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_roster_members_run_id ON roster_members (run_id);

CREATE TABLE IF NOT EXISTS roster_runs (
	run_id            TEXT PRIMARY KEY,
	total_members     INTEGER          NOT NULL,
	persisted         INTEGER          NOT NULL,
	last_page         INTEGER          NOT NULL,
	started_at        TIMESTAMPTZ      NOT NULL,
	finished_at       TIMESTAMPTZ      NOT NULL,
	elapsed_seconds   DOUBLE PRECISION NOT NULL,
	artifact_path     TEXT,
	artifact_verified BOOLEAN          NOT NULL,
	next_run_at       TIMESTAMPTZ      NOT NULL,
	status            TEXT             NOT NULL,
	error             TEXT
);
`
