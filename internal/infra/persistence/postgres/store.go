package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/jmoiron/sqlx"
)

// 未知的在籍天数/月数只在写入时折算为0,上游仍区分"未知"和"0"
const insertMember = `
	INSERT INTO roster_members (
		run_id, page, position, sequence, name, tier, email, activity,
		joined, joined_at, value, contribution, renewal, handle, bio, location,
		invited_by, invited, tenure_days, tenure_months,
		script, artifact_path, extracted_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, COALESCE($19::integer, 0), COALESCE($20::integer, 0),
		$21, $22, $23
	)
`

const insertRun = `
	INSERT INTO roster_runs (
		run_id, total_members, persisted, last_page, started_at, finished_at,
		elapsed_seconds, artifact_path, artifact_verified, next_run_at, status, error
	) VALUES (
		:run_id, :total_members, :persisted, :last_page, :started_at, :finished_at,
		:elapsed_seconds, :artifact_path, :artifact_verified, :next_run_at, :status, :error
	)
`

// Batch 一页记录共享的来源信息
type Batch struct {
	RunID       string
	Script      string
	Artifact    string
	ExtractedAt time.Time
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema 创建所需的表,已存在时不做改动
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// InsertMembers 在一个事务中写入一页记录,任何一行失败都回滚整页
func (s *Store) InsertMembers(ctx context.Context, batch Batch, records []model.MemberRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, insertMember)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx,
			batch.RunID, rec.Page, rec.Position, rec.Sequence,
			rec.Name, rec.Tier, rec.Email, rec.Activity,
			rec.Joined, nullableTime(rec.JoinedAt), rec.Value, rec.Contribution,
			rec.Renewal, rec.Handle, rec.Bio, rec.Location,
			rec.InvitedBy, rec.Invited, nullableInt(rec.TenureDays), nullableInt(rec.TenureMonths),
			batch.Script, batch.Artifact, batch.ExtractedAt,
		); err != nil {
			return fmt.Errorf("failed to insert member %d: %w", rec.Sequence, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit members: %w", err)
	}
	return nil
}

type runRow struct {
	RunID            string    `db:"run_id"`
	TotalMembers     int       `db:"total_members"`
	Persisted        int       `db:"persisted"`
	LastPage         int       `db:"last_page"`
	StartedAt        time.Time `db:"started_at"`
	FinishedAt       time.Time `db:"finished_at"`
	ElapsedSeconds   float64   `db:"elapsed_seconds"`
	ArtifactPath     string    `db:"artifact_path"`
	ArtifactVerified bool      `db:"artifact_verified"`
	NextRunAt        time.Time `db:"next_run_at"`
	Status           string    `db:"status"`
	Error            *string   `db:"error"`
}

// InsertRun 写入一次运行的汇总
func (s *Store) InsertRun(ctx context.Context, summary *model.RunSummary) error {
	row := runRow{
		RunID:            summary.RunID,
		TotalMembers:     summary.Processed,
		Persisted:        summary.Persisted,
		LastPage:         summary.LastPage,
		StartedAt:        summary.StartedAt,
		FinishedAt:       summary.FinishedAt,
		ElapsedSeconds:   summary.Elapsed.Seconds(),
		ArtifactPath:     summary.Artifact,
		ArtifactVerified: summary.ArtifactVerified,
		NextRunAt:        summary.NextRunAt,
		Status:           string(summary.Status),
	}
	if summary.Err != nil {
		msg := summary.Err.Error()
		row.Error = &msg
	}
	if _, err := s.db.NamedExecContext(ctx, insertRun, row); err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
