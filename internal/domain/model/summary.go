package model

import "time"

type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// RunSummary 一次运行的汇总,在运行开始时创建,在所有退出路径上完成
type RunSummary struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	Elapsed          time.Duration
	LastPage         int
	Processed        int
	Persisted        int
	Artifact         string
	ArtifactVerified bool
	NextRunAt        time.Time
	Status           RunStatus
	Err              error
}

func NewRunSummary(runID string, startedAt time.Time, artifact string) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		StartedAt: startedAt,
		Artifact:  artifact,
		Status:    RunFailed,
	}
}

// Finish 完成汇总;只有没有致命错误且至少处理了一个成员时才算完成
func (s *RunSummary) Finish(finishedAt time.Time, state *CrawlState, runErr error) {
	s.FinishedAt = finishedAt
	s.Elapsed = finishedAt.Sub(s.StartedAt)
	s.Err = runErr
	if state != nil {
		s.LastPage = state.Page
		s.Processed = state.Count
	}
	if runErr == nil && s.Processed > 0 {
		s.Status = RunCompleted
	} else {
		s.Status = RunFailed
	}
}
