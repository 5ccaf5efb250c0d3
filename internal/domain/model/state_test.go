package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCrawlState_NextSequence(t *testing.T) {
	s := &CrawlState{Target: 2}

	assert.False(t, s.TargetReached())
	assert.Equal(t, 1, s.NextSequence())
	assert.Equal(t, 2, s.NextSequence())
	assert.True(t, s.TargetReached())
}

func TestCrawlState_ZeroTargetNeverReached(t *testing.T) {
	s := &CrawlState{}
	for range 100 {
		s.NextSequence()
	}
	assert.False(t, s.TargetReached())
}

func TestRunSummary_Finish(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	tests := []struct {
		name   string
		state  *CrawlState
		err    error
		status RunStatus
	}{
		{"completed", &CrawlState{Page: 3, Count: 55}, nil, RunCompleted},
		{"nothing processed", &CrawlState{Page: 1}, nil, RunFailed},
		{"fatal error", &CrawlState{Page: 2, Count: 20}, errors.New("boom"), RunFailed},
		{"no state", nil, errors.New("boom"), RunFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRunSummary("run-1", start, "/tmp/out.csv")
			assert.Equal(t, RunFailed, s.Status)

			s.Finish(end, tt.state, tt.err)

			assert.Equal(t, tt.status, s.Status)
			assert.Equal(t, 90*time.Second, s.Elapsed)
			assert.Equal(t, tt.err, s.Err)
			if tt.state != nil {
				assert.Equal(t, tt.state.Page, s.LastPage)
				assert.Equal(t, tt.state.Count, s.Processed)
			}
		})
	}
}
