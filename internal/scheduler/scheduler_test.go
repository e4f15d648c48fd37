package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

type MockSessionReaper struct {
	mock.Mock
}

func (m *MockSessionReaper) Reap(idle time.Duration) int {
	args := m.Called(idle)
	return args.Int(0)
}

func (m *MockSessionReaper) Len() int {
	args := m.Called()
	return args.Int(0)
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@every 1m", &countingJob{}))
	require.NoError(t, s.AddJob("0 */5 * * * *", &countingJob{}))
	assert.Equal(t, 2, s.Entries())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
	assert.Equal(t, 2, s.Entries())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("* * * * * *", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)

	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduler_FailingJobDoesNotPanic(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	assert.NotPanics(t, func() { s.run(job) })
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestSessionReaperJob_Run(t *testing.T) {
	sessions := new(MockSessionReaper)
	sessions.On("Reap", 30*time.Minute).Return(2)
	sessions.On("Len").Return(5)

	job := NewSessionReaperJob(sessions, 30*time.Minute, zerolog.Nop())

	assert.Equal(t, "session_reaper", job.Name())
	require.NoError(t, job.Run())
	sessions.AssertExpectations(t)
}

func TestSessionReaperJob_NothingToReap(t *testing.T) {
	sessions := new(MockSessionReaper)
	sessions.On("Reap", time.Minute).Return(0)

	job := NewSessionReaperJob(sessions, time.Minute, zerolog.Nop())

	require.NoError(t, job.Run())
	sessions.AssertNotCalled(t, "Len")
}

func TestSessionReaperJob_InvalidTimeout(t *testing.T) {
	sessions := new(MockSessionReaper)
	job := NewSessionReaperJob(sessions, 0, zerolog.Nop())

	assert.Error(t, job.Run())
	sessions.AssertNotCalled(t, "Reap", mock.Anything)
}
