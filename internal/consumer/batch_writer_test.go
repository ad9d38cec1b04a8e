package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockEventRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventRepository) FetchEvents(ctx context.Context, query repository.EventQuery) ([]domain.RawEvent, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawEvent), args.Error(1)
}

func (m *MockEventRepository) FetchSignalEvents(ctx context.Context, signalID string) ([]domain.RawEvent, error) {
	args := m.Called(ctx, signalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawEvent), args.Error(1)
}

// settlements records how each envelope was settled
type settlements struct {
	mu     sync.Mutex
	acked  []string
	nacked []string
}

func (s *settlements) envelope(eventID string) *Envelope {
	return NewEnvelope(testRawEvent(eventID),
		func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.acked = append(s.acked, eventID)
			return nil
		},
		func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.nacked = append(s.nacked, eventID)
			return nil
		})
}

func (s *settlements) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.acked), len(s.nacked)
}

func eventIDs(events []*domain.RawEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.EventID
	}
	return ids
}

func runWriter(t *testing.T, w *BatchWriter, in chan *Envelope) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx, in)
		close(done)
	}()
	return cancel, done
}

func TestBatchWriter_Start_FlushesOnSize(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(events []*domain.RawEvent) bool {
		return assert.ObjectsAreEqual([]string{"e1", "e2", "e3"}, eventIDs(events))
	})).Return(3, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 3)
	cancel, done := runWriter(t, writer, in)
	defer cancel()

	for _, id := range []string{"e1", "e2", "e3"} {
		in <- s.envelope(id)
	}

	require.Eventually(t, func() bool {
		acked, _ := s.counts()
		return acked == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_FlushesOnTimeout(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(2, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 100, FlushTimeout: 20 * time.Millisecond}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 2)
	cancel, done := runWriter(t, writer, in)

	in <- s.envelope("e1")
	in <- s.envelope("e2")

	require.Eventually(t, func() bool {
		acked, _ := s.counts()
		return acked == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	mockRepo.AssertNumberOfCalls(t, "InsertBatch", 1)
}

func TestBatchWriter_Start_InsertFailureNacksBatch(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(0, errors.New("clickhouse: connection refused"))

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 2)
	cancel, done := runWriter(t, writer, in)

	in <- s.envelope("e1")
	in <- s.envelope("e2")

	require.Eventually(t, func() bool {
		_, nacked := s.counts()
		return nacked == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	acked, _ := s.counts()
	assert.Zero(t, acked)
}

func TestBatchWriter_Start_PartialInsertNacksBatch(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(1, nil)

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 2)
	cancel, done := runWriter(t, writer, in)

	in <- s.envelope("e1")
	in <- s.envelope("e2")

	require.Eventually(t, func() bool {
		_, nacked := s.counts()
		return nacked == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestBatchWriter_Start_RepeatedEventWrittenOnce(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(events []*domain.RawEvent) bool {
		return assert.ObjectsAreEqual([]string{"e1", "e2"}, eventIDs(events))
	})).Return(2, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 3)
	cancel, done := runWriter(t, writer, in)

	in <- s.envelope("e1")
	in <- s.envelope("e2")
	in <- s.envelope("e1")

	require.Eventually(t, func() bool {
		acked, _ := s.counts()
		return acked == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_ShutdownFlushSurvivesCancellation(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(1, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 100, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 1)
	in <- s.envelope("e1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		writer.Start(ctx, in)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(in) == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch writer did not stop")
	}

	mockRepo.AssertExpectations(t)
	acked, _ := s.counts()
	assert.Equal(t, 1, acked)
}

func TestBatchWriter_Start_InputClosedFlushesRemainder(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(2, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 100, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 2)
	in <- s.envelope("e1")
	in <- s.envelope("e2")
	close(in)

	writer.Start(context.Background(), in)

	mockRepo.AssertExpectations(t)
	acked, _ := s.counts()
	assert.Equal(t, 2, acked)
}

func TestBatchWriter_Start_NothingToFlush(t *testing.T) {
	mockRepo := new(MockEventRepository)

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 10 * time.Millisecond}, zap.NewNop())

	in := make(chan *Envelope)
	cancel, done := runWriter(t, writer, in)

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	mockRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestBatchWriter_Start_ConsecutiveBatches(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(2, nil).Twice()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 4)
	cancel, done := runWriter(t, writer, in)

	for _, id := range []string{"e1", "e2", "e3", "e4"} {
		in <- s.envelope(id)
	}

	require.Eventually(t, func() bool {
		acked, _ := s.counts()
		return acked == 4
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_ShutdownDrainsBufferedEnvelopes(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(events []*domain.RawEvent) bool {
		return assert.ObjectsAreEqual([]string{"e1", "e2", "e3"}, eventIDs(events))
	})).Return(3, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 100, FlushTimeout: time.Hour}, zap.NewNop())

	s := &settlements{}
	in := make(chan *Envelope, 3)
	for _, id := range []string{"e1", "e2", "e3"} {
		in <- s.envelope(id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writer.Start(ctx, in)

	mockRepo.AssertExpectations(t)
	acked, _ := s.counts()
	assert.Equal(t, 3, acked)
}
