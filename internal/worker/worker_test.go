package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	connector "opossum/internal/connectors/hiboutik"
	"opossum/internal/config"
	"opossum/internal/logger"
	"opossum/internal/models"
	"opossum/internal/worker/processors"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  chan kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type engineStub struct {
	mock.Mock
}

func (e *engineStub) SyncItem(ctx context.Context, code string) (*connector.SyncResult, error) {
	args := e.Called(ctx, code)
	result, _ := args.Get(0).(*connector.SyncResult)
	return result, args.Error(1)
}

func (e *engineStub) HandleSalePayload(ctx context.Context, contentType string, body []byte) (*models.POSInvoice, bool, error) {
	args := e.Called(ctx, contentType, body)
	invoice, _ := args.Get(0).(*models.POSInvoice)
	return invoice, args.Bool(1), args.Error(2)
}

func TestWorkerProcessesAndCommitsMessages(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 3)}
	reader.messages <- kafka.Message{Offset: 1, Value: []byte(`{"id":"e1","type":"item.saved","subject":"large-spoon"}`)}
	reader.messages <- kafka.Message{Offset: 2, Value: []byte(`not json`)}
	reader.messages <- kafka.Message{Offset: 3, Value: []byte(`{"id":"e3","type":"item.saved","subject":"missing"}`)}

	engine := new(engineStub)
	engine.On("SyncItem", mock.Anything, "large-spoon").Return(&connector.SyncResult{ExternalID: 27}, nil)
	engine.On("SyncItem", mock.Anything, "missing").Return(nil, models.ErrNotFound)

	w := New(&config.Config{KafkaItemTopic: "items", KafkaSaleTopic: "sales"}, logger.Nop(), reader, processors.NewEventProcessor(engine, logger.Nop()))
	go w.Start()

	require.Eventually(t, func() bool { return len(reader.commits()) == 3 }, time.Second, 10*time.Millisecond)
	w.Stop()

	assert.Equal(t, []int64{1, 2, 3}, reader.commits())
	assert.True(t, reader.closed)
	engine.AssertExpectations(t)
}
