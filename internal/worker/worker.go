package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"opossum/internal/config"
	"opossum/internal/events"
	"opossum/internal/logger"
	"opossum/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafka.Reader the worker uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    MessageReader
	processor *processors.EventProcessor
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers(),
		GroupID:        cfg.KafkaGroupID,
		GroupTopics:    []string{cfg.KafkaItemTopic, cfg.KafkaSaleTopic},
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
}

func New(cfg *config.Config, logger *logger.Logger, reader MessageReader, processor *processors.EventProcessor) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start consumes events until Stop is called. Messages are committed once
// handled, failed ones included, so a poison message cannot block the topic.
func (w *Worker) Start() {
	ctx := w.ctx
	defer close(w.done)

	w.logger.Info("Worker started, listening for events on %s and %s", w.config.KafkaItemTopic, w.config.KafkaSaleTopic)

	for {
		message, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		w.handle(ctx, message)

		if err := w.reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			w.logger.Error("Failed to commit message at offset %d: %v", message.Offset, err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, message kafka.Message) {
	w.logger.Debug("Received message on %s: %s", message.Topic, string(message.Value))

	// Parse event
	var event events.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		w.logger.Error("Failed to parse event: %v", err)
		return
	}

	// Process event
	processCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := w.processor.Process(processCtx, event); err != nil {
		w.logger.Error("Failed to process %s event %s: %v", event.Type, event.ID, err)
		return
	}

	w.logger.Debug("Event %s processed successfully", event.ID)
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.cancel()
	<-w.done
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
