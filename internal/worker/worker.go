package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/dago-node-render/internal/config"
	"github.com/aescanero/dago-node-render/internal/events"
	"github.com/aescanero/dago-node-render/internal/renderer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Worker consumes render requests from a Redis stream
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	renderer      *renderer.Renderer
	eventBus      events.Bus
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
	errorStream   string
	eventStream   string
	retryDelay    time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	rendererInstance *renderer.Renderer,
	eventBus events.Bus,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if eventBus == nil {
		eventBus = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		renderer:      rendererInstance,
		eventBus:      eventBus,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		errorStream:   cfg.ErrorStream(),
		eventStream:   cfg.EventStream,
		retryDelay:    100 * time.Millisecond,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting render worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.wg.Add(1)
	go w.processWork()
	w.running.Store(true)

	w.logger.Info("render worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight request
func (w *Worker) Stop() error {
	w.logger.Info("stopping render worker", zap.String("worker_id", w.id))

	w.running.Store(false)
	w.cancel()
	w.wg.Wait()

	w.logger.Info("render worker stopped", zap.String("worker_id", w.id))
	return nil
}

// Ready reports whether the processing loop is running
func (w *Worker) Ready() bool {
	return w.running.Load()
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer w.wg.Done()
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				w.sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single render request message. The message is
// acknowledged whatever the outcome.
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing render request",
		zap.String("message_id", messageID),
	)

	request, err := w.parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse render request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.publishError(messageID, nil, err)
		w.acknowledgeMessage(messageID)
		return
	}

	if err := w.processRequest(request); err != nil {
		w.logger.Error("failed to process render request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
		w.publishError(messageID, request, err)
	}

	w.acknowledgeMessage(messageID)
}

// parseRequest parses a render request from a Redis message
func (w *Worker) parseRequest(values map[string]interface{}) (*renderer.Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request renderer.Request
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render request: %w", err)
	}

	return &request, nil
}

// processRequest renders a request and publishes the result
func (w *Worker) processRequest(request *renderer.Request) error {
	result, err := w.renderer.Render(w.ctx, request)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if err := w.publishResult(result); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	w.publishEvent(events.New(events.TypeRenderCompleted, w.id, map[string]interface{}{
		"request_id":  result.ID,
		"mode":        result.Mode,
		"bytes":       len(result.Output),
		"duration_ms": result.Duration.Milliseconds(),
	}))

	return nil
}

// publishResult publishes the rendered output
func (w *Worker) publishResult(result *renderer.Result) error {
	payload := map[string]interface{}{
		"id":          result.ID,
		"worker_id":   w.id,
		"output":      result.Output,
		"mode":        result.Mode,
		"duration_ms": result.Duration.Milliseconds(),
		"timestamp":   time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := w.xadd(w.resultStream, result.ID, string(data)); err != nil {
		return err
	}

	w.logger.Info("published render result",
		zap.String("request_id", result.ID),
		zap.Int("bytes", len(result.Output)),
	)

	return nil
}

// publishError publishes a failed request to the error stream
func (w *Worker) publishError(messageID string, request *renderer.Request, err error) {
	errorEvent := map[string]interface{}{
		"message_id": messageID,
		"worker_id":  w.id,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}
	id := ""
	if request != nil {
		id = request.ID
		errorEvent["id"] = request.ID
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	if publishErr := w.xadd(w.errorStream, id, string(data)); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}

	w.publishEvent(events.New(events.TypeRenderFailed, w.id, map[string]interface{}{
		"request_id": id,
		"error":      err.Error(),
	}))
}

// xadd appends to a stream, retrying up to MaxRetries times
func (w *Worker) xadd(stream, id, data string) error {
	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"id":   id,
			"data": data,
		},
	}

	var err error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			w.sleep(w.retryDelay * time.Duration(attempt))
		}
		if err = w.redisClient.XAdd(context.Background(), args).Err(); err == nil {
			return nil
		}
		w.logger.Warn("stream publish failed",
			zap.String("stream", stream),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
}

func (w *Worker) publishEvent(event events.Event) {
	if err := w.eventBus.Publish(context.Background(), w.eventStream, event); err != nil {
		w.logger.Warn("failed to publish event",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(context.Background(), w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

// sleep waits for d or until the worker stops
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.ctx.Done():
	case <-time.After(d):
	}
}
