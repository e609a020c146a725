package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/events"
	"ai-tutor-be/pkg/utils"
	"ai-tutor-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
)

const moduleConsumer = "ConsumerService"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ChunkConfig controls how ingested material is split before embedding
type ChunkConfig struct {
	Size    int
	Overlap int
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	store      *vectorstore.Store
	chunks     ChunkConfig
	events     EventPublisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	store *vectorstore.Store,
	chunks ChunkConfig,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		store:      store,
		chunks:     chunks,
		events:     eventPublisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: embedding failures are reported once and
// not retried, so a half-indexed document is never indexed twice.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.IngestionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(moduleConsumer, "Failed to unmarshal message", map[string]interface{}{"error": err.Error(), "uuid": msg.UUID})
		return
	}

	chunks := utils.SplitText(payload.Content, cs.chunks.Size, cs.chunks.Overlap)
	cs.logger.Info(moduleConsumer, "Indexing course content", map[string]interface{}{"course": payload.Course, "chunks": len(chunks)})

	indexed := 0
	for i, chunk := range chunks {
		meta := map[string]any{
			"course": payload.Course,
			"topic":  payload.Topic,
			"chunk":  i,
		}
		if err := cs.store.AddDocument(ctx, chunk, meta); err != nil {
			cs.logger.Error(moduleConsumer, "Failed to index chunk", map[string]interface{}{
				"course": payload.Course,
				"chunk":  i,
				"error":  err.Error(),
			})
			return
		}
		indexed++
	}

	cs.logger.Info(moduleConsumer, "Course content indexed", map[string]interface{}{"course": payload.Course, "chunks": indexed, "store_size": cs.store.Len()})

	if cs.events != nil {
		if err := cs.events.Publish(ctx, events.NewCourseIngested(payload.Course, indexed, time.Now())); err != nil {
			cs.logger.Warn(moduleConsumer, "Failed to publish COURSE_INGESTED event", map[string]interface{}{"error": err.Error()})
		}
	}
}
