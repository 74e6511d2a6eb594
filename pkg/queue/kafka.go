package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			msg := Message{
				Key:   string(message.Key),
				Value: message.Value,
				Topic: message.Topic,
			}

			if err := handler(msg); err != nil {
				// Skip the message rather than stall the partition.
				continue
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type Message struct {
	Key   string
	Value []byte
	Topic string
}

type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventFollowCreated    EventType = "follow_created"
	EventFollowDeleted    EventType = "follow_deleted"
	EventPostCreated      EventType = "post_created"
	EventPostDeleted      EventType = "post_deleted"
	EventPostLiked        EventType = "post_liked"
	EventPostUnliked      EventType = "post_unliked"
	EventCommentCreated   EventType = "comment_created"
	EventCommentLiked     EventType = "comment_liked"
	EventStoryViewed      EventType = "story_viewed"
	EventEventRSVPAdded   EventType = "event_rsvp_added"
	EventEventRSVPRemoved EventType = "event_rsvp_removed"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

type FollowEventData struct {
	FollowerID   string `json:"followerId"`
	FollowerName string `json:"followerName"`
	FollowingID  string `json:"followingId"`
}

type PostEventData struct {
	PostID     string `json:"postId"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
}

type LikeEventData struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId,omitempty"`
	OwnerID   string `json:"ownerId"`
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
}

type CommentEventData struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	OwnerID   string `json:"ownerId"`
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
	Content   string `json:"content"`
}

type StoryViewEventData struct {
	StoryID  string `json:"storyId"`
	OwnerID  string `json:"ownerId"`
	ViewerID string `json:"viewerId"`
}

type RSVPEventData struct {
	EventID     string `json:"eventId"`
	OrganizerID string `json:"organizerId"`
	ActorID     string `json:"actorId"`
	ActorName   string `json:"actorName"`
	EventTitle  string `json:"eventTitle"`
}
