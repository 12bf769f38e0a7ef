// Package history publishes room action records to a Redis queue for an
// external stats consumer. The game core never depends on it: rooms expose
// an OnAction hook and the server wires it to a Recorder when Redis is
// configured.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the recorder pushes onto.
const DefaultQueueName = "sabotage_actions"

// RoomActionRecord is one accepted room mutation, as queued for the
// consumer.
type RoomActionRecord struct {
	RoomCode      string                 `json:"room_code"`
	ActorPlayerID uuid.UUID              `json:"actor_player_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Recorder wraps the Redis client and target queue.
type Recorder struct {
	client *redis.Client
	queue  string
}

// Connect builds a Recorder from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
//   - HISTORY_QUEUE_NAME (default DefaultQueueName)
func Connect(ctx context.Context) (*Recorder, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Recorder{
		client: client,
		queue:  getEnv("HISTORY_QUEUE_NAME", DefaultQueueName),
	}, nil
}

// Publish serializes the record and pushes it onto the queue. Callers treat
// failures as best-effort: a lost record never fails the game operation
// that produced it.
func (rec *Recorder) Publish(ctx context.Context, record RoomActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomActionRecord: %w", err)
	}
	if err := rec.client.RPush(ctx, rec.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", rec.queue, err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (rec *Recorder) Close() error {
	return rec.client.Close()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
