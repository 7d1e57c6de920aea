package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const requestsKey = "requests"

// orderKey lists a game's pending request IDs in arrival order.
func orderKey(gameID uuid.UUID) string {
	return requestsKey + ":order:" + gameID.String()
}

// ActionQueue is the global FIFO of player actions shared by all workers. Each game
// also keeps its own arrival order so a request put back behind a lock cannot be
// overtaken by a later one for the same game.
type ActionQueue struct {
	client *Client
}

func NewActionQueue(client *Client) *ActionQueue {
	return &ActionQueue{client: client}
}

// EnqueueRequest adds a request to the end of the queue
func (q *ActionQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	_, err = q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, orderKey(req.GameStateID), req.RequestID)
		pipe.RPush(ctx, requestsKey, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	q.client.logger.Debug("Enqueued request",
		"request_id", req.RequestID,
		"game_id", req.GameStateID,
		"action", req.Action.Type)
	return nil
}

// Requeue puts a taken request back at the end of the queue. Its place in the
// game's order is kept.
func (q *ActionQueue) Requeue(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to requeue request: %w", err)
	}
	return nil
}

// IsNext reports whether req is the oldest pending request of its game. Requests
// with no recorded order are always next.
func (q *ActionQueue) IsNext(ctx context.Context, req *queue.Request) (bool, error) {
	ids, err := q.client.rdb.LRange(ctx, orderKey(req.GameStateID), 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read request order: %w", err)
	}
	if len(ids) == 0 || ids[0] == req.RequestID {
		return true, nil
	}
	for _, id := range ids[1:] {
		if id == req.RequestID {
			return false, nil
		}
	}
	return true, nil
}

// Finish removes req from its game's order once it has run or been dropped.
func (q *ActionQueue) Finish(ctx context.Context, req *queue.Request) error {
	if err := q.client.rdb.LRem(ctx, orderKey(req.GameStateID), 1, req.RequestID).Err(); err != nil {
		return fmt.Errorf("failed to finish request: %w", err)
	}
	return nil
}

// SkipOldest forgets the oldest pending request of a game. Used when that request
// was lost and would otherwise block the game forever.
func (q *ActionQueue) SkipOldest(ctx context.Context, gameID uuid.UUID) (string, error) {
	id, err := q.client.rdb.LPop(ctx, orderKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to skip request: %w", err)
	}
	return id, nil
}

// DequeueRequest removes and returns the next request. It returns nil when the queue is empty.
func (q *ActionQueue) DequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	return q.parse(ctx, result)
}

// BlockingDequeueRequest waits up to timeout for a request. It returns nil on timeout.
func (q *ActionQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return q.parse(ctx, result[1])
}

// parse parks undecodable payloads on the dead list.
func (q *ActionQueue) parse(ctx context.Context, payload string) (*queue.Request, error) {
	req, err := queue.FromJSON([]byte(payload))
	if err != nil {
		q.client.logger.Error("Dropping malformed request", "error", err)
		if pushErr := q.client.rdb.RPush(ctx, requestsKey+":dead", payload).Err(); pushErr != nil {
			q.client.logger.Error("Failed to park malformed request", "error", pushErr)
		}
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// RequestQueueDepth returns the number of requests in the global queue
func (q *ActionQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
