// Command enqueue pushes one action onto the worker queue, bypassing the API. It is a
// debugging aid for running a worker without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/pkg/game"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	gameID := flag.String("game", "", "game state ID")
	actionJSON := flag.String("action", `{"type":"wait","dt":1}`, "action as JSON")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	req, err := buildRequest(*gameID, *actionJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := queue.NewClient(ctx, *redisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	q := queue.NewActionQueue(client)
	if err := q.EnqueueRequest(ctx, req); err != nil {
		log.Error("Failed to enqueue request", "error", err)
		os.Exit(1)
	}
	depth, err := q.RequestQueueDepth(ctx)
	if err != nil {
		log.Warn("Failed to read queue depth", "error", err)
	}

	fmt.Printf("Enqueued %s for game %s (request %s, queue depth %d)\n", req.Action.Type, req.GameStateID, req.RequestID, depth)
}

func buildRequest(gameID, actionJSON string) (*queuePkg.Request, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return nil, fmt.Errorf("invalid -game %q: %w", gameID, err)
	}
	var a game.Action
	if err := json.Unmarshal([]byte(actionJSON), &a); err != nil {
		return nil, fmt.Errorf("invalid -action: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return queuePkg.NewRequest(id, a), nil
}
