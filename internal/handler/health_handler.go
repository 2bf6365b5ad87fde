package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// HealthHandler reports readiness of the backing stores
type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{mongoClient: mongoClient, redisClient: redisClient}
}

// Health handles GET /health
// Pings MongoDB and Redis in parallel; any failure turns the check red
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := fiber.Map{
		"status": "ok",
		"mongo":  "ok",
		"redis":  "ok",
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if h.mongoClient == nil {
			return nil
		}
		if err := h.mongoClient.Ping(gCtx, readpref.Primary()); err != nil {
			status["mongo"] = err.Error()
			return err
		}
		return nil
	})
	g.Go(func() error {
		if h.redisClient == nil {
			return nil
		}
		if err := h.redisClient.Ping(gCtx).Err(); err != nil {
			status["redis"] = err.Error()
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		status["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}

	return c.JSON(status)
}
