package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/usecase"
)

type ChatHandler struct {
	orchestrator *usecase.Orchestrator
}

func NewChatHandler(orch *usecase.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orch}
}

// HandleChat serves the synchronous chat operation.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	resp, err := h.orchestrator.Execute(c.Context(), req)
	if err != nil {
		if errors.Is(err, entity.ErrTokenBudgetExceeded) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
	}

	c.Set("X-Orchestrator-Cache", string(resp.Metrics.CacheStatus))
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HandleChatStream serves the SSE variant: agent-status transitions, then
// retrieval logs, then message chunks, then exactly one done event.
func (h *ChatHandler) HandleChatStream(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber context is gone by the time this writer runs, and
		// in-flight collaborator calls are allowed to finish naturally on
		// disconnect, so the pipeline gets a fresh context.
		events, err := h.orchestrator.ExecuteStream(context.Background(), req)
		if err != nil {
			return
		}
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			if err := w.Flush(); err != nil {
				// Client went away; drain so the producer can finish.
				for range events {
				}
				return
			}
		}
	}))
	return nil
}
