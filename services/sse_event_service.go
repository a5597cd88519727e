// services/sse_event_service.go
package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"neoengine-ledger-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamUserRewardEvents streams the caller's reward audit entries as
// server-sent events, tailing the event table.
func (s *ScoringService) StreamUserRewardEvents(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	db := s.DB

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// Use fasthttp stream writer (THIS replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastCreatedAt time.Time

		// Initialize cursor
		var latest models.RewardEvent
		if err := db.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for user %s: %v", userID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for range ticker.C {
			var events []models.RewardEvent
			if err := db.
				Where("user_id = ? AND created_at > ?", userID, lastCreatedAt).
				Order("created_at ASC").
				Find(&events).Error; err != nil {
				log.Printf("SSE poll error for user %s: %v", userID, err)
				continue
			}

			if len(events) == 0 {
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return // client disconnected
				}
				continue
			}

			for _, ev := range events {
				payload, _ := json.Marshal(ev)
				fmt.Fprintf(w, "event: reward\ndata: %s\n\n", payload)
				lastCreatedAt = ev.CreatedAt
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})

	return nil
}
