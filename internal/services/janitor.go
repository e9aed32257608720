package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mesalibre/voice-booking-be/internal/repositories"
)

const (
	janitorSchedule = "0 */10 * * * *" // every 10 minutes
	maxIdle         = 30 * time.Minute
)

// Janitor cancels abandoned voice conversations. Callers that hang up
// mid-booking never send an end signal, so active conversations idle past
// maxIdle are force-cancelled and their partial data discarded.
type Janitor struct {
	convRepo repositories.ConversationRepo
	cron     *cron.Cron
}

func NewJanitor(convRepo repositories.ConversationRepo) *Janitor {
	return &Janitor{
		convRepo: convRepo,
		cron:     cron.New(cron.WithSeconds()),
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(janitorSchedule, j.sweep); err != nil {
		return fmt.Errorf("failed to schedule janitor: %w", err)
	}
	j.cron.Start()
	log.Println("🧹 Conversation janitor started")
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
	log.Println("🧹 Conversation janitor stopped")
}

func (j *Janitor) sweep() {
	cancelled, err := j.convRepo.CancelStale(maxIdle)
	if err != nil {
		log.Printf("⚠️ Janitor sweep failed: %v", err)
		return
	}
	if cancelled > 0 {
		log.Printf("🧹 Cancelled %d stale conversations", cancelled)
	}
}
