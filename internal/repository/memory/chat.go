package memory

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/llm"
)

type chatRepo struct{ s *Store }

func (r *chatRepo) Create(ctx context.Context, caller *models.Caller, msg *llm.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg.ID = newID()
	msg.UserID = caller.UserID
	msg.CreatedAt = r.s.stamp(msg.CreatedAt)
	r.s.chat = append(r.s.chat, *msg)
	return nil
}

// ListRecent relies on insertion order being chronological
func (r *chatRepo) ListRecent(ctx context.Context, caller *models.Caller, limit int) ([]llm.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mine := make([]llm.ChatMessage, 0)
	for _, msg := range r.s.chat {
		if msg.UserID == caller.UserID {
			mine = append(mine, msg)
		}
	}
	if limit > 0 && len(mine) > limit {
		mine = mine[len(mine)-limit:]
	}
	return mine, nil
}

func (r *chatRepo) DeleteAll(ctx context.Context, caller *models.Caller) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.chat[:0]
	var removed int64
	for _, msg := range r.s.chat {
		if msg.UserID == caller.UserID {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	r.s.chat = kept
	return removed, nil
}
