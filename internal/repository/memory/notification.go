package memory

import (
	"context"
	"fmt"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(ctx context.Context, caller *models.Caller, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n.ID = newID()
	n.UserID = caller.UserID
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = r.s.stamp(n.CreatedAt)
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) List(ctx context.Context, caller *models.Caller, unreadOnly bool, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID != caller.UserID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sortByCreatedDesc(out, func(n models.Notification) time.Time { return n.CreatedAt }, func(n models.Notification) string { return n.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, caller *models.Caller) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == caller.UserID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) SetRead(ctx context.Context, caller *models.Caller, id string, read bool) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != caller.UserID {
		return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	n.Read = read
	if read {
		now := r.s.Now()
		n.ReadAt = &now
	} else {
		n.ReadAt = nil
	}
	r.s.notifications[id] = n
	return &n, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, caller *models.Caller) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.Now()
	var changed int64
	for id, n := range r.s.notifications {
		if n.UserID == caller.UserID && !n.Read {
			n.Read = true
			n.ReadAt = &now
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}
