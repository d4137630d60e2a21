package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"engboard/internal/events"
	"engboard/internal/models"
	"engboard/internal/sprints"
)

// ScanDeadlines raises deadline alerts for urgent or overdue active sprints
// and for open tasks due within sprints.UrgentWithin days. Each deadline is
// alerted once; a reschedule or a new urgency level alerts again. It returns
// the number of alerts published.
func (s *Service) ScanDeadlines(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	var system models.Actor
	raised := 0

	for _, sp := range s.sprints {
		cd, err := sprints.CountdownFor(sp, today)
		if err != nil {
			s.logger.Warn("skip sprint deadline", slog.String("sprint", sp.ID), slog.String("error", err.Error()))
			continue
		}
		key := "sprint:" + sp.ID
		if cd.Urgency == sprints.UrgencyNone {
			delete(s.alerted, key)
			continue
		}
		if !s.markAlerted(key, sp.EndDate+"/"+string(cd.Urgency)) {
			continue
		}
		s.publish(events.SprintDeadlineAlert, sp.ID, system, map[string]string{
			"name":           sp.Name,
			"end_date":       sp.EndDate,
			"days_remaining": strconv.Itoa(cd.DaysRemaining),
			"urgency":        string(cd.Urgency),
		})
		raised++
	}

	for _, t := range s.tasks {
		key := "task:" + t.ID
		days, due := taskDue(t, today)
		if !due {
			delete(s.alerted, key)
			continue
		}
		if !s.markAlerted(key, t.DueDate) {
			continue
		}
		s.publish(events.TaskDeadlineAlert, t.ID, system, map[string]string{
			"title":          t.Title,
			"assigned_to":    t.AssignedTo,
			"due_date":       t.DueDate,
			"days_remaining": strconv.Itoa(days),
		})
		raised++
	}
	return raised
}

// RunDeadlineScanner calls ScanDeadlines every interval until ctx is done.
func (s *Service) RunDeadlineScanner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.ScanDeadlines(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ScanDeadlines(ctx); n > 0 {
				s.logger.Info("deadline alerts raised", slog.Int("count", n))
			}
		}
	}
}

func (s *Service) markAlerted(key, state string) bool {
	if s.alerted[key] == state {
		return false
	}
	s.alerted[key] = state
	return true
}

// taskDue reports the days left on an open task due within the urgent window.
func taskDue(t models.Task, today time.Time) (int, bool) {
	if t.Status == models.TaskCompleted || t.DueDate == "" {
		return 0, false
	}
	days, err := sprints.DaysRemaining(t.DueDate, today)
	if err != nil || days < 0 || days > sprints.UrgentWithin {
		return days, false
	}
	return days, true
}
