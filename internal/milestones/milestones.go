// Package milestones tracks the timeline entries of a project. Stored order is
// insertion order; ByDate gives a sorted copy for timeline display.
package milestones

import (
	"slices"
	"strings"

	"engboard/internal/models"
)

// next is the status ring PENDING -> CURRENT -> COMPLETED -> PENDING.
var next = map[models.MilestoneStatus]models.MilestoneStatus{
	models.MilestonePending:   models.MilestoneCurrent,
	models.MilestoneCurrent:   models.MilestoneCompleted,
	models.MilestoneCompleted: models.MilestonePending,
}

// Next returns the status that follows s in the ring. Unknown values restart at PENDING.
func Next(s models.MilestoneStatus) models.MilestoneStatus {
	if n, ok := next[s]; ok {
		return n
	}
	return models.MilestonePending
}

func build(id, label, date string, status models.MilestoneStatus) (models.Milestone, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Milestone{}, models.Invalid("label", "must not be empty")
	}
	if date != "" {
		if _, err := models.ParseDate(date); err != nil {
			return models.Milestone{}, models.Invalid("date", err.Error())
		}
	}
	return models.Milestone{ID: id, Label: label, Date: date, Status: status}, nil
}

// Add appends a PENDING milestone to p.
func Add(p *models.Project, id, label, date string) (models.Milestone, error) {
	m, err := build(id, label, date, models.MilestonePending)
	if err != nil {
		return models.Milestone{}, err
	}
	p.Milestones = append(slices.Clip(p.Milestones), m)
	return m, nil
}

// Seed sets the opening milestone of a freshly created project; it starts CURRENT.
func Seed(p *models.Project, id, label, date string) error {
	m, err := build(id, label, date, models.MilestoneCurrent)
	if err != nil {
		return err
	}
	p.Milestones = []models.Milestone{m}
	return nil
}

// Cycle advances milestone id one step around the ring.
func Cycle(p *models.Project, id string) (models.Milestone, error) {
	for i := range p.Milestones {
		if p.Milestones[i].ID != id {
			continue
		}
		updated := slices.Clone(p.Milestones)
		updated[i].Status = Next(updated[i].Status)
		p.Milestones = updated
		return updated[i], nil
	}
	return models.Milestone{}, models.NotFound("milestone", id)
}

// Delete removes milestone id from p.
func Delete(p *models.Project, id string) error {
	idx := slices.IndexFunc(p.Milestones, func(m models.Milestone) bool { return m.ID == id })
	if idx < 0 {
		return models.NotFound("milestone", id)
	}
	p.Milestones = slices.Delete(slices.Clone(p.Milestones), idx, idx+1)
	return nil
}

// ByDate returns a copy sorted by target date. Undated entries go last and
// ties keep insertion order.
func ByDate(ms []models.Milestone) []models.Milestone {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, func(a, b models.Milestone) int {
		switch {
		case a.Date == b.Date:
			return 0
		case a.Date == "":
			return 1
		case b.Date == "":
			return -1
		default:
			return strings.Compare(a.Date, b.Date)
		}
	})
	return out
}
