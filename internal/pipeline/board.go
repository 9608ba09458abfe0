// Package pipeline models the lead Kanban board: one column per status,
// optimistic moves that roll back when the store rejects them.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/diewo77/go-crm/i18n"
	"github.com/diewo77/go-crm/internal/models"
)

var (
	ErrUnknownLead   = errors.New("pipeline: unknown lead")
	ErrInvalidStatus = errors.New("pipeline: invalid status")
)

// StatusUpdater persists a status change.
type StatusUpdater interface {
	UpdateLeadStatus(ctx context.Context, id uint, status models.LeadStatus) error
}

type Card struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Value        float64           `json:"value"`
	Status       models.LeadStatus `json:"status"`
	Contact      string            `json:"contact,omitempty"`
	Organization string            `json:"organization,omitempty"`
}

type Column struct {
	Status models.LeadStatus `json:"status"`
	Title  string            `json:"title"`
	Cards  []Card            `json:"cards"`
	Total  float64           `json:"total"`
}

// Board is the in-memory state of one Kanban view.
type Board struct {
	mu      sync.Mutex
	cards   []Card
	updater StatusUpdater
	lang    string
}

// NewBoard builds a board from leads. lang selects column titles.
func NewBoard(leads []models.Lead, updater StatusUpdater, lang string) *Board {
	cards := make([]Card, 0, len(leads))
	for _, l := range leads {
		c := Card{ID: l.ID, Title: l.Title, Value: l.Amount(), Status: l.Status}
		if l.Contact != nil {
			c.Contact = l.Contact.Name
		}
		if l.Organization != nil {
			c.Organization = l.Organization.Name
		}
		cards = append(cards, c)
	}
	return &Board{cards: cards, updater: updater, lang: lang}
}

// Move drops a card on a column. Dropping it on its own column does nothing.
// Otherwise the card moves immediately and the updater is called once; if it
// fails the card goes back to where it was and the error is returned.
func (b *Board) Move(ctx context.Context, id uint, status models.LeadStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return ErrUnknownLead
	}
	prev := b.cards[i].Status
	if prev == status {
		b.mu.Unlock()
		return nil
	}
	b.cards[i].Status = status
	b.mu.Unlock()

	if err := b.updater.UpdateLeadStatus(ctx, id, status); err != nil {
		b.mu.Lock()
		// a later move wins over this rollback
		if j := b.index(id); j >= 0 && b.cards[j].Status == status {
			b.cards[j].Status = prev
		}
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *Board) index(id uint) int {
	for i := range b.cards {
		if b.cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Card returns the current state of one card.
func (b *Board) Card(id uint) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(id); i >= 0 {
		return b.cards[i], true
	}
	return Card{}, false
}

// Columns groups the cards by status in pipeline order and totals each column.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	cols := make([]Column, len(models.LeadStatuses))
	pos := make(map[models.LeadStatus]int, len(cols))
	for i, s := range models.LeadStatuses {
		cols[i] = Column{Status: s, Title: i18n.T(b.lang, string(s)), Cards: []Card{}}
		pos[s] = i
	}
	for _, c := range b.cards {
		i, ok := pos[c.Status]
		if !ok {
			continue
		}
		cols[i].Cards = append(cols[i].Cards, c)
		cols[i].Total += c.Value
	}
	return cols
}
