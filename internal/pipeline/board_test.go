package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []models.LeadStatus
	err   error
}

func (r *recorder) UpdateLeadStatus(_ context.Context, _ uint, s models.LeadStatus) error {
	r.calls = append(r.calls, s)
	return r.err
}

func value(v float64) *float64 { return &v }

func sampleLeads() []models.Lead {
	return []models.Lead{
		{ID: 1, Title: "CRM rollout", Value: value(50000), Status: models.LeadQualified, Contact: &models.Contact{Name: "John"}},
		{ID: 2, Title: "Integration", Value: value(25000), Status: models.LeadProposal},
		{ID: 3, Title: "Workshop", Status: models.LeadQualified},
	}
}

func TestMove_SameColumnIssuesNoCall(t *testing.T) {
	rec := &recorder{}
	b := NewBoard(sampleLeads(), rec, "en")

	require.NoError(t, b.Move(context.Background(), 1, models.LeadQualified))
	assert.Empty(t, rec.calls)
}

func TestMove_DifferentColumnIssuesOneCall(t *testing.T) {
	rec := &recorder{}
	b := NewBoard(sampleLeads(), rec, "en")

	require.NoError(t, b.Move(context.Background(), 1, models.LeadWon))
	assert.Equal(t, []models.LeadStatus{models.LeadWon}, rec.calls)
	c, ok := b.Card(1)
	require.True(t, ok)
	assert.Equal(t, models.LeadWon, c.Status)

	// no transition rules: a won deal can go back to NEW
	require.NoError(t, b.Move(context.Background(), 1, models.LeadNew))
	assert.Len(t, rec.calls, 2)
}

func TestMove_FailureReverts(t *testing.T) {
	rec := &recorder{err: errors.New("db down")}
	b := NewBoard(sampleLeads(), rec, "en")

	err := b.Move(context.Background(), 2, models.LeadNegotiation)
	require.EqualError(t, err, "db down")
	assert.Len(t, rec.calls, 1, "no retry")
	c, _ := b.Card(2)
	assert.Equal(t, models.LeadProposal, c.Status)
}

func TestMove_RejectsUnknownInput(t *testing.T) {
	rec := &recorder{}
	b := NewBoard(sampleLeads(), rec, "en")
	require.ErrorIs(t, b.Move(context.Background(), 99, models.LeadWon), ErrUnknownLead)
	require.ErrorIs(t, b.Move(context.Background(), 1, "LIMBO"), ErrInvalidStatus)
	assert.Empty(t, rec.calls)
}

// slowFail moves the card again from inside the failing update so the
// rollback finds a newer status.
type slowFail struct{ b *Board }

func (s *slowFail) UpdateLeadStatus(ctx context.Context, id uint, st models.LeadStatus) error {
	if st == models.LeadContacted {
		s.b.mu.Lock()
		s.b.cards[s.b.index(id)].Status = models.LeadLost
		s.b.mu.Unlock()
		return errors.New("conflict")
	}
	return nil
}

func TestMove_RollbackDoesNotClobberNewerMove(t *testing.T) {
	sf := &slowFail{}
	b := NewBoard(sampleLeads(), sf, "en")
	sf.b = b
	require.Error(t, b.Move(context.Background(), 3, models.LeadContacted))
	c, _ := b.Card(3)
	assert.Equal(t, models.LeadLost, c.Status)
}

func TestColumns(t *testing.T) {
	b := NewBoard(sampleLeads(), &recorder{}, "fr")
	cols := b.Columns()
	require.Len(t, cols, len(models.LeadStatuses))
	for i, s := range models.LeadStatuses {
		assert.Equal(t, s, cols[i].Status)
		assert.NotNil(t, cols[i].Cards)
	}
	q := cols[2]
	assert.Equal(t, models.LeadQualified, q.Status)
	assert.Len(t, q.Cards, 2)
	assert.Equal(t, 50000.0, q.Total, "null values count as zero")
	assert.Equal(t, "John", q.Cards[0].Contact)
	assert.Equal(t, "Gagné", cols[5].Title)

	require.NoError(t, b.Move(context.Background(), 3, models.LeadProposal))
	cols = b.Columns()
	assert.Len(t, cols[2].Cards, 1)
	assert.Equal(t, 25000.0, cols[3].Total)
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(models.LeadProposal)
	require.Len(t, p.Steps, 6)
	assert.False(t, p.Lost)
	assert.Equal(t, 60, p.Percent)
	assert.True(t, p.Steps[2].Completed)
	assert.True(t, p.Steps[3].Current)
	assert.False(t, p.Steps[4].Completed)

	won := ProgressFor(models.LeadWon)
	assert.Equal(t, 100, won.Percent)
	assert.True(t, won.Steps[5].Current)

	lost := ProgressFor(models.LeadLost)
	assert.True(t, lost.Lost)
	assert.Zero(t, lost.Percent)
	for _, s := range lost.Steps {
		assert.False(t, s.Current)
	}
}
