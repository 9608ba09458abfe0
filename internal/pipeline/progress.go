package pipeline

import "github.com/diewo77/go-crm/internal/models"

type Step struct {
	Status    models.LeadStatus
	Completed bool
	Current   bool
}

// Progress is the lead detail progress bar. LOST is not a step: it flags the
// whole bar instead.
type Progress struct {
	Steps   []Step
	Lost    bool
	Percent int
}

// ProgressFor builds the bar for a lead in status s.
func ProgressFor(s models.LeadStatus) Progress {
	stages := models.LeadStatuses[:len(models.LeadStatuses)-1]
	idx := s.PipelineIndex()
	p := Progress{Lost: s == models.LeadLost, Steps: make([]Step, len(stages))}
	for i, st := range stages {
		p.Steps[i] = Step{Status: st, Completed: idx >= 0 && i < idx, Current: i == idx}
	}
	if idx >= 0 {
		p.Percent = idx * 100 / (len(stages) - 1)
	}
	return p
}
