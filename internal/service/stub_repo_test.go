package service

import (
	"context"
	"strings"
	"sync"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"

	"gorm.io/gorm"
)

// stubParticipantRepo is an in-memory ParticipantRepository with the same
// conditional-update semantics as the Postgres implementation, guarded by a
// mutex so concurrency tests observe the real at-most-one-winner behavior.
type stubParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*model.Participant

	findCalls      int
	condMarkCalls  int
	failNextUpdate bool
}

func newStubParticipantRepo() *stubParticipantRepo {
	return &stubParticipantRepo{participants: make(map[string]*model.Participant)}
}

func (r *stubParticipantRepo) seed(p model.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.participants[p.UniqueID] = &cp
}

func (r *stubParticipantRepo) get(uniqueID string) model.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.participants[uniqueID]
}

func (r *stubParticipantRepo) Create(_ context.Context, p *model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uint(len(r.participants) + 1)
	cp := *p
	r.participants[p.UniqueID] = &cp
	return nil
}

func (r *stubParticipantRepo) FindByUniqueID(_ context.Context, uniqueID string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	p, ok := r.participants[uniqueID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubParticipantRepo) FindByEmail(_ context.Context, email string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubParticipantRepo) List(_ context.Context) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubParticipantRepo) ListByUniqueIDs(_ context.Context, uniqueIDs []string) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Participant
	for _, id := range uniqueIDs {
		if p, ok := r.participants[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubParticipantRepo) ListUniqueIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.participants))
	for id := range r.participants {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *stubParticipantRepo) ConditionalMarkPresent(_ context.Context, uniqueID string, clearHash bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.condMarkCalls++
	if r.failNextUpdate {
		r.failNextUpdate = false
		return false, nil
	}
	p, ok := r.participants[uniqueID]
	if !ok || p.Present {
		return false, nil
	}
	p.Present = true
	if clearHash {
		p.QRHash = nil
	}
	return true, nil
}

func (r *stubParticipantRepo) SetHash(_ context.Context, uniqueID string, hash *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[uniqueID]
	if !ok {
		return false, nil
	}
	p.QRHash = hash
	return true, nil
}

func (r *stubParticipantRepo) UpdateFlags(_ context.Context, uniqueID string, flags map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[uniqueID]
	if !ok {
		return false, nil
	}
	for col, val := range flags {
		b, _ := val.(bool)
		switch col {
		case "seminar_kit":
			p.SeminarKit = b
		case "consumption":
			p.Consumption = b
		case "heavy_meal":
			p.HeavyMeal = b
		case "mission_card":
			p.MissionCard = b
		}
	}
	return true, nil
}

func (r *stubParticipantRepo) Delete(_ context.Context, uniqueID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[uniqueID]; !ok {
		return false, nil
	}
	delete(r.participants, uniqueID)
	return true, nil
}

func (r *stubParticipantRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = make(map[string]*model.Participant)
	return nil
}
