package store

import (
	"context"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/seed"
)

var registrationSchema = schema[domain.Registration, int64]{
	name:  domain.CollectionRegistrations,
	seed:  func(int64) []domain.Registration { return seed.Registrations() },
	id:    func(r domain.Registration) int64 { return r.ID },
	next:  func(items []domain.Registration) int64 { return maxPlusOne(items, func(r domain.Registration) int64 { return r.ID }) },
	setID: func(r *domain.Registration, id int64) { r.ID = id },
	prepare: func(r *domain.Registration, s *Store) {
		if r.Status == "" {
			r.Status = domain.RegistrationPending
		}
		if r.Date == "" {
			r.Date = s.today()
		}
	},
	// approved and rejected are terminal
	guard: func(old domain.Registration, updated *domain.Registration) error {
		return old.Status.CheckTransition(updated.Status)
	},
	event: int64Event,
}

func (s *Store) LoadRegistrations(ctx context.Context) ([]domain.Registration, error) {
	return s.registrations.load(ctx)
}

func (s *Store) Registrations() []domain.Registration {
	return s.registrations.snapshot()
}

func (s *Store) GetRegistration(ctx context.Context, id int64) (domain.Registration, error) {
	return s.registrations.get(ctx, id)
}

// AddRegistration records a new application as pending
func (s *Store) AddRegistration(ctx context.Context, r domain.Registration) (domain.Registration, error) {
	r.Status = domain.RegistrationPending
	r.ReviewedBy, r.ReviewDate = "", ""
	return s.registrations.add(ctx, r)
}

// UpdateRegistration replaces the editable fields of a registration. The status
// only moves through ApproveRegistration and RejectRegistration.
func (s *Store) UpdateRegistration(ctx context.Context, r domain.Registration) (domain.Registration, error) {
	return s.registrations.modify(ctx, r.ID, func(cur *domain.Registration) error {
		if err := r.Revise(*cur); err != nil {
			return err
		}
		*cur = r
		return nil
	})
}

func (s *Store) DeleteRegistration(ctx context.Context, id int64) error {
	return s.registrations.remove(ctx, id)
}

// ApproveRegistration marks a pending registration approved and emits a change event
func (s *Store) ApproveRegistration(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return s.review(ctx, id, domain.RegistrationApproved, reviewedBy, notes)
}

// RejectRegistration marks a pending registration rejected and emits a change event
func (s *Store) RejectRegistration(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return s.review(ctx, id, domain.RegistrationRejected, reviewedBy, notes)
}

func (s *Store) review(ctx context.Context, id int64, status domain.RegistrationStatus, reviewedBy, notes string) (domain.Registration, error) {
	return s.registrations.modify(ctx, id, func(r *domain.Registration) error {
		if r.Status.Terminal() {
			return domain.NewInvalidTransition(domain.CollectionRegistrations, string(r.Status), string(status))
		}
		r.Status = status
		r.ReviewedBy = reviewedBy
		r.ReviewDate = s.now().UTC().Format(time.RFC3339)
		r.Notes = notes
		return nil
	})
}

// PendingRegistrations counts registrations awaiting review
func (s *Store) PendingRegistrations() int {
	n := 0
	for _, r := range s.registrations.snapshot() {
		if r.Status == domain.RegistrationPending || r.Status == "" {
			n++
		}
	}
	return n
}
