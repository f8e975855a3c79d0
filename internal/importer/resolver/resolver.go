// Package resolver turns parsed search entries into resolved leads: local
// store first for phone entries, then the remote CRM. All entries resolve
// concurrently and every failure is captured on its own entry, so a batch
// never fails as a whole.
package resolver

import (
	"context"
	"errors"
	"time"

	"crm_portal_backend/internal/crm"
	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/internal/importer/repository"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// LocalStore is the subset of the prospect repository the resolver needs.
type LocalStore interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Prospect, error)
}

// RemoteLookup is the CRM lookup boundary.
type RemoteLookup interface {
	LookupByLeadID(ctx context.Context, leadID string) (*domain.LeadIdentity, error)
	LookupByPhone(ctx context.Context, phone string) (*domain.LeadIdentity, error)
}

type Resolver struct {
	local  LocalStore
	remote RemoteLookup
	log    *logger.Logger
}

func New(local LocalStore, remote RemoteLookup, log *logger.Logger) *Resolver {
	return &Resolver{local: local, remote: remote, log: log}
}

// ResolveAll resolves every entry concurrently and returns once all have
// settled. Entries are mutated in place; each worker touches only its own
// entry, and the caller reads nothing until Wait returns.
func (r *Resolver) ResolveAll(ctx context.Context, entries []*domain.SearchEntry) []*domain.SearchEntry {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(domain.MaxBatchEntries)

	for _, entry := range entries {
		entry.Resolution = domain.ResolutionSearching
		g.Go(func() error {
			r.resolveOne(gctx, entry)
			// Outcomes live on the entry; never fail the group.
			return nil
		})
	}

	// Workers always return nil.
	_ = g.Wait()

	return entries
}

func (r *Resolver) resolveOne(ctx context.Context, entry *domain.SearchEntry) {
	start := time.Now()
	defer func() {
		entry.LookupElapsed = time.Since(start)
		r.log.LeadLookup(string(entry.Kind), entry.SearchKey, string(entry.Resolution), entry.LookupElapsed)
	}()

	if entry.Kind == domain.KindPhoneNumber {
		match, err := r.local.FindByPhone(ctx, entry.SearchKey)
		switch {
		case err == nil:
			entry.Resolution = domain.ResolutionExistsLocally
			entry.LocalMatch = match
			return
		case !errors.Is(err, repository.ErrNotFound):
			// A store fault must not block the remote path.
			r.log.DatabaseError("prospects.find_by_phone", err)
		}
	}

	lead, err := r.lookupRemote(ctx, entry)
	switch {
	case err == nil:
		entry.Resolution = domain.ResolutionFound
		entry.Lead = lead
		r.autofillContactNumber(entry, lead)
	case errors.Is(err, crm.ErrNotFound):
		entry.Resolution = domain.ResolutionNotFound
		entry.ResolutionNote = "no se encontró el lead en el CRM"
	default:
		entry.Resolution = domain.ResolutionError
		entry.ResolutionNote = err.Error()
	}
}

func (r *Resolver) lookupRemote(ctx context.Context, entry *domain.SearchEntry) (*domain.LeadIdentity, error) {
	if entry.Kind == domain.KindCrmReference {
		return r.remote.LookupByLeadID(ctx, entry.SearchKey)
	}
	return r.remote.LookupByPhone(ctx, entry.SearchKey)
}

// autofillContactNumber fills the contact number from the remote record when
// the entry has none. Best effort: the remote record may legitimately carry
// no usable phone.
func (r *Resolver) autofillContactNumber(entry *domain.SearchEntry, lead *domain.LeadIdentity) {
	if entry.HasContactNumber() || lead.Phone == "" {
		return
	}
	if digits := phone.Last10(lead.Phone); digits != "" {
		entry.ContactNumber = digits
	}
}
