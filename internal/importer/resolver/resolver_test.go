package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"crm_portal_backend/internal/crm"
	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/internal/importer/repository"
	"crm_portal_backend/platform/logger"
)

type fakeStore struct {
	mu       sync.Mutex
	byPhone  map[string]*domain.Prospect
	storeErr error
	calls    int
}

func (s *fakeStore) FindByPhone(ctx context.Context, phone string) (*domain.Prospect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	if p, ok := s.byPhone[phone]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

type fakeRemote struct {
	mu       sync.Mutex
	byLeadID map[string]*domain.LeadIdentity
	byPhone  map[string]*domain.LeadIdentity
	errs     map[string]error
	calls    int
}

func (r *fakeRemote) LookupByLeadID(ctx context.Context, leadID string) (*domain.LeadIdentity, error) {
	return r.lookup(leadID, r.byLeadID)
}

func (r *fakeRemote) LookupByPhone(ctx context.Context, phone string) (*domain.LeadIdentity, error) {
	return r.lookup(phone, r.byPhone)
}

func (r *fakeRemote) lookup(key string, table map[string]*domain.LeadIdentity) (*domain.LeadIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if err, ok := r.errs[key]; ok {
		return nil, err
	}
	if lead, ok := table[key]; ok {
		return lead, nil
	}
	return nil, crm.ErrNotFound
}

func newResolver(store *fakeStore, remote *fakeRemote) *Resolver {
	if store.byPhone == nil {
		store.byPhone = map[string]*domain.Prospect{}
	}
	if remote.byLeadID == nil {
		remote.byLeadID = map[string]*domain.LeadIdentity{}
	}
	if remote.byPhone == nil {
		remote.byPhone = map[string]*domain.LeadIdentity{}
	}
	if remote.errs == nil {
		remote.errs = map[string]error{}
	}
	return New(store, remote, logger.New("development"))
}

func phoneEntry(id, digits string) *domain.SearchEntry {
	return &domain.SearchEntry{
		ID: id, Kind: domain.KindPhoneNumber,
		SearchKey: digits, ContactNumber: digits,
		Resolution: domain.ResolutionPending, Import: domain.ImportIdle,
	}
}

func crmEntry(id, guid string) *domain.SearchEntry {
	return &domain.SearchEntry{
		ID: id, Kind: domain.KindCrmReference,
		SearchKey: guid,
		Resolution: domain.ResolutionPending, Import: domain.ImportIdle,
	}
}

func TestResolveLocalMatchSkipsRemote(t *testing.T) {
	store := &fakeStore{byPhone: map[string]*domain.Prospect{
		"5512345678": {FullName: "Ya Importado", Phone: "5512345678"},
	}}
	remote := &fakeRemote{}
	r := newResolver(store, remote)

	entries := r.ResolveAll(context.Background(), []*domain.SearchEntry{phoneEntry("a", "5512345678")})

	e := entries[0]
	if e.Resolution != domain.ResolutionExistsLocally {
		t.Fatalf("resolution = %s, want exists_locally", e.Resolution)
	}
	if e.LocalMatch == nil || e.LocalMatch.FullName != "Ya Importado" {
		t.Fatalf("local match not attached: %+v", e.LocalMatch)
	}
	if remote.calls != 0 {
		t.Fatalf("remote should not be called on local match, got %d calls", remote.calls)
	}
}

func TestResolveRemoteFoundAndAutofill(t *testing.T) {
	remote := &fakeRemote{byLeadID: map[string]*domain.LeadIdentity{
		"guid-1": {LeadID: "guid-1", Name: "Ana", Phone: "+52 55 1234 5678"},
	}}
	r := newResolver(&fakeStore{}, remote)

	entries := r.ResolveAll(context.Background(), []*domain.SearchEntry{crmEntry("a", "guid-1")})

	e := entries[0]
	if e.Resolution != domain.ResolutionFound || e.Lead == nil {
		t.Fatalf("entry not resolved: %+v", e)
	}
	if e.ContactNumber != "5512345678" {
		t.Fatalf("contact number should autofill from remote phone, got %q", e.ContactNumber)
	}
	if e.LookupElapsed <= 0 {
		t.Fatal("lookup elapsed time must be recorded")
	}
}

func TestResolveDoesNotOverwriteContactNumber(t *testing.T) {
	remote := &fakeRemote{byPhone: map[string]*domain.LeadIdentity{
		"5512345678": {LeadID: "guid-1", Phone: "5599999999"},
	}}
	r := newResolver(&fakeStore{}, remote)

	entries := r.ResolveAll(context.Background(), []*domain.SearchEntry{phoneEntry("a", "5512345678")})
	if got := entries[0].ContactNumber; got != "5512345678" {
		t.Fatalf("existing contact number must be kept, got %q", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newResolver(&fakeStore{}, &fakeRemote{})
	entries := r.ResolveAll(context.Background(), []*domain.SearchEntry{crmEntry("a", "missing")})
	e := entries[0]
	if e.Resolution != domain.ResolutionNotFound {
		t.Fatalf("resolution = %s, want not_found", e.Resolution)
	}
	if e.ResolutionNote == "" {
		t.Fatal("not-found entries should carry a reason")
	}
}

func TestResolveMixedBatchSettlesAll(t *testing.T) {
	remote := &fakeRemote{
		byPhone: map[string]*domain.LeadIdentity{
			"5500000001": {LeadID: "l1"},
			"5500000002": {LeadID: "l2"},
			"5500000003": {LeadID: "l3"},
		},
		errs: map[string]error{
			"5500000004": errors.New("transporte caído"),
			"5500000005": errors.New("timeout"),
		},
	}
	r := newResolver(&fakeStore{}, remote)

	batch := []*domain.SearchEntry{
		phoneEntry("a", "5500000001"),
		phoneEntry("b", "5500000004"),
		phoneEntry("c", "5500000002"),
		phoneEntry("d", "5500000005"),
		phoneEntry("e", "5500000003"),
	}

	entries := r.ResolveAll(context.Background(), batch)
	if len(entries) != 5 {
		t.Fatalf("batch must keep all entries, got %d", len(entries))
	}

	var found, failed int
	for _, e := range entries {
		switch e.Resolution {
		case domain.ResolutionFound:
			found++
		case domain.ResolutionError:
			failed++
			if e.ResolutionNote == "" {
				t.Fatalf("error entry %s missing note", e.ID)
			}
		default:
			t.Fatalf("entry %s unexpected resolution %s", e.ID, e.Resolution)
		}
	}
	if found != 3 || failed != 2 {
		t.Fatalf("found=%d failed=%d, want 3/2", found, failed)
	}
}

func TestResolveStoreFaultFallsBackToRemote(t *testing.T) {
	store := &fakeStore{storeErr: errors.New("conexión perdida")}
	remote := &fakeRemote{byPhone: map[string]*domain.LeadIdentity{
		"5512345678": {LeadID: "l1"},
	}}
	r := newResolver(store, remote)

	entries := r.ResolveAll(context.Background(), []*domain.SearchEntry{phoneEntry("a", "5512345678")})
	if entries[0].Resolution != domain.ResolutionFound {
		t.Fatalf("store fault should degrade to remote lookup, got %s", entries[0].Resolution)
	}
}
