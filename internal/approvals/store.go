// Package approvals holds the read models for group invitations and
// workflow approval requests, each with a derived pending subset, plus the
// networked service that responds to them.
package approvals

import (
	"sync"

	approvalDatamodel "github.com/gradsync/portal/internal/core/datamodel/approval"
)

// InvitationStore keeps the invitation list and its pending subset. The
// subset is recomputed on wholesale replacement and maintained incrementally
// on single-item changes.
type InvitationStore struct {
	mu      sync.RWMutex
	items   []approvalDatamodel.GroupInvitation
	pending []approvalDatamodel.GroupInvitation
}

func NewInvitationStore() *InvitationStore {
	return &InvitationStore{
		items:   []approvalDatamodel.GroupInvitation{},
		pending: []approvalDatamodel.GroupInvitation{},
	}
}

func (s *InvitationStore) ReplaceAll(list []approvalDatamodel.GroupInvitation) {
	if list == nil {
		list = []approvalDatamodel.GroupInvitation{}
	}

	pending := []approvalDatamodel.GroupInvitation{}
	for _, inv := range list {
		if inv.Status == approvalDatamodel.InvitationPending {
			pending = append(pending, inv)
		}
	}

	s.mu.Lock()
	s.items = list
	s.pending = pending
	s.mu.Unlock()
}

func (s *InvitationStore) Add(inv approvalDatamodel.GroupInvitation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]approvalDatamodel.GroupInvitation{inv}, s.items...)
	if inv.Status == approvalDatamodel.InvitationPending {
		s.pending = append([]approvalDatamodel.GroupInvitation{inv}, s.pending...)
	}
}

func (s *InvitationStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = removeInvitation(s.items, id)
	s.pending = removeInvitation(s.pending, id)
}

// UpdateStatus rewrites one invitation's status; any status change drops it
// from the pending subset.
func (s *InvitationStore) UpdateStatus(id int64, status approvalDatamodel.InvitationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
			break
		}
	}
	s.pending = removeInvitation(s.pending, id)
}

func (s *InvitationStore) All() []approvalDatamodel.GroupInvitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]approvalDatamodel.GroupInvitation, len(s.items))
	copy(out, s.items)
	return out
}

func (s *InvitationStore) Pending() []approvalDatamodel.GroupInvitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]approvalDatamodel.GroupInvitation, len(s.pending))
	copy(out, s.pending)
	return out
}

func removeInvitation(list []approvalDatamodel.GroupInvitation, id int64) []approvalDatamodel.GroupInvitation {
	for i, inv := range list {
		if inv.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// ApprovalStore mirrors InvitationStore for approval requests.
type ApprovalStore struct {
	mu      sync.RWMutex
	items   []approvalDatamodel.ApprovalRequest
	pending []approvalDatamodel.ApprovalRequest
}

func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{
		items:   []approvalDatamodel.ApprovalRequest{},
		pending: []approvalDatamodel.ApprovalRequest{},
	}
}

func (s *ApprovalStore) ReplaceAll(list []approvalDatamodel.ApprovalRequest) {
	if list == nil {
		list = []approvalDatamodel.ApprovalRequest{}
	}

	pending := []approvalDatamodel.ApprovalRequest{}
	for _, a := range list {
		if a.Status == approvalDatamodel.ApprovalPending {
			pending = append(pending, a)
		}
	}

	s.mu.Lock()
	s.items = list
	s.pending = pending
	s.mu.Unlock()
}

func (s *ApprovalStore) Add(a approvalDatamodel.ApprovalRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]approvalDatamodel.ApprovalRequest{a}, s.items...)
	if a.Status == approvalDatamodel.ApprovalPending {
		s.pending = append([]approvalDatamodel.ApprovalRequest{a}, s.pending...)
	}
}

func (s *ApprovalStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = removeApproval(s.items, id)
	s.pending = removeApproval(s.pending, id)
}

func (s *ApprovalStore) UpdateStatus(id int64, status approvalDatamodel.ApprovalStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
			break
		}
	}
	s.pending = removeApproval(s.pending, id)
}

func (s *ApprovalStore) All() []approvalDatamodel.ApprovalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]approvalDatamodel.ApprovalRequest, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ApprovalStore) Pending() []approvalDatamodel.ApprovalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]approvalDatamodel.ApprovalRequest, len(s.pending))
	copy(out, s.pending)
	return out
}

func removeApproval(list []approvalDatamodel.ApprovalRequest, id int64) []approvalDatamodel.ApprovalRequest {
	for i, a := range list {
		if a.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
