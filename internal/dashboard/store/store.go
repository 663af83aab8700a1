// Package store resolves the set of cases a requester may see on the
// dashboard.
package store

import (
	"context"
	"sort"

	casesModels "casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
)

type CaseSnapshotter interface {
	Snapshot() []casesModels.Case
}

type SubscriptionIndex interface {
	CaseIDsForEmail(ctx context.Context, email string) ([]id.CaseID, error)
}

// InMemory composes the in-memory case and subscription stores.
type InMemory struct {
	cases CaseSnapshotter
	subs  SubscriptionIndex
}

func NewInMemory(cases CaseSnapshotter, subs SubscriptionIndex) *InMemory {
	return &InMemory{cases: cases, subs: subs}
}

// VisibleCases returns cases subscribed by email or linked to idNumber,
// each case once, newest first.
func (s *InMemory) VisibleCases(ctx context.Context, email, idNumber string) ([]casesModels.Case, error) {
	subscribed, err := s.subscribedSet(ctx, email)
	if err != nil {
		return nil, err
	}
	var out []casesModels.Case
	for _, c := range s.cases.Snapshot() {
		_, followed := subscribed[c.ID]
		if followed || (idNumber != "" && c.IDNumber == idNumber) {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// SubscribedCases returns only the cases email follows, newest first.
func (s *InMemory) SubscribedCases(ctx context.Context, email string) ([]casesModels.Case, error) {
	subscribed, err := s.subscribedSet(ctx, email)
	if err != nil {
		return nil, err
	}
	var out []casesModels.Case
	for _, c := range s.cases.Snapshot() {
		if _, ok := subscribed[c.ID]; ok {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) subscribedSet(ctx context.Context, email string) (map[id.CaseID]struct{}, error) {
	set := make(map[id.CaseID]struct{})
	if email == "" {
		return set, nil
	}
	ids, err := s.subs.CaseIDsForEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, caseID := range ids {
		set[caseID] = struct{}{}
	}
	return set, nil
}

func sortNewestFirst(cases []casesModels.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].OBNumber < cases[j].OBNumber
		}
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
}
