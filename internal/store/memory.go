// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"sort"
	"sync"

	"contentplanner/internal/models"
)

// MemoryStore keeps content pieces in process memory. It is used for local
// runs without a database and by the handler tests.
type MemoryStore struct {
	mu     sync.RWMutex
	pieces map[int64]models.ContentPiece
	lastID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pieces: make(map[int64]models.ContentPiece)}
}

// FindAll returns every content piece ordered by ID.
func (s *MemoryStore) FindAll(_ context.Context) ([]models.ContentPiece, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.ContentPiece, 0, len(s.pieces))
	for _, p := range s.pieces {
		items = append(items, clonePiece(p))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// FindByID retrieves a content piece by ID. Returns nil if not found.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*models.ContentPiece, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pieces[id]
	if !ok {
		return nil, nil
	}
	c := clonePiece(p)
	return &c, nil
}

// ExistsByID reports whether a content piece with the given ID exists.
func (s *MemoryStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pieces[id]
	return ok, nil
}

// Save assigns the next ID to new pieces and replaces existing ones.
func (s *MemoryStore) Save(_ context.Context, p *models.ContentPiece) (*models.ContentPiece, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := clonePiece(*p)
	if saved.ID == 0 {
		s.lastID++
		saved.ID = s.lastID
	} else if saved.ID > s.lastID {
		s.lastID = saved.ID
	}
	s.pieces[saved.ID] = saved

	out := clonePiece(saved)
	return &out, nil
}

// DeleteByID removes a content piece. Deleting a missing ID is a no-op.
func (s *MemoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pieces, id)
	return nil
}

// DeleteAll removes every content piece. IDs are not reused afterwards.
func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pieces = make(map[int64]models.ContentPiece)
	return nil
}

// Count returns the number of stored content pieces.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pieces), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// clonePiece copies p so callers can never mutate stored values through
// the shared pointer fields.
func clonePiece(p models.ContentPiece) models.ContentPiece {
	c := p
	c.Title = cloneString(p.Title)
	c.ContentPillar = cloneString(p.ContentPillar)
	c.Format = cloneString(p.Format)
	c.Status = cloneString(p.Status)
	c.Performance = cloneString(p.Performance)
	c.Notes = cloneString(p.Notes)
	c.Link = cloneString(p.Link)
	c.Script = cloneString(p.Script)
	c.Shotlist = cloneString(p.Shotlist)
	c.Hook = cloneString(p.Hook)
	c.Caption = cloneString(p.Caption)
	if p.UploadDate != nil {
		t := *p.UploadDate
		c.UploadDate = &t
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
