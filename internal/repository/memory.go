package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/medemi-triage-server/internal/domain"
)

// MemoryBookingRepository keeps bookings in process memory. It is used when
// no database is configured.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking
}

// NewMemoryBookingRepository creates an empty in-memory repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]domain.Booking)}
}

func (r *MemoryBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[b.BookingID]; exists {
		return fmt.Errorf("booking %s: %w", b.BookingID, domain.ErrAlreadyExists)
	}
	r.bookings[b.BookingID] = *b
	return nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking not found: %w", domain.ErrNotFound)
	}
	return &b, nil
}

func (r *MemoryBookingRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*domain.Booking
	for _, b := range r.bookings {
		if b.SessionID == sessionID {
			b := b
			bookings = append(bookings, &b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].BookingTime.Before(bookings[j].BookingTime)
	})
	return bookings, nil
}
