package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the aggregate root for a consumable stock item. Quantity is
// allowed to go negative: deduction is advisory, and a negative balance is
// a warning condition, not an error.
type Product struct {
	ID           string        `bson:"_id"`
	LaboratoryID string        `bson:"laboratoryId"`
	Name         string        `bson:"name"`
	Quantity     float64       `bson:"quantity"`
	Unit         string        `bson:"unit"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
	DomainEvents []DomainEvent `bson:"-"`
}

// NewProduct creates a new Product aggregate
func NewProduct(laboratoryID, name string, quantity float64, unit string) (*Product, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Product{
		ID:           uuid.New().String(),
		LaboratoryID: laboratoryID,
		Name:         name,
		Quantity:     quantity,
		Unit:         unit,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}, nil
}

// Receive adds stock
func (p *Product) Receive(quantity float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Quantity += quantity
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(&StockReceivedEvent{
		ProductID:    p.ID,
		LaboratoryID: p.LaboratoryID,
		Quantity:     quantity,
		Unit:         p.Unit,
		NewQuantity:  p.Quantity,
		ReceivedAt:   time.Now(),
	})
	return nil
}

// Deduct decrements stock for a completed execution. The decrement is
// applied even when the result goes negative; a negative result emits an
// alert event alongside the deduction event.
func (p *Product) Deduct(quantity float64, executionID string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Quantity -= quantity
	p.UpdatedAt = time.Now()

	now := time.Now()
	p.AddDomainEvent(&StockDeductedEvent{
		ProductID:    p.ID,
		LaboratoryID: p.LaboratoryID,
		ExecutionID:  executionID,
		Quantity:     quantity,
		Unit:         p.Unit,
		NewQuantity:  p.Quantity,
		DeductedAt:   now,
	})

	if p.Quantity < 0 {
		p.AddDomainEvent(&NegativeStockEvent{
			ProductID:    p.ID,
			LaboratoryID: p.LaboratoryID,
			Quantity:     p.Quantity,
			Unit:         p.Unit,
			AlertedAt:    now,
		})
	}

	return nil
}

// IsNegative reports whether stock has gone below zero
func (p *Product) IsNegative() bool {
	return p.Quantity < 0
}

// AddDomainEvent adds a domain event
func (p *Product) AddDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (p *Product) ClearDomainEvents() {
	p.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (p *Product) GetDomainEvents() []DomainEvent {
	return p.DomainEvents
}
