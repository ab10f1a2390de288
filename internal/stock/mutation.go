// Package stock holds the effect each operation kind has on an item.
//
// The set of kinds is closed: Mutation has an unexported method, so only this
// package can implement it, and For is the single switch that selects one.
package stock

import (
	"diplomsklad/internal/apierror"
	"diplomsklad/internal/model"
)

// DefaultQuantity is recorded when a request omits the quantity.
const DefaultQuantity = 1

// Mutation validates and applies one operation kind to an item.
type Mutation interface {
	Kind() model.OperationType
	// Validate checks the requested quantity before any row is read.
	Validate(quantity int) error
	// Check validates the request against the item's current state.
	Check(item *model.Item, quantity int) error
	// Apply mutates item in place. Check must have passed.
	Apply(item *model.Item, locationID uint, quantity int)

	sealed()
}

// For returns the mutation for kind.
func For(kind model.OperationType) (Mutation, error) {
	switch kind {
	case model.OperationReceive:
		return receive{}, nil
	case model.OperationShip:
		return ship{}, nil
	case model.OperationMove:
		return move{}, nil
	case model.OperationInventory:
		return inventory{}, nil
	}
	return nil, apierror.Invalid("unknown operation type %q", kind)
}

// Kinds lists every operation kind in a stable order.
func Kinds() []model.OperationType {
	return []model.OperationType{
		model.OperationReceive,
		model.OperationShip,
		model.OperationMove,
		model.OperationInventory,
	}
}

type receive struct{}

func (receive) Kind() model.OperationType { return model.OperationReceive }
func (receive) sealed()                   {}

func (receive) Validate(q int) error {
	if q < 1 {
		return apierror.Invalid("receive quantity must be at least 1, got %d", q)
	}
	return nil
}

func (receive) Check(*model.Item, int) error { return nil }

func (receive) Apply(it *model.Item, _ uint, q int) { it.Quantity += q }

type ship struct{}

func (ship) Kind() model.OperationType { return model.OperationShip }
func (ship) sealed()                   {}

func (ship) Validate(q int) error {
	if q < 1 {
		return apierror.Invalid("ship quantity must be at least 1, got %d", q)
	}
	return nil
}

func (ship) Check(it *model.Item, q int) error {
	if q > it.Quantity {
		return apierror.InsufficientStock("item %d has %d on hand, cannot ship %d", it.ID, it.Quantity, q)
	}
	return nil
}

func (ship) Apply(it *model.Item, _ uint, q int) { it.Quantity -= q }

// move relocates the item; the quantity is only recorded on the audit row.
type move struct{}

func (move) Kind() model.OperationType { return model.OperationMove }
func (move) sealed()                   {}

func (move) Validate(q int) error {
	if q < 0 {
		return apierror.Invalid("quantity must not be negative, got %d", q)
	}
	return nil
}

func (move) Check(*model.Item, int) error { return nil }

func (move) Apply(it *model.Item, locationID uint, _ int) {
	loc := locationID
	it.LocationID = &loc
}

// inventory sets the counted on-hand quantity.
type inventory struct{}

func (inventory) Kind() model.OperationType { return model.OperationInventory }
func (inventory) sealed()                   {}

func (inventory) Validate(q int) error {
	if q < 0 {
		return apierror.Invalid("inventory count must not be negative, got %d", q)
	}
	return nil
}

func (inventory) Check(*model.Item, int) error { return nil }

func (inventory) Apply(it *model.Item, _ uint, q int) { it.Quantity = q }
