package domain

import "testing"

func TestNewProduct(t *testing.T) {
	t.Run("rejects negative initial quantity", func(t *testing.T) {
		if _, err := NewProduct("lab-1", "Buffer", -1, "mL"); err != ErrInvalidQuantity {
			t.Errorf("NewProduct() error = %v, want %v", err, ErrInvalidQuantity)
		}
	})

	t.Run("creates product", func(t *testing.T) {
		product, err := NewProduct("lab-1", "Buffer", 12, "mL")
		if err != nil {
			t.Fatalf("NewProduct() error = %v, want nil", err)
		}
		if product.Quantity != 12 || product.Unit != "mL" {
			t.Errorf("product = %+v, want quantity 12 mL", product)
		}
	})
}

func TestProduct_Deduct(t *testing.T) {
	t.Run("decrements stock and emits event", func(t *testing.T) {
		product, _ := NewProduct("lab-1", "Buffer", 12, "mL")
		product.ClearDomainEvents()

		if err := product.Deduct(5, "exec-1"); err != nil {
			t.Fatalf("Deduct() error = %v, want nil", err)
		}

		if product.Quantity != 7 {
			t.Errorf("Quantity = %v, want 7", product.Quantity)
		}
		events := product.GetDomainEvents()
		if len(events) != 1 || events[0].EventType() != "lab.inventory.stock-deducted" {
			t.Errorf("events = %v, want one stock-deducted", events)
		}
	})

	t.Run("allows stock to go negative with alert", func(t *testing.T) {
		product, _ := NewProduct("lab-1", "Buffer", 3, "mL")
		product.ClearDomainEvents()

		if err := product.Deduct(5, "exec-1"); err != nil {
			t.Fatalf("Deduct() error = %v, want nil", err)
		}

		if product.Quantity != -2 {
			t.Errorf("Quantity = %v, want -2", product.Quantity)
		}
		if !product.IsNegative() {
			t.Error("IsNegative() = false, want true")
		}

		events := product.GetDomainEvents()
		if len(events) != 2 {
			t.Fatalf("events = %d, want deduction plus alert", len(events))
		}
		if events[1].EventType() != "lab.inventory.negative-stock-alert" {
			t.Errorf("second event = %v, want negative-stock-alert", events[1].EventType())
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		product, _ := NewProduct("lab-1", "Buffer", 3, "mL")
		if err := product.Deduct(0, ""); err != ErrInvalidQuantity {
			t.Errorf("Deduct() error = %v, want %v", err, ErrInvalidQuantity)
		}
	})
}

func TestProduct_Receive(t *testing.T) {
	product, _ := NewProduct("lab-1", "Buffer", 3, "mL")
	product.ClearDomainEvents()

	if err := product.Receive(7); err != nil {
		t.Fatalf("Receive() error = %v, want nil", err)
	}
	if product.Quantity != 10 {
		t.Errorf("Quantity = %v, want 10", product.Quantity)
	}
	if err := product.Receive(-1); err != ErrInvalidQuantity {
		t.Errorf("Receive() error = %v, want %v", err, ErrInvalidQuantity)
	}
}
