package cart

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"maeva_back_end/internal/config"
	"maeva_back_end/internal/models"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// failingPersister simule un stockage indisponible.
type failingPersister struct{}

func (failingPersister) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (failingPersister) Save(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingPersister) Delete(context.Context, string) error {
	return errors.New("connection refused")
}
func (failingPersister) Publish(context.Context, string, string) error {
	return errors.New("connection refused")
}

func TestServicePersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPersister()
	svc := NewService(store, Options{}, quietLogger())

	svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})
	svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})

	// un nouveau service sur le même stockage retrouve le panier
	reloaded := NewService(store, Options{}, quietLogger()).Get(ctx, "s1")
	if len(reloaded.Items) != 1 || reloaded.Items[0].Quantity != 3 {
		t.Fatalf("unexpected reloaded cart: %+v", reloaded)
	}
	if reloaded.TotalPrice != 1500 {
		t.Errorf("expected 1500, got %v", reloaded.TotalPrice)
	}
	if events := store.Events(Key("s1")); len(events) != 2 || events[0] != EventUpdated {
		t.Errorf("expected 2 update notifications, got %v", events)
	}
}

func TestServiceIgnoresCorruptedCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPersister()
	_ = store.Save(ctx, Key("s1"), []byte("{not json"), 0)

	svc := NewService(store, Options{}, quietLogger())
	if got := svc.Get(ctx, "s1"); len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}

	got := svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 100, Quantity: 1})
	if len(got.Items) != 1 {
		t.Errorf("expected mutation to succeed after corrupted load, got %+v", got)
	}
}

func TestServiceMutatesDespitePersistenceFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingPersister{}, Options{}, quietLogger())

	got := svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 250, Quantity: 4})
	if got.TotalItems != 4 || got.TotalPrice != 1000 {
		t.Errorf("expected in-memory mutation to succeed, got %+v", got)
	}
	if cleared := svc.Clear(ctx, "s1"); len(cleared.Items) != 0 {
		t.Errorf("expected empty cart after clear, got %+v", cleared)
	}
}

func TestServiceEmptyCartPolicy(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		policy   string
		retained bool
	}{
		{config.EmptyCartDelete, false},
		{config.EmptyCartRetain, true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			store := NewMemoryPersister()
			svc := NewService(store, Options{EmptyPolicy: tt.policy}, quietLogger())

			svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 100, Quantity: 1})
			_, n := svc.RemoveItem(ctx, "s1", Selector{ProductID: "p1"})
			if n != 1 {
				t.Fatalf("expected 1 removed line, got %d", n)
			}
			if store.Has(Key("s1")) != tt.retained {
				t.Errorf("policy %s: expected persisted copy retained=%v", tt.policy, tt.retained)
			}

			svc.Clear(ctx, "s1")
			if store.Has(Key("s1")) {
				t.Error("explicit clear must always delete the persisted copy")
			}
		})
	}
}

func TestServiceRemoveUnknownLineDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPersister()
	svc := NewService(store, Options{}, quietLogger())

	svc.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 100, Quantity: 1})
	before := len(store.Events(Key("s1")))

	if _, n := svc.RemoveItem(ctx, "s1", Selector{ProductID: "nope"}); n != 0 {
		t.Fatalf("expected nothing removed, got %d", n)
	}
	if _, n := svc.UpdateQuantity(ctx, "s1", Selector{ProductID: "nope"}, 3); n != 0 {
		t.Fatalf("expected nothing updated, got %d", n)
	}
	if after := len(store.Events(Key("s1"))); after != before {
		t.Errorf("expected no notification for no-op mutations, got %d new", after-before)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryPersister(), Options{}, quietLogger())

	svc.AddItem(ctx, "a", models.CartLine{ProductID: "p1", Price: 100, Quantity: 1})
	if got := svc.Get(ctx, "b"); len(got.Items) != 0 {
		t.Errorf("expected session b to be empty, got %+v", got)
	}
}
