package cart

import (
	"strings"
	"sync"

	"storefront/internal/pricing"
)

// Store holds the cart state. Every transition is a single state replacement
// under the mutex; network calls never run while it is held.
type Store struct {
	mu sync.Mutex

	items []LineItem
	mode  pricing.Mode

	// seq increases whenever items or the chosen discount change.
	seq uint64
	// promoSeq is the seq the installed server promo was computed for.
	promoSeq    uint64
	manualPromo string
}

func NewStore() *Store {
	return &Store{mode: pricing.NoDiscount{}}
}

// Add accumulates quantity onto an existing line or appends a new one.
// Stock limits are the caller's concern.
func (s *Store) Add(p Product, quantity int) (Snapshot, error) {
	if quantity <= 0 {
		return s.Snapshot(), ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := copyItems(s.items)
	found := false
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, LineItem{
			ProductID:  p.ID,
			Name:       p.Name,
			UnitPrice:  p.Price,
			Quantity:   quantity,
			StockLimit: p.Stock,
			ImageURL:   p.ImageURL,
		})
	}

	s.items = items
	s.seq++
	return s.snapshotLocked(), nil
}

// UpdateQuantity replaces the quantity of a line; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(productID int64, quantity int) Snapshot {
	if quantity <= 0 {
		return s.Remove(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := copyItems(s.items)
	for i := range items {
		if items[i].ProductID == productID {
			if items[i].Quantity == quantity {
				break
			}
			items[i].Quantity = quantity
			s.items = items
			s.seq++
			break
		}
	}
	return s.snapshotLocked()
}

// Remove drops the line if present.
func (s *Store) Remove(productID int64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, 0, len(s.items))
	for _, it := range s.items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	if len(items) != len(s.items) {
		s.items = items
		s.seq++
	}
	return s.snapshotLocked()
}

// Clear resets to the canonical empty state.
func (s *Store) Clear() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.mode = pricing.NoDiscount{}
	s.manualPromo = ""
	s.promoSeq = 0
	s.seq++
	return s.snapshotLocked()
}

// ApplyLegacyCoupon switches to the coupon's percentage discount. An unknown
// code leaves the state untouched.
func (s *Store) ApplyLegacyCoupon(code string) (Snapshot, error) {
	pct, ok := LookupCoupon(code)
	if !ok {
		return s.Snapshot(), ErrInvalidCoupon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = pricing.LegacyPercent{Code: strings.TrimSpace(code), Percent: pct}
	s.manualPromo = ""
	s.seq++
	return s.snapshotLocked(), nil
}

// ApplyPromo installs a server promo computed for the cart at seq. Responses
// for an older cart are rejected with ErrStalePromo.
func (s *Store) ApplyPromo(seq uint64, promo pricing.ServerPromo, manual bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return s.snapshotLocked(), ErrStalePromo
	}

	s.mode = promo
	s.promoSeq = seq
	if manual {
		s.manualPromo = promo.Code
	} else {
		s.manualPromo = ""
	}
	return s.snapshotLocked(), nil
}

// ClearPromo drops a server promo. A legacy coupon is left in place.
func (s *Store) ClearPromo() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode.Kind() == pricing.KindPromo {
		s.mode = pricing.NoDiscount{}
	}
	s.manualPromo = ""
	s.promoSeq = 0
	return s.snapshotLocked()
}

// Hydrate replaces the items with a persisted list, dropping lines with a
// non-positive quantity and merging duplicate product ids.
func (s *Store) Hydrate(items []LineItem) Snapshot {
	clean := make([]LineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			clean[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(clean)
		clean = append(clean, it)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = clean
	s.seq++
	return s.snapshotLocked()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	mode := s.mode
	if mode == nil {
		mode = pricing.NoDiscount{}
	}
	items := copyItems(s.items)
	return Snapshot{
		Items:       items,
		Mode:        mode,
		Seq:         s.seq,
		PromoStale:  mode.Kind() == pricing.KindPromo && s.promoSeq != s.seq,
		ManualPromo: s.manualPromo,
		Breakdown:   pricing.Compute(toPricingLines(items), mode),
	}
}
