package engine

import (
	"errors"
	"math/rand"
	"sort"
	"sync"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
)

var (
	// ErrNoEligiblePrizes means every finite prize is out of stock and the
	// wheel has no NO_PRIZE fallback slot. Callers surface this as a distinct
	// "no prizes available" condition, not a generic failure.
	ErrNoEligiblePrizes = errors.New("no eligible prize rows")
	// ErrZeroTotalWeight means the eligible rows sum to zero weight. This is a
	// wheel configuration error: nothing can be drawn.
	ErrZeroTotalWeight = errors.New("total selection weight is zero")
)

// EligibleRows filters an inventory snapshot down to selectable wheel slots
// and returns them sorted by inventory id. A row is selectable while it has
// remaining stock; NO_PRIZE rows are always selectable regardless of their
// counters. The stable ordering makes a (rows, draw) pair reproducible.
func EligibleRows(rows []models.InventoryRow) []models.InventoryRow {
	eligible := make([]models.InventoryRow, 0, len(rows))
	for _, row := range rows {
		if row.PrizeType == models.PrizeTypeNoPrize || row.Remaining > 0 {
			eligible = append(eligible, row)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].InventoryID.Hex() < eligible[j].InventoryID.Hex()
	})
	return eligible
}

// TotalWeight sums the selection weights of rows.
func TotalWeight(rows []models.InventoryRow) int64 {
	var total int64
	for _, row := range rows {
		if row.Weight > 0 {
			total += int64(row.Weight)
		}
	}
	return total
}

// SelectPrize performs roulette-wheel selection over an inventory snapshot.
// draw must be uniform in [0, TotalWeight(EligibleRows(rows))). The eligible
// rows are walked in stable order, subtracting each weight from the draw; the
// first row that takes the remainder negative wins.
func SelectPrize(rows []models.InventoryRow, draw int64) (*models.InventoryRow, error) {
	eligible := EligibleRows(rows)
	if len(eligible) == 0 {
		return nil, ErrNoEligiblePrizes
	}
	total := TotalWeight(eligible)
	if total <= 0 {
		return nil, ErrZeroTotalWeight
	}
	if draw < 0 || draw >= total {
		draw = ((draw % total) + total) % total
	}
	for i := range eligible {
		if eligible[i].Weight <= 0 {
			continue
		}
		draw -= int64(eligible[i].Weight)
		if draw < 0 {
			return &eligible[i], nil
		}
	}
	// Unreachable while TotalWeight matches the walk above.
	return &eligible[len(eligible)-1], nil
}

// Picker draws prizes using an injectable random source so that tests and
// audits can replay selections.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a Picker seeded from seed.
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Pick selects one row from the snapshot using the picker's random source.
func (p *Picker) Pick(rows []models.InventoryRow) (*models.InventoryRow, error) {
	eligible := EligibleRows(rows)
	if len(eligible) == 0 {
		return nil, ErrNoEligiblePrizes
	}
	total := TotalWeight(eligible)
	if total <= 0 {
		return nil, ErrZeroTotalWeight
	}
	p.mu.Lock()
	draw := p.rng.Int63n(total)
	p.mu.Unlock()
	return SelectPrize(eligible, draw)
}
