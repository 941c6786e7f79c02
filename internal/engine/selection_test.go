package engine

import (
	"testing"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func row(prizeType models.PrizeType, weight, remaining int) models.InventoryRow {
	return models.InventoryRow{
		InventoryID: primitive.NewObjectID(),
		PrizeID:     primitive.NewObjectID(),
		PrizeType:   prizeType,
		Weight:      weight,
		Remaining:   remaining,
	}
}

func TestEligibleRowsDropsExhaustedStock(t *testing.T) {
	depleted := row(models.PrizeTypeVoucher, 50, 0)
	stocked := row(models.PrizeTypePhysical, 30, 4)
	fallback := row(models.PrizeTypeNoPrize, 20, 0)

	eligible := EligibleRows([]models.InventoryRow{depleted, stocked, fallback})

	require.Len(t, eligible, 2)
	for _, r := range eligible {
		assert.NotEqual(t, depleted.InventoryID, r.InventoryID)
	}
}

func TestEligibleRowsStableOrder(t *testing.T) {
	a := row(models.PrizeTypeVoucher, 10, 1)
	b := row(models.PrizeTypeNoPrize, 90, 0)
	c := row(models.PrizeTypePhysical, 5, 2)

	first := EligibleRows([]models.InventoryRow{a, b, c})
	second := EligibleRows([]models.InventoryRow{c, a, b})
	third := EligibleRows([]models.InventoryRow{b, c, a})

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestSelectPrizeZeroStockNeverDrawn(t *testing.T) {
	depleted := row(models.PrizeTypeVoucher, 1000, 0)
	stocked := row(models.PrizeTypePhysical, 1, 3)
	fallback := row(models.PrizeTypeNoPrize, 1, 0)
	rows := []models.InventoryRow{depleted, stocked, fallback}

	total := TotalWeight(EligibleRows(rows))
	require.Equal(t, int64(2), total, "the depleted row contributes no weight")

	for draw := int64(0); draw < total; draw++ {
		picked, err := SelectPrize(rows, draw)
		require.NoError(t, err)
		assert.NotEqual(t, depleted.InventoryID, picked.InventoryID,
			"draw %d must never land on a zero-stock prize", draw)
	}
}

func TestSelectPrizeDeterministicForSameDraw(t *testing.T) {
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 10, 5),
		row(models.PrizeTypePhysical, 30, 2),
		row(models.PrizeTypeNoPrize, 60, 0),
	}
	for draw := int64(0); draw < 100; draw++ {
		first, err := SelectPrize(rows, draw)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := SelectPrize(rows, draw)
			require.NoError(t, err)
			assert.Equal(t, first.InventoryID, again.InventoryID)
		}
	}
}

func TestSelectPrizeWalksWeightsInOrder(t *testing.T) {
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 3, 1),
		row(models.PrizeTypePhysical, 7, 1),
	}
	ordered := EligibleRows(rows)
	require.Len(t, ordered, 2)

	// Draws below the first weight land on the first row, the rest on the second.
	firstWeight := int64(ordered[0].Weight)
	for draw := int64(0); draw < 10; draw++ {
		picked, err := SelectPrize(rows, draw)
		require.NoError(t, err)
		if draw < firstWeight {
			assert.Equal(t, ordered[0].InventoryID, picked.InventoryID)
		} else {
			assert.Equal(t, ordered[1].InventoryID, picked.InventoryID)
		}
	}
}

func TestPickerExhaustedWheelFallsBackToNoPrize(t *testing.T) {
	fallback := row(models.PrizeTypeNoPrize, 90, 0)
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 10, 0),
		row(models.PrizeTypePhysical, 40, 0),
		fallback,
	}

	picker := NewPicker(42)
	for i := 0; i < 100; i++ {
		picked, err := picker.Pick(rows)
		require.NoError(t, err)
		assert.Equal(t, models.PrizeTypeNoPrize, picked.PrizeType)
	}
}

func TestPickerExhaustedWheelWithoutFallback(t *testing.T) {
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 10, 0),
		row(models.PrizeTypePhysical, 40, 0),
	}

	picker := NewPicker(42)
	_, err := picker.Pick(rows)
	assert.ErrorIs(t, err, ErrNoEligiblePrizes)
}

func TestPickerZeroTotalWeight(t *testing.T) {
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 0, 5),
		row(models.PrizeTypeNoPrize, 0, 0),
	}

	picker := NewPicker(1)
	_, err := picker.Pick(rows)
	assert.ErrorIs(t, err, ErrZeroTotalWeight)
}

func TestPickerEmptySnapshot(t *testing.T) {
	picker := NewPicker(1)
	_, err := picker.Pick(nil)
	assert.ErrorIs(t, err, ErrNoEligiblePrizes)
}

func TestPickerSeededSequenceIsReproducible(t *testing.T) {
	rows := []models.InventoryRow{
		row(models.PrizeTypeVoucher, 10, 100),
		row(models.PrizeTypePhysical, 30, 100),
		row(models.PrizeTypeNoPrize, 60, 0),
	}

	a := NewPicker(7)
	b := NewPicker(7)
	for i := 0; i < 200; i++ {
		pa, err := a.Pick(rows)
		require.NoError(t, err)
		pb, err := b.Pick(rows)
		require.NoError(t, err)
		assert.Equal(t, pa.InventoryID, pb.InventoryID)
	}
}
