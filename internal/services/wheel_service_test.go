package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/congdat192/LuckySpin-sub000/internal/engine"
	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type wheelFixture struct {
	events    *fakeEventRepo
	rules     *fakeRuleRepo
	prizes    *fakePrizeRepo
	inventory *fakeInventoryRepo
	sessions  *fakeSessionRepo
	spins     *fakeSpinRepo
	source    *fakePurchaseSource
	service   *WheelServiceImpl
	eventID   primitive.ObjectID
}

func newWheelFixture(t *testing.T) *wheelFixture {
	t.Helper()
	f := &wheelFixture{
		events:    newFakeEventRepo(),
		rules:     newFakeRuleRepo(),
		prizes:    newFakePrizeRepo(),
		inventory: newFakeInventoryRepo(),
		sessions:  newFakeSessionRepo(),
		spins:     newFakeSpinRepo(),
		source:    newFakePurchaseSource(),
	}
	f.service = NewWheelService(f.events, f.rules, f.prizes, f.inventory,
		f.sessions, f.spins, f.source, engine.NewPicker(1))

	event := &models.Event{
		Name:    "Tet Lucky Wheel",
		Code:    "TET2026",
		StartAt: time.Now().Add(-time.Hour),
		EndAt:   time.Now().Add(24 * time.Hour),
		Status:  models.EventStatusActive,
	}
	require.NoError(t, f.events.Create(context.Background(), event))
	f.eventID = event.ID
	return f
}

func (f *wheelFixture) addEligibilityRule(t *testing.T, conds models.EligibilityConditions) primitive.ObjectID {
	t.Helper()
	rule := &models.EventRule{
		EventID:    f.eventID,
		RuleType:   models.RuleTypeEligibility,
		Priority:   10,
		IsActive:   true,
		Conditions: &conds,
	}
	require.NoError(t, f.rules.Create(context.Background(), rule))
	return rule.ID
}

func (f *wheelFixture) addTurnRule(t *testing.T, formula models.TurnFormula) primitive.ObjectID {
	t.Helper()
	rule := &models.EventRule{
		EventID:  f.eventID,
		RuleType: models.RuleTypeTurnCalculation,
		Priority: 5,
		IsActive: true,
		Formula:  &formula,
	}
	require.NoError(t, f.rules.Create(context.Background(), rule))
	return rule.ID
}

func (f *wheelFixture) addWheelSlot(t *testing.T, name string, prizeType models.PrizeType, weight, remaining int, branch string) primitive.ObjectID {
	t.Helper()
	prize := &models.Prize{EventID: f.eventID, Name: name, PrizeType: prizeType, DefaultWeight: weight}
	require.NoError(t, f.prizes.Create(context.Background(), prize))
	inv := &models.BranchInventory{
		EventID:           f.eventID,
		PrizeID:           prize.ID,
		BranchCode:        branch,
		InitialQuantity:   remaining,
		RemainingQuantity: remaining,
	}
	require.NoError(t, f.inventory.Upsert(context.Background(), inv))
	return inv.ID
}

func (f *wheelFixture) addPurchase(code string, total int64, branch string) {
	f.source.purchases[code] = &models.Purchase{
		Code:        code,
		Total:       total,
		BranchCode:  branch,
		PurchasedAt: time.Now(),
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestValidateCreatesSessionWithComputedTurns(t *testing.T) {
	f := newWheelFixture(t)
	f.addEligibilityRule(t, models.EligibilityConditions{MinInvoiceTotal: int64Ptr(500000)})
	f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 2})
	f.addPurchase("HD001", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD001")
	require.NoError(t, err)
	assert.True(t, session.IsValid)
	assert.Equal(t, 2, session.TotalTurns)
	assert.Equal(t, 0, session.UsedTurns)
	assert.Equal(t, "CN01", session.BranchCode)
	assert.Equal(t, int64(750000), session.InvoiceTotal)
}

func TestValidateIneligiblePurchaseGetsZeroTurnSession(t *testing.T) {
	f := newWheelFixture(t)
	f.addEligibilityRule(t, models.EligibilityConditions{MinInvoiceTotal: int64Ptr(500000)})
	f.addPurchase("HD002", 100000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD002")
	require.NoError(t, err, "an ineligible purchase is an outcome, not an error")
	assert.False(t, session.IsValid)
	assert.Equal(t, 0, session.TotalTurns)
	assert.NotEmpty(t, session.InvalidReason)
}

func TestValidateSessionIsFrozenAgainstRuleChanges(t *testing.T) {
	f := newWheelFixture(t)
	ruleID := f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 2})
	f.addPurchase("HD003", 750000, "CN01")

	first, err := f.service.Validate(context.Background(), f.eventID, "HD003")
	require.NoError(t, err)
	require.Equal(t, 2, first.TotalTurns)

	// Rewriting the rule set must not touch the frozen budget.
	require.NoError(t, f.rules.Delete(context.Background(), ruleID))
	f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 9})

	second, err := f.service.Validate(context.Background(), f.eventID, "HD003")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.TotalTurns)
}

func TestValidateRejectsUnknownOrInactiveEvent(t *testing.T) {
	f := newWheelFixture(t)
	f.addPurchase("HD004", 750000, "CN01")

	_, err := f.service.Validate(context.Background(), primitive.NewObjectID(), "HD004")
	assert.ErrorIs(t, err, ErrEventNotFound)

	event, findErr := f.events.FindByID(context.Background(), f.eventID)
	require.NoError(t, findErr)
	event.Status = models.EventStatusDeactivated
	require.NoError(t, f.events.Update(context.Background(), event))

	_, err = f.service.Validate(context.Background(), f.eventID, "HD004")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestValidateCreatesNoSessionWhenPurchaseLookupFails(t *testing.T) {
	f := newWheelFixture(t)

	_, err := f.service.Validate(context.Background(), f.eventID, "HD404")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)

	f.source.err = context.DeadlineExceeded
	_, err = f.service.Validate(context.Background(), f.eventID, "HD500")
	assert.ErrorIs(t, err, ErrPurchaseUnavailable)

	_, findErr := f.sessions.FindByEventAndCode(context.Background(), f.eventID, "HD404")
	assert.Error(t, findErr, "a failed lookup must not leave a session behind")
	_, findErr = f.sessions.FindByEventAndCode(context.Background(), f.eventID, "HD500")
	assert.Error(t, findErr)
}

func TestSpinEndToEnd(t *testing.T) {
	f := newWheelFixture(t)
	f.addEligibilityRule(t, models.EligibilityConditions{MinInvoiceTotal: int64Ptr(500000)})
	f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 1})
	voucherInv := f.addWheelSlot(t, "Prize A", models.PrizeTypeVoucher, 10, 1, "CN01")
	f.addWheelSlot(t, "Better luck next time", models.PrizeTypeNoPrize, 90, 0, "CN01")
	f.addPurchase("HD010", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD010")
	require.NoError(t, err)
	require.Equal(t, 1, session.TotalTurns)

	result, err := f.service.Spin(context.Background(), session.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnIndex)
	assert.Equal(t, 0, result.TurnsLeft)
	switch result.PrizeType {
	case models.PrizeTypeVoucher:
		assert.True(t, result.IsWinner)
		assert.NotEmpty(t, result.VoucherCode)
		assert.Equal(t, 0, f.inventory.remaining(voucherInv))
	case models.PrizeTypeNoPrize:
		assert.False(t, result.IsWinner)
		assert.Empty(t, result.VoucherCode)
		assert.Equal(t, 1, f.inventory.remaining(voucherInv))
	default:
		t.Fatalf("unexpected prize type %s", result.PrizeType)
	}

	record, err := f.spins.FindBySessionAndTurn(context.Background(), session.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, result.PrizeType, record.PrizeType)

	// Replaying the spent turn reports a duplicate, even though the budget is
	// also exhausted.
	_, err = f.service.Spin(context.Background(), session.ID, 1)
	assert.ErrorIs(t, err, ErrDuplicateTurn)

	_, err = f.service.Spin(context.Background(), session.ID, 2)
	assert.ErrorIs(t, err, ErrTurnsExhausted)

	assert.Equal(t, 1, f.spins.count(session.ID))
}

func TestSpinRejectsInvalidSession(t *testing.T) {
	f := newWheelFixture(t)
	f.addEligibilityRule(t, models.EligibilityConditions{MinInvoiceTotal: int64Ptr(500000)})
	f.addWheelSlot(t, "Better luck next time", models.PrizeTypeNoPrize, 100, 0, "CN01")
	f.addPurchase("HD011", 100000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD011")
	require.NoError(t, err)
	require.False(t, session.IsValid)

	_, err = f.service.Spin(context.Background(), session.ID, 1)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSpinRejectsOutOfOrderTurns(t *testing.T) {
	f := newWheelFixture(t)
	f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 3})
	f.addWheelSlot(t, "Better luck next time", models.PrizeTypeNoPrize, 100, 0, "CN01")
	f.addPurchase("HD012", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD012")
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 2)
	assert.ErrorIs(t, err, ErrTurnOutOfOrder)

	_, err = f.service.Spin(context.Background(), session.ID, 1)
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 3)
	assert.ErrorIs(t, err, ErrTurnOutOfOrder)

	_, err = f.service.Spin(context.Background(), session.ID, 2)
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 4)
	assert.ErrorIs(t, err, ErrTurnsExhausted)
}

func TestSpinUnknownSession(t *testing.T) {
	f := newWheelFixture(t)
	_, err := f.service.Spin(context.Background(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentSpinsOnSameTurnHaveOneWinner(t *testing.T) {
	f := newWheelFixture(t)
	f.addWheelSlot(t, "Better luck next time", models.PrizeTypeNoPrize, 100, 0, "CN01")
	f.addPurchase("HD020", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD020")
	require.NoError(t, err)
	require.Equal(t, 1, session.TotalTurns)

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Spin(context.Background(), session.ID, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateTurn)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.sessions.usedTurns(session.ID))
	assert.Equal(t, 1, f.spins.count(session.ID))
}

func TestConcurrentSpinsNeverOversellLastUnit(t *testing.T) {
	f := newWheelFixture(t)
	inv := f.addWheelSlot(t, "Prize A", models.PrizeTypeVoucher, 100, 1, "CN01")

	const sessions = 10
	ids := make([]primitive.ObjectID, sessions)
	for i := 0; i < sessions; i++ {
		code := "HD03" + string(rune('0'+i))
		f.addPurchase(code, 750000, "CN01")
		session, err := f.service.Validate(context.Background(), f.eventID, code)
		require.NoError(t, err)
		ids[i] = session.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Spin(context.Background(), ids[i], 1)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, ErrNoPrizesAvailable)
		// A losing spin must hand the claimed turn back.
		assert.Equal(t, 0, f.sessions.usedTurns(ids[i]))
	}
	assert.Equal(t, 1, winners, "exactly one spin may take the last unit")
	assert.Equal(t, 0, f.inventory.remaining(inv))
}

func TestSpinNoPrizesAvailableWithoutFallback(t *testing.T) {
	f := newWheelFixture(t)
	f.addWheelSlot(t, "Prize A", models.PrizeTypeVoucher, 100, 0, "CN01")
	f.addPurchase("HD040", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD040")
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 1)
	assert.ErrorIs(t, err, ErrNoPrizesAvailable)
	assert.Equal(t, 0, f.sessions.usedTurns(session.ID),
		"a spin that allocated nothing must not consume the turn")
}

func TestSpinZeroWeightWheelIsMisconfigured(t *testing.T) {
	f := newWheelFixture(t)
	f.addWheelSlot(t, "Prize A", models.PrizeTypeVoucher, 0, 5, "CN01")
	f.addPurchase("HD041", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD041")
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 1)
	assert.ErrorIs(t, err, ErrWheelMisconfigured)
	assert.Equal(t, 0, f.sessions.usedTurns(session.ID))
}

func TestSpinCompensatesWhenRecordWriteFails(t *testing.T) {
	f := newWheelFixture(t)
	inv := f.addWheelSlot(t, "Prize A", models.PrizeTypeVoucher, 100, 5, "CN01")
	f.addPurchase("HD050", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD050")
	require.NoError(t, err)

	f.spins.setFailCreate(true)
	_, err = f.service.Spin(context.Background(), session.ID, 1)
	assert.ErrorIs(t, err, ErrSpinConflict)
	assert.Equal(t, 5, f.inventory.remaining(inv), "the decremented unit must be restored")
	assert.Equal(t, 0, f.sessions.usedTurns(session.ID), "the claimed turn must be released")
	assert.Equal(t, 0, f.spins.count(session.ID))

	// The same turn can be retried once the store recovers.
	f.spins.setFailCreate(false)
	result, err := f.service.Spin(context.Background(), session.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnIndex)
	assert.Equal(t, 4, f.inventory.remaining(inv))
}

func TestGetSessionReturnsHistory(t *testing.T) {
	f := newWheelFixture(t)
	f.addTurnRule(t, models.TurnFormula{Type: models.FormulaTypeFixed, Turns: 2})
	f.addWheelSlot(t, "Better luck next time", models.PrizeTypeNoPrize, 100, 0, "CN01")
	f.addPurchase("HD060", 750000, "CN01")

	session, err := f.service.Validate(context.Background(), f.eventID, "HD060")
	require.NoError(t, err)

	_, err = f.service.Spin(context.Background(), session.ID, 1)
	require.NoError(t, err)

	got, records, err := f.service.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, 1, got.UsedTurns)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].TurnIndex)

	_, _, err = f.service.GetSession(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
