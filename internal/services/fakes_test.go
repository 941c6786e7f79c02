package services

import (
	"context"
	"errors"
	"sync"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/pkg/invoiceapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repositories for service tests. The mutating operations keep the
// same conditional semantics as the mongodb implementations: DecrementStock
// and ClaimTurn are compare-and-swap under one lock, and SpinRecord.Create
// rejects a duplicate (sessionId, turnIndex) pair the way the unique index
// does.

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[primitive.ObjectID]*models.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) FindByCode(ctx context.Context, code string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.Code == code {
			copied := *event
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) FindAll(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, event := range r.events {
		if status == "" || event.Status == status {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[primitive.ObjectID]*models.EventRule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[primitive.ObjectID]*models.EventRule)}
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *models.EventRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule.ID.IsZero() {
		rule.ID = primitive.NewObjectID()
	}
	stored := *rule
	r.rules[rule.ID] = &stored
	return nil
}

func (r *fakeRuleRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *rule
	return &copied, nil
}

func (r *fakeRuleRepo) Update(ctx context.Context, rule *models.EventRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *rule
	r.rules[rule.ID] = &stored
	return nil
}

func (r *fakeRuleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, id)
	return nil
}

func (r *fakeRuleRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EventRule
	for _, rule := range r.rules {
		if rule.EventID == eventID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

type fakePrizeRepo struct {
	mu     sync.Mutex
	prizes map[primitive.ObjectID]*models.Prize
}

func newFakePrizeRepo() *fakePrizeRepo {
	return &fakePrizeRepo{prizes: make(map[primitive.ObjectID]*models.Prize)}
}

func (r *fakePrizeRepo) Create(ctx context.Context, prize *models.Prize) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	stored := *prize
	r.prizes[prize.ID] = &stored
	return nil
}

func (r *fakePrizeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prize, ok := r.prizes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *prize
	return &copied, nil
}

func (r *fakePrizeRepo) Update(ctx context.Context, prize *models.Prize) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prizes[prize.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *prize
	r.prizes[prize.ID] = &stored
	return nil
}

func (r *fakePrizeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prizes, id)
	return nil
}

func (r *fakePrizeRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.Prize, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prize
	for _, prize := range r.prizes {
		if prize.EventID == eventID {
			copied := *prize
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeInventoryRepo struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]*models.BranchInventory
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{rows: make(map[primitive.ObjectID]*models.BranchInventory)}
}

func (r *fakeInventoryRepo) Upsert(ctx context.Context, inv *models.BranchInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	stored := *inv
	r.rows[inv.ID] = &stored
	return nil
}

func (r *fakeInventoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.BranchInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInventoryRepo) FindByBranchAndEvent(ctx context.Context, branchCode string, eventID primitive.ObjectID) ([]*models.BranchInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BranchInventory
	for _, inv := range r.rows {
		if inv.BranchCode == branchCode && inv.EventID == eventID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) DecrementStock(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok || inv.RemainingQuantity <= 0 {
		return false, nil
	}
	inv.RemainingQuantity--
	return true, nil
}

func (r *fakeInventoryRepo) RestoreStock(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	inv.RemainingQuantity++
	return nil
}

func (r *fakeInventoryRepo) remaining(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.rows[id]; ok {
		return inv.RemainingQuantity
	}
	return -1
}

type sessionKey struct {
	eventID primitive.ObjectID
	code    string
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*models.Session
	byCode   map[sessionKey]primitive.ObjectID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[primitive.ObjectID]*models.Session),
		byCode:   make(map[sessionKey]primitive.ObjectID),
	}
}

func (r *fakeSessionRepo) CreateIfAbsent(ctx context.Context, session *models.Session) (*models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey{session.EventID, session.PurchaseCode}
	if id, ok := r.byCode[key]; ok {
		copied := *r.sessions[id]
		return &copied, false, nil
	}
	stored := *session
	stored.ID = primitive.NewObjectID()
	r.sessions[stored.ID] = &stored
	r.byCode[key] = stored.ID
	copied := stored
	return &copied, true, nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) FindByEventAndCode(ctx context.Context, eventID primitive.ObjectID, purchaseCode string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byCode[sessionKey{eventID, purchaseCode}]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *r.sessions[id]
	return &copied, nil
}

func (r *fakeSessionRepo) ClaimTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsValid {
		return false, nil
	}
	if session.UsedTurns != turnIndex-1 || session.UsedTurns >= session.TotalTurns {
		return false, nil
	}
	session.UsedTurns++
	return true, nil
}

func (r *fakeSessionRepo) ReleaseTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if session.UsedTurns == turnIndex {
		session.UsedTurns--
	}
	return nil
}

func (r *fakeSessionRepo) usedTurns(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session.UsedTurns
	}
	return -1
}

type spinKey struct {
	sessionID primitive.ObjectID
	turnIndex int
}

type fakeSpinRepo struct {
	mu      sync.Mutex
	records map[spinKey]*models.SpinRecord
	// failCreate makes the next Create calls fail, for compensation tests.
	failCreate bool
}

func newFakeSpinRepo() *fakeSpinRepo {
	return &fakeSpinRepo{records: make(map[spinKey]*models.SpinRecord)}
}

func (r *fakeSpinRepo) Create(ctx context.Context, record *models.SpinRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("write unavailable")
	}
	key := spinKey{record.SessionID, record.TurnIndex}
	if _, ok := r.records[key]; ok {
		return errors.New("duplicate key")
	}
	record.ID = primitive.NewObjectID()
	stored := *record
	r.records[key] = &stored
	return nil
}

func (r *fakeSpinRepo) FindBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.SpinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SpinRecord
	for _, record := range r.records {
		if record.SessionID == sessionID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSpinRepo) FindBySessionAndTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (*models.SpinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[spinKey{sessionID, turnIndex}]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *record
	return &copied, nil
}

func (r *fakeSpinRepo) count(sessionID primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, record := range r.records {
		if record.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (r *fakeSpinRepo) setFailCreate(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate = fail
}

type fakePurchaseSource struct {
	mu        sync.Mutex
	purchases map[string]*models.Purchase
	err       error
}

var _ invoiceapi.PurchaseSource = (*fakePurchaseSource)(nil)

func newFakePurchaseSource() *fakePurchaseSource {
	return &fakePurchaseSource{purchases: make(map[string]*models.Purchase)}
}

func (s *fakePurchaseSource) GetPurchase(ctx context.Context, code string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	purchase, ok := s.purchases[code]
	if !ok {
		return nil, invoiceapi.ErrNotFound
	}
	copied := *purchase
	return &copied, nil
}
