package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// mockStore is an in-memory storage.Store for exercising the service layer
// without sqlite.
type mockStore struct {
	groups      map[string]*models.Group
	games       map[string]*models.Game
	txns        map[string]*models.Transaction
	settlements map[string]models.SettlementRecord
	users       map[string]*models.User
	nextID      int
}

func newMockStore() *mockStore {
	return &mockStore{
		groups:      make(map[string]*models.Group),
		games:       make(map[string]*models.Game),
		txns:        make(map[string]*models.Transaction),
		settlements: make(map[string]models.SettlementRecord),
		users:       make(map[string]*models.User),
	}
}

func (m *mockStore) genID() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func settlementKey(gameID, from, to string) string {
	return gameID + "|" + from + "|" + to
}

func (m *mockStore) CreateGroup(_ context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = m.genID()
	}
	m.groups[g.ID] = g
	return nil
}

func (m *mockStore) GetGroup(_ context.Context, id string) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return g, nil
}

func (m *mockStore) UpdateGroup(_ context.Context, g *models.Group) error {
	if _, ok := m.groups[g.ID]; !ok {
		return fmt.Errorf("group %s: %w", g.ID, storage.ErrNotFound)
	}
	m.groups[g.ID] = g
	return nil
}

func (m *mockStore) DeleteGroup(_ context.Context, id string) error {
	if _, ok := m.groups[id]; !ok {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	delete(m.groups, id)
	return nil
}

func (m *mockStore) ListGroups(_ context.Context) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockStore) CreateGame(_ context.Context, g *models.Game) error {
	if g.ID == "" {
		g.ID = m.genID()
	}
	if g.Status == "" {
		g.Status = models.GameActive
	}
	m.games[g.ID] = g
	return nil
}

func (m *mockStore) GetGame(_ context.Context, id string) (*models.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, storage.ErrNotFound)
	}
	return g, nil
}

func (m *mockStore) ListGamesByGroup(_ context.Context, groupID string) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range m.games {
		if g.GroupID == groupID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockStore) CompleteGame(_ context.Context, id string, completedAt int64) error {
	g, ok := m.games[id]
	if !ok {
		return fmt.Errorf("game %s: %w", id, storage.ErrNotFound)
	}
	g.Status = models.GameCompleted
	g.CompletedAt = completedAt
	return nil
}

func (m *mockStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = m.genID()
	}
	cp := *t
	m.txns[t.ID] = &cp
	return nil
}

func (m *mockStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	t, ok := m.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	if _, ok := m.txns[t.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", t.ID, storage.ErrNotFound)
	}
	cp := *t
	m.txns[t.ID] = &cp
	return nil
}

func (m *mockStore) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := m.txns[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	delete(m.txns, id)
	return nil
}

func (m *mockStore) ListTransactionsByGame(_ context.Context, gameID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range m.txns {
		if t.GameID == gameID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) UpsertSettlement(_ context.Context, r *models.SettlementRecord) error {
	if r.SettledAt == 0 {
		r.SettledAt = 1
	}
	m.settlements[settlementKey(r.GameID, r.FromUserID, r.ToUserID)] = *r
	return nil
}

func (m *mockStore) DeleteSettlement(_ context.Context, gameID, from, to string) (bool, error) {
	key := settlementKey(gameID, from, to)
	if _, ok := m.settlements[key]; !ok {
		return false, nil
	}
	delete(m.settlements, key)
	return true, nil
}

func (m *mockStore) ListSettlementsByGame(_ context.Context, gameID string) ([]models.SettlementRecord, error) {
	var out []models.SettlementRecord
	for _, r := range m.settlements {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) CreateUser(_ context.Context, u *models.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (m *mockStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (m *mockStore) Close() error { return nil }

var _ storage.Store = (*mockStore)(nil)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedGame creates a group and active game with the given participants.
func seedGame(t *testing.T, store *mockStore, participants []string) *models.Game {
	t.Helper()
	ctx := context.Background()
	group := &models.Group{Name: "test group", Members: participants}
	require.NoError(t, store.CreateGroup(ctx, group))
	game := &models.Game{GroupID: group.ID, Name: "test game", Participants: participants}
	require.NoError(t, store.CreateGame(ctx, game))
	return game
}

func record(t *testing.T, svc *GameService, gameID, userID string, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	txn, err := svc.RecordTransaction(context.Background(), gameID, userID, typ, d(amount), "")
	require.NoError(t, err)
	return txn
}

func TestCloseGameGate(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	game := seedGame(t, store, []string{"alice", "bob"})
	ctx := context.Background()

	record(t, svc, game.ID, "alice", models.BuyIn, "300.00")
	record(t, svc, game.ID, "bob", models.CashOut, "295.00")

	_, err := svc.CloseGame(ctx, game.ID)
	var oob *OutOfBalanceError
	require.ErrorAs(t, err, &oob)
	require.True(t, oob.Discrepancy.Equal(d("5.00")), "discrepancy = %s", oob.Discrepancy)

	// Within epsilon closes fine.
	record(t, svc, game.ID, "bob", models.CashOut, "4.99")
	closed, err := svc.CloseGame(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, models.GameCompleted, closed.Status)

	// Second close and post-close mutations are refused.
	_, err = svc.CloseGame(ctx, game.ID)
	require.ErrorIs(t, err, ErrGameCompleted)
	_, err = svc.RecordTransaction(ctx, game.ID, "alice", models.BuyIn, d("10.00"), "")
	require.ErrorIs(t, err, ErrGameCompleted)
}

func TestRecordTransactionValidation(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	game := seedGame(t, store, []string{"alice"})
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, game.ID, "stranger", models.BuyIn, d("10.00"), "")
	require.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.RecordTransaction(ctx, game.ID, "alice", models.BuyIn, d("-10.00"), "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordTransaction(ctx, game.ID, "alice", models.BuyIn, d("10.001"), "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMarkAndResetSettlement(t *testing.T) {
	store := newMockStore()
	games := NewGameService(store)
	settlements := NewSettlementService(store)
	game := seedGame(t, store, []string{"alice", "bob", "carol"})
	ctx := context.Background()

	// Nets: alice -50, bob -30, carol +80.
	record(t, games, game.ID, "alice", models.BuyIn, "50.00")
	record(t, games, game.ID, "bob", models.BuyIn, "30.00")
	record(t, games, game.ID, "carol", models.CashOut, "80.00")

	view, err := settlements.Plan(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, view.Transfers, 2)
	require.Empty(t, view.Orphans)

	// Amount comes from the plan, not the caller.
	rec, err := settlements.MarkSettled(ctx, game.ID, "alice", "carol", "cash")
	require.NoError(t, err)
	require.True(t, rec.Amount.Equal(d("50.00")))

	// Repeat mark overwrites method, still one record.
	_, err = settlements.MarkSettled(ctx, game.ID, "alice", "carol", "venmo")
	require.NoError(t, err)
	records, err := store.ListSettlementsByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "venmo", records[0].PaymentMethod)

	// Unplanned pair is refused.
	_, err = settlements.MarkSettled(ctx, game.ID, "carol", "alice", "cash")
	require.ErrorIs(t, err, ErrTransferNotPlanned)

	view, err = settlements.Plan(ctx, game.ID)
	require.NoError(t, err)
	var settled int
	for _, tr := range view.Transfers {
		if tr.Settled {
			settled++
			require.Equal(t, "alice", tr.FromUserID)
		}
	}
	require.Equal(t, 1, settled)

	// Reset removes the record; a second reset is a no-op.
	require.NoError(t, settlements.Reset(ctx, game.ID, "alice", "carol"))
	records, err = store.ListSettlementsByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Empty(t, records)
	require.NoError(t, settlements.Reset(ctx, game.ID, "alice", "carol"))
}

func TestTransactionEditPurgesStaleRecords(t *testing.T) {
	store := newMockStore()
	games := NewGameService(store)
	settlements := NewSettlementService(store)
	game := seedGame(t, store, []string{"alice", "bob"})
	ctx := context.Background()

	buyIn := record(t, games, game.ID, "alice", models.BuyIn, "40.00")
	record(t, games, game.ID, "bob", models.CashOut, "40.00")

	_, err := settlements.MarkSettled(ctx, game.ID, "alice", "bob", "cash")
	require.NoError(t, err)

	// Editing the buy-in changes alice's debt; the old record no longer
	// matches the plan and must be purged.
	_, err = games.UpdateTransaction(ctx, buyIn.ID, models.BuyIn, d("25.00"), "corrected")
	require.NoError(t, err)

	records, err := store.ListSettlementsByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Empty(t, records, "stale settlement record should be purged")

	view, err := settlements.Plan(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, view.Transfers, 1)
	require.False(t, view.Transfers[0].Settled)
	require.True(t, view.Transfers[0].Amount.Equal(d("25.00")))
}

func TestDeleteTransactionPurgesAllRecordsWhenPlanEmpties(t *testing.T) {
	store := newMockStore()
	games := NewGameService(store)
	settlements := NewSettlementService(store)
	game := seedGame(t, store, []string{"alice", "bob"})
	ctx := context.Background()

	buyIn := record(t, games, game.ID, "alice", models.BuyIn, "40.00")
	cashOut := record(t, games, game.ID, "bob", models.CashOut, "40.00")

	_, err := settlements.MarkSettled(ctx, game.ID, "alice", "bob", "cash")
	require.NoError(t, err)

	require.NoError(t, games.DeleteTransaction(ctx, buyIn.ID))
	require.NoError(t, games.DeleteTransaction(ctx, cashOut.ID))

	records, err := store.ListSettlementsByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Empty(t, records)

	view, err := settlements.Plan(ctx, game.ID)
	require.NoError(t, err)
	require.Empty(t, view.Transfers)
	require.Empty(t, view.Orphans)
}

func TestCreateGameAddsNewParticipantsToGroup(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	ctx := context.Background()

	group := &models.Group{Name: "regulars", Members: []string{"alice", "bob"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	game, err := svc.CreateGame(ctx, group.ID, "with a guest", []string{"alice", "bob", "dave"})
	require.NoError(t, err)
	require.Contains(t, game.Participants, "dave")

	updated, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Contains(t, updated.Members, "dave")
}

func TestCreateGameDefaultsToGroupMembers(t *testing.T) {
	store := newMockStore()
	svc := NewGameService(store)
	ctx := context.Background()

	group := &models.Group{Name: "regulars", Members: []string{"alice", "bob"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	game, err := svc.CreateGame(ctx, group.ID, "", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, game.Participants)

	_, err = svc.CreateGame(ctx, "missing", "", nil)
	require.True(t, errors.Is(err, storage.ErrNotFound))
}
