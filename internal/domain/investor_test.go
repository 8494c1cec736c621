package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

func entry(amount float64, typ domain.EntryType) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:     uuid.New(),
		Date:   "2024-01-15",
		Amount: decimal.NewFromFloat(amount),
		Type:   typ,
	}
}

// Balance invariant: invested + totalProfit == Σ signed ledger amounts.
func TestInvestor_CheckLedger(t *testing.T) {
	inv := &domain.Investor{
		UserID:      uuid.New(),
		Invested:    decimal.NewFromInt(2500),
		TotalProfit: decimal.NewFromFloat(131.25),
		Role:        domain.RoleInvestor,
		IsActive:    true,
	}
	entries := []*domain.LedgerEntry{
		entry(3000, domain.EntryDeposit),
		entry(-500, domain.EntryWithdrawal),
		entry(87.5, domain.EntryProfitPayout),
		entry(43.75, domain.EntryProfitPayout),
	}

	if !inv.CheckLedger(entries, decimal.New(1, -6)) {
		t.Errorf("ledger should reconcile: balance=%s sum=%s",
			inv.Balance(), domain.SumEntries(entries))
	}

	// Tampering with one entry must break reconciliation.
	entries[0].Amount = decimal.NewFromInt(2999)
	if inv.CheckLedger(entries, decimal.New(1, -6)) {
		t.Error("tampered ledger should not reconcile")
	}
}

func TestInvestor_Balance(t *testing.T) {
	inv := &domain.Investor{
		Invested:    decimal.NewFromInt(1000),
		TotalProfit: decimal.NewFromFloat(-250.5),
	}
	want := decimal.NewFromFloat(749.5)
	if !inv.Balance().Equal(want) {
		t.Errorf("Balance() = %s, want %s", inv.Balance(), want)
	}
}

func TestInvestor_Participates(t *testing.T) {
	base := func() *domain.Investor {
		return &domain.Investor{
			Invested: decimal.NewFromInt(100),
			Role:     domain.RoleInvestor,
			IsActive: true,
		}
	}

	if !base().Participates() {
		t.Error("active funded investor should participate")
	}

	suspended := base()
	suspended.IsActive = false
	if suspended.Participates() {
		t.Error("suspended investor must not participate")
	}

	staff := base()
	staff.Role = domain.RoleAdmin
	if staff.Participates() {
		t.Error("admin accounts must not participate")
	}

	drained := base()
	drained.Invested = decimal.Zero
	if drained.Participates() {
		t.Error("zero balance must not participate")
	}

	underwater := base()
	underwater.TotalProfit = decimal.NewFromInt(-200)
	if underwater.Participates() {
		t.Error("negative balance must not participate")
	}
}

func TestUserRole_Backoffice(t *testing.T) {
	if domain.RoleInvestor.CanAccessBackoffice() {
		t.Error("investors must not access the backoffice")
	}
	for _, r := range []domain.UserRole{domain.RoleAdmin, domain.RoleFinance, domain.RoleReadOnly} {
		if !r.CanAccessBackoffice() {
			t.Errorf("%s should access the backoffice", r)
		}
	}
	if domain.RoleFinance.IsAdmin() {
		t.Error("finance is not full admin")
	}
}

func TestUser_ToPublicProfile(t *testing.T) {
	u := &domain.User{
		ID:           uuid.New(),
		Email:        "a@b.test",
		Username:     "alice",
		PasswordHash: "$2a$12$secret",
		Role:         domain.RoleInvestor,
		IsActive:     true,
	}

	var p *domain.PublicProfile = u.ToPublicProfile()
	if p == nil {
		t.Fatal("profile should not be nil")
	}
	if p.ID != u.ID || p.Email != u.Email || p.Username != u.Username {
		t.Errorf("profile fields do not match user: %+v", p)
	}
	if p.Role != domain.RoleInvestor || !p.IsActive {
		t.Errorf("role/active not carried over: %+v", p)
	}
}
