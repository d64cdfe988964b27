package balance

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(reg *category.Registry, value, account string, path ...string) *model.Entry {
	return model.NewEntry(model.EntryParams{
		Name:      "e",
		Value:     dec(value),
		Currency:  "EUR",
		Date:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  reg.MustGet(path...),
		AccountID: account,
	})
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %s", want, got, strings.Join(msg, " "))
}

func TestFromJournal_IncomeScenario(t *testing.T) {
	j := journal.New(category.NewRegistry())
	reg := j.Categories()
	j.AddEntry(entry(reg, "100", "cash", "Income", "Sales"))
	j.AddEntry(entry(reg, "50", "bank", "Income", "Donations"))

	info := FromJournal(j)

	assertDec(t, "150", info.OverallSum())
	assertDec(t, "150", info.Category(reg.MustGet("Income")))
	assertDec(t, "100", info.Category(reg.MustGet("Income", "Sales")))
	assertDec(t, "50", info.Category(reg.MustGet("Income", "Donations")))
	assertDec(t, "150", info.Category(reg.Root()))
	assertDec(t, "100", info.Account("cash"))
	assertDec(t, "50", info.Account("bank"))
	assertDec(t, "0", info.Account("nobody"))
}

func TestIncrement_ReturnsNewSnapshot(t *testing.T) {
	reg := category.NewRegistry()
	empty := New()
	one := empty.Increment(entry(reg, "-12.50", "cash", "Expenses", "Food"))

	assertDec(t, "0", empty.OverallSum(), "receiver must be unchanged")
	assert.Empty(t, empty.AccountSums())
	assertDec(t, "-12.50", one.OverallSum())
	assertDec(t, "-12.50", one.Category(reg.MustGet("Expenses")))
	assertDec(t, "-12.50", one.Category(reg.Root()))
}

func TestClone_Independent(t *testing.T) {
	reg := category.NewRegistry()
	a := FromEntries([]*model.Entry{entry(reg, "5", "cash", "x")})
	b := a.Clone()
	require.True(t, a.Equal(b))

	b.add(entry(reg, "7", "cash", "x", "y"))
	assertDec(t, "5", a.OverallSum())
	assertDec(t, "5", a.Category(reg.MustGet("x")))
	assertDec(t, "12", b.Category(reg.MustGet("x")))
	assert.False(t, a.Equal(b))

	sums := a.CategorySums()
	sums[reg.Root()] = dec("999")
	assertDec(t, "5", a.Category(reg.Root()), "returned maps are copies")
}

func randomEntries(reg *category.Registry, rng *rand.Rand, n int) []*model.Entry {
	segments := []string{"a", "b", "c"}
	accounts := []string{"cash", "bank", "petty"}
	out := make([]*model.Entry, n)
	for i := range out {
		depth := 1 + rng.IntN(3)
		path := make([]string, depth)
		for d := range path {
			path[d] = segments[rng.IntN(len(segments))]
		}
		cents := rng.IntN(20000) - 10000
		out[i] = model.NewEntry(model.EntryParams{
			Name:      "r",
			Value:     decimal.New(int64(cents), -2),
			Category:  reg.MustGet(path...),
			AccountID: accounts[rng.IntN(len(accounts))],
		})
	}
	return out
}

func TestRollUp_CategorySumIsSubtreeSum(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	reg := category.NewRegistry()
	j := journal.New(reg)
	j.AddEntries(randomEntries(reg, rng, 200)...)

	info := FromJournal(j)
	for _, c := range reg.Existing() {
		want := decimal.Zero
		for _, e := range j.Entries() {
			if c.Contains(e.Category()) {
				want = want.Add(e.Value())
			}
		}
		assert.True(t, want.Equal(info.Category(c)), "category %q: want %s, got %s", c, want, info.Category(c))
	}
}

func TestIncrement_EquivalentToRebuildInAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	reg := category.NewRegistry()
	entries := randomEntries(reg, rng, 60)

	j := journal.New(reg)
	j.AddEntries(entries...)
	rebuilt := FromJournal(j)

	for round := 0; round < 5; round++ {
		rng.Shuffle(len(entries), func(a, b int) { entries[a], entries[b] = entries[b], entries[a] })
		folded := New()
		for _, e := range entries {
			folded = folded.Increment(e)
		}
		assert.True(t, rebuilt.Equal(folded), "round %d", round)
	}
}
