package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryexplorer/internal/catalog"
)

func priced(key, title string, price float64) catalog.Book {
	return catalog.Book{Key: key, Title: title, Price: &price}
}

func TestSplit_ExactSum(t *testing.T) {
	for _, price := range []float64{9.99, 19.95, 0.99, 5, 100, 12.34, 0.01} {
		authorCut, ownerCut := Split(price)
		assert.Equal(t, price, authorCut+ownerCut, "price %v", price)
		assert.Equal(t, price*0.05, ownerCut, "price %v", price)
	}
}

func TestPurchase(t *testing.T) {
	e := NewEngine()

	tx, err := e.Purchase(priced("user-1", "My Book", 9.99))
	require.NoError(t, err)

	assert.Equal(t, "user-1", tx.BookKey)
	assert.Equal(t, "My Book", tx.BookTitle)
	assert.Equal(t, 9.99, tx.Price)
	assert.Equal(t, tx.Price, tx.AuthorCut+tx.OwnerCut)
	assert.Equal(t, 9.99*0.05, tx.OwnerCut)

	snap := e.Snapshot()
	assert.Equal(t, tx.AuthorCut, snap.AuthorBalance)
	assert.Equal(t, tx.OwnerCut, snap.OwnerBalance)
	require.Len(t, snap.Transactions, 1)
	assert.True(t, e.Purchased("user-1"))
	assert.False(t, e.Purchased("user-2"))
}

func TestPurchase_NoPriceSkipped(t *testing.T) {
	e := NewEngine()

	_, err := e.Purchase(catalog.Book{Key: "k", Title: "Free"})
	assert.ErrorIs(t, err, ErrNoPrice)

	zero := 0.0
	_, err = e.Purchase(catalog.Book{Key: "k", Title: "Free", Price: &zero})
	assert.ErrorIs(t, err, ErrNoPrice)

	snap := e.Snapshot()
	assert.Empty(t, snap.Transactions)
	assert.Zero(t, snap.AuthorBalance)
	assert.Zero(t, snap.OwnerBalance)
	assert.False(t, e.Purchased("k"))
}

func TestPurchase_BalancesAreSums(t *testing.T) {
	e := NewEngine()
	prices := []float64{9.99, 4.5, 100, 0.99, 19.95}

	for i, p := range prices {
		_, err := e.Purchase(priced("k", "B", p))
		require.NoError(t, err)

		snap := e.Snapshot()
		var authorSum, ownerSum float64
		for _, tx := range snap.Transactions {
			authorSum += tx.AuthorCut
			ownerSum += tx.OwnerCut
		}
		assert.Equal(t, authorSum, snap.AuthorBalance, "after purchase %d", i+1)
		assert.Equal(t, ownerSum, snap.OwnerBalance, "after purchase %d", i+1)
	}
}

func TestPurchase_LogOrderingAndTimestamps(t *testing.T) {
	e := NewEngine()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	for _, title := range []string{"first", "second", "third"} {
		_, err := e.Purchase(priced("k-"+title, title, 5))
		require.NoError(t, err)
	}

	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 3)
	assert.Equal(t, "third", snap.Transactions[0].BookTitle)
	assert.Equal(t, "second", snap.Transactions[1].BookTitle)
	assert.Equal(t, "first", snap.Transactions[2].BookTitle)
	for i := 1; i < len(snap.Transactions); i++ {
		assert.False(t, snap.Transactions[i-1].Timestamp.Before(snap.Transactions[i].Timestamp))
	}
}

func TestSnapshot_IsolatedFromMutation(t *testing.T) {
	e := NewEngine()
	_, err := e.Purchase(priced("a", "A", 10))
	require.NoError(t, err)

	before := e.Snapshot()
	_, err = e.Purchase(priced("b", "B", 20))
	require.NoError(t, err)

	assert.Len(t, before.Transactions, 1)
	assert.Len(t, e.Snapshot().Transactions, 2)
}

func TestWithdraw(t *testing.T) {
	e := NewEngine()

	_, err := e.Withdraw(PartyAuthor)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)

	_, err = e.Purchase(priced("k", "B", 100))
	require.NoError(t, err)
	before := e.Snapshot()

	wd, err := e.Withdraw(PartyAuthor)
	require.NoError(t, err)
	assert.Equal(t, PartyAuthor, wd.Party)
	assert.Equal(t, before.AuthorBalance, wd.Amount)
	assert.NotEmpty(t, wd.Message)

	wd, err = e.Withdraw(PartyOwner)
	require.NoError(t, err)
	assert.Equal(t, before.OwnerBalance, wd.Amount)

	// Withdrawal is an acknowledgement only: nothing changes.
	after := e.Snapshot()
	assert.Equal(t, before, after)
}

func TestParseParty(t *testing.T) {
	p, err := ParseParty("author")
	assert.NoError(t, err)
	assert.Equal(t, PartyAuthor, p)

	p, err = ParseParty("owner")
	assert.NoError(t, err)
	assert.Equal(t, PartyOwner, p)

	_, err = ParseParty("platform")
	assert.Error(t, err)
}
