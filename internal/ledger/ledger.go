package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"libraryexplorer/internal/catalog"
)

// OwnerShare is the platform's fixed commission on every sale.
const OwnerShare = 0.05

var (
	// ErrNoPrice means the book cannot be purchased; the operation is a
	// local no-op, not a user-visible failure.
	ErrNoPrice = errors.New("book has no price")
	// ErrNothingToWithdraw refuses a withdrawal on an empty balance.
	ErrNothingToWithdraw = errors.New("no funds to withdraw")
)

// Party identifies one side of the commission split.
type Party string

const (
	PartyAuthor Party = "author"
	PartyOwner  Party = "owner"
)

// ParseParty validates a client-supplied party tag.
func ParseParty(s string) (Party, error) {
	switch Party(s) {
	case PartyAuthor, PartyOwner:
		return Party(s), nil
	default:
		return "", fmt.Errorf("invalid party: %q", s)
	}
}

// Transaction is an immutable sale record. AuthorCut + OwnerCut == Price
// holds exactly for every record.
type Transaction struct {
	BookKey   string    `json:"bookKey"`
	BookTitle string    `json:"bookTitle"`
	Price     float64   `json:"price"`
	AuthorCut float64   `json:"authorCut"`
	OwnerCut  float64   `json:"ownerCut"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a consistent read of the ledger. Transactions are ordered
// most-recent-first.
type Snapshot struct {
	AuthorBalance float64       `json:"author_balance"`
	OwnerBalance  float64       `json:"owner_balance"`
	Transactions  []Transaction `json:"transactions"`
}

// Withdrawal is a pure acknowledgement. Balances are cumulative totals, not
// available cash; withdrawing alters nothing.
type Withdrawal struct {
	Party   Party   `json:"party"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// Split divides a price into the submitter's payout and the platform fee.
// The payout is computed as the remainder so the two cuts always sum to the
// price exactly, even under floating point.
func Split(price float64) (authorCut, ownerCut float64) {
	ownerCut = price * OwnerShare
	authorCut = price - ownerCut
	return authorCut, ownerCut
}

// Engine executes purchases and keeps the running balances, the transaction
// log and the purchased set. Each mutation replaces the affected structures
// wholesale so snapshots stay consistent.
type Engine struct {
	mu            sync.RWMutex
	authorBalance float64
	ownerBalance  float64
	transactions  []Transaction // most recent first
	purchased     map[string]bool

	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{
		purchased: make(map[string]bool),
		now:       time.Now,
	}
}

// Purchase records a sale of the book: it appends the transaction, credits
// both balances and marks the key purchased, all under one lock so the
// effects appear together. A book without a price is skipped with ErrNoPrice.
func (e *Engine) Purchase(b catalog.Book) (Transaction, error) {
	if b.Price == nil || *b.Price <= 0 {
		return Transaction{}, ErrNoPrice
	}

	price := *b.Price
	authorCut, ownerCut := Split(price)

	e.mu.Lock()
	defer e.mu.Unlock()

	tx := Transaction{
		BookKey:   b.Key,
		BookTitle: b.Title,
		Price:     price,
		AuthorCut: authorCut,
		OwnerCut:  ownerCut,
		Timestamp: e.now(),
	}

	log := make([]Transaction, 0, len(e.transactions)+1)
	log = append(log, tx)
	log = append(log, e.transactions...)
	e.transactions = log

	e.authorBalance += authorCut
	e.ownerBalance += ownerCut

	purchased := make(map[string]bool, len(e.purchased)+1)
	for k := range e.purchased {
		purchased[k] = true
	}
	purchased[b.Key] = true
	e.purchased = purchased

	return tx, nil
}

// Purchased reports whether the key has been bought this session.
func (e *Engine) Purchased(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.purchased[key]
}

// Snapshot returns the balances and the full transaction log.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	txs := make([]Transaction, len(e.transactions))
	copy(txs, e.transactions)
	return Snapshot{
		AuthorBalance: e.authorBalance,
		OwnerBalance:  e.ownerBalance,
		Transactions:  txs,
	}
}

// Withdraw acknowledges a payout request for the party's current balance. It
// does not zero the balance or touch the log.
func (e *Engine) Withdraw(p Party) (Withdrawal, error) {
	e.mu.RLock()
	amount := e.authorBalance
	if p == PartyOwner {
		amount = e.ownerBalance
	}
	e.mu.RUnlock()

	if amount <= 0 {
		return Withdrawal{}, ErrNothingToWithdraw
	}
	return Withdrawal{
		Party:   p,
		Amount:  amount,
		Message: fmt.Sprintf("Withdrawal of $%.2f initiated. Funds will be transferred to your linked payment method shortly.", amount),
	}, nil
}
