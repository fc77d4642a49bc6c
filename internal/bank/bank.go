package bank

import (
	"errors"
	"math/big"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Bank is the payment channel the marketplace settles against. Every mutation
// is all-or-nothing behind a single writer lock.
type Bank interface {
	Deposit(account string, amount *big.Int) error
	BalanceOf(account string) *big.Int
	Debit(account string, amount *big.Int) error
	Credit(account string, amount *big.Int) error
	Transfer(from, to string, amount *big.Int) error
}

type bank struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func NewBank() Bank {
	return &bank{balances: make(map[string]*big.Int)}
}

func (b *bank) Deposit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.credit(account, amount)
	zap.L().With(zap.String("account", account), zap.String("amount", amount.String())).Debug("Bank: Deposit")

	return nil
}

func (b *bank) BalanceOf(account string) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if balance, ok := b.balances[normalize(account)]; ok {
		return new(big.Int).Set(balance)
	}

	return big.NewInt(0)
}

func (b *bank) Debit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.debit(account, amount)
}

func (b *bank) Credit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.credit(account, amount)

	return nil
}

func (b *bank) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.debit(from, amount); err != nil {
		return err
	}
	b.credit(to, amount)

	return nil
}

func (b *bank) debit(account string, amount *big.Int) error {
	account = normalize(account)

	balance, ok := b.balances[account]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	balance.Sub(balance, amount)

	return nil
}

func (b *bank) credit(account string, amount *big.Int) {
	account = normalize(account)

	if balance, ok := b.balances[account]; ok {
		balance.Add(balance, amount)
		return
	}

	b.balances[account] = new(big.Int).Set(amount)
}

func normalize(account string) string {
	return strings.ToLower(account)
}
