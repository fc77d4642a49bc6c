package bank

import (
	"errors"
	"math/big"
	"testing"
)

func TestDepositAndBalance(t *testing.T) {
	b := NewBank()

	if got := b.BalanceOf("0xalice"); got.Sign() != 0 {
		t.Errorf("fresh balance = %s, want 0", got)
	}

	if err := b.Deposit("0xAlice", big.NewInt(500)); err != nil {
		t.Fatalf("Deposit returned error: %v", err)
	}
	if err := b.Deposit("0xalice", big.NewInt(250)); err != nil {
		t.Fatalf("Deposit returned error: %v", err)
	}

	if got := b.BalanceOf("0xALICE"); got.Cmp(big.NewInt(750)) != 0 {
		t.Errorf("balance = %s, want 750", got)
	}
}

func TestInvalidAmounts(t *testing.T) {
	b := NewBank()

	for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		if err := b.Deposit("0xalice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Deposit(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
		if err := b.Debit("0xalice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Debit(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
		if err := b.Credit("0xalice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Credit(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
		if err := b.Transfer("0xalice", "0xbob", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Transfer(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	b := NewBank()
	b.Deposit("0xalice", big.NewInt(100))

	if err := b.Debit("0xalice", big.NewInt(101)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Debit error = %v, want ErrInsufficientFunds", err)
	}
	if err := b.Debit("0xnobody", big.NewInt(1)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Debit unknown account error = %v, want ErrInsufficientFunds", err)
	}

	if got := b.BalanceOf("0xalice"); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("balance = %s after rejected debit, want 100", got)
	}
}

func TestTransfer(t *testing.T) {
	b := NewBank()
	b.Deposit("0xalice", big.NewInt(100))

	if err := b.Transfer("0xalice", "0xbob", big.NewInt(60)); err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}

	if got := b.BalanceOf("0xalice"); got.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("sender balance = %s, want 40", got)
	}
	if got := b.BalanceOf("0xbob"); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("recipient balance = %s, want 60", got)
	}

	if err := b.Transfer("0xalice", "0xbob", big.NewInt(41)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Transfer error = %v, want ErrInsufficientFunds", err)
	}
	if got := b.BalanceOf("0xbob"); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("recipient balance = %s after rejected transfer, want 60", got)
	}
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	b := NewBank()
	b.Deposit("0xalice", big.NewInt(100))

	b.BalanceOf("0xalice").SetInt64(0)

	if got := b.BalanceOf("0xalice"); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("balance = %s after mutating returned value, want 100", got)
	}
}
