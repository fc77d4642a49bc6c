package marketplace

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/dappmarket/nft-marketplace/internal/bank"
	"github.com/dappmarket/nft-marketplace/internal/event"
	"github.com/dappmarket/nft-marketplace/internal/registry"
)

const (
	marketAddr   = "0x0000000000000000000000000000000000001000"
	feeRecipient = "0x0000000000000000000000000000000000001001"
	seller       = "0xseller"
	buyer        = "0xbuyer"
)

func newTestLedger(t *testing.T, feeRateBps uint64) (Ledger, registry.Registry, bank.Bank) {
	t.Helper()

	b := bank.NewBank()
	r := registry.NewAssetRegistry("dapp-nft")
	l := NewLedger(Config{Address: marketAddr, FeeRecipient: feeRecipient, FeeRateBps: feeRateBps}, b)
	l.RegisterAgent(r)

	return l, r, b
}

func mintAndApprove(t *testing.T, r registry.Registry) uint64 {
	t.Helper()

	assetId, err := r.Mint(seller, "ipfs://QmHash")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	r.SetApprovalForAll(seller, marketAddr, true)

	return assetId
}

func TestCreateListingEscrowsAsset(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	listingId, err := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000))
	if err != nil {
		t.Fatalf("CreateListing returned error: %v", err)
	}
	if listingId != 1 {
		t.Errorf("listingId = %d, want 1", listingId)
	}

	owner, _ := r.OwnerOf(assetId)
	if owner != marketAddr {
		t.Errorf("owner = %q, want marketplace escrow", owner)
	}

	listing, err := l.GetListing(listingId)
	if err != nil {
		t.Fatalf("GetListing returned error: %v", err)
	}
	if listing.Seller != seller || listing.AssetId != assetId || listing.Sold {
		t.Errorf("unexpected listing %+v", listing)
	}
	if listing.Price.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("price = %s, want 1000", listing.Price)
	}
}

func TestCreateListingRejectsBadPrice(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	for _, price := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		if _, err := l.CreateListing(seller, "dapp-nft", assetId, price); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("CreateListing(price=%v) error = %v, want ErrInvalidPrice", price, err)
		}
	}

	if l.ListingCount() != 0 {
		t.Errorf("ListingCount = %d after rejected listings, want 0", l.ListingCount())
	}

	owner, _ := r.OwnerOf(assetId)
	if owner != seller {
		t.Errorf("owner = %q, asset must not enter escrow on failure", owner)
	}
}

func TestCreateListingUnknownRegistry(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	if _, err := l.CreateListing(seller, "other-registry", assetId, big.NewInt(1000)); !errors.Is(err, ErrUnknownRegistry) {
		t.Errorf("CreateListing error = %v, want ErrUnknownRegistry", err)
	}
}

func TestCreateListingWithoutApproval(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)

	assetId, err := r.Mint(seller, "ipfs://QmHash")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if _, err := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000)); !errors.Is(err, registry.ErrNotAuthorized) {
		t.Errorf("CreateListing error = %v, want ErrNotAuthorized", err)
	}
	if l.ListingCount() != 0 {
		t.Errorf("ListingCount = %d after refused escrow, want 0", l.ListingCount())
	}
}

func TestGetTotalPrice(t *testing.T) {
	tests := []struct {
		name       string
		feeRateBps uint64
		price      int64
		want       int64
	}{
		{"one percent fee", 100, 1000000000000, 1010000000000},
		{"fee truncates toward zero", 100, 999, 1008},
		{"zero fee rate", 0, 1000, 1000},
		{"price below fee granularity", 100, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r, _ := newTestLedger(t, tt.feeRateBps)
			assetId := mintAndApprove(t, r)

			listingId, err := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(tt.price))
			if err != nil {
				t.Fatalf("CreateListing returned error: %v", err)
			}

			total, err := l.GetTotalPrice(listingId)
			if err != nil {
				t.Fatalf("GetTotalPrice returned error: %v", err)
			}
			if total.Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("total = %s, want %d", total, tt.want)
			}
		})
	}
}

func TestGetTotalPriceUnknownListing(t *testing.T) {
	l, _, _ := newTestLedger(t, 100)

	if _, err := l.GetTotalPrice(1); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("GetTotalPrice error = %v, want ErrListingNotFound", err)
	}
}

func TestPurchaseItemSettlesSale(t *testing.T) {
	l, r, b := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	price := big.NewInt(1000000000000)
	listingId, _ := l.CreateListing(seller, "dapp-nft", assetId, price)

	total, _ := l.GetTotalPrice(listingId)
	if err := b.Deposit(buyer, total); err != nil {
		t.Fatalf("Deposit returned error: %v", err)
	}

	if err := l.PurchaseItem(buyer, listingId, total); err != nil {
		t.Fatalf("PurchaseItem returned error: %v", err)
	}

	owner, _ := r.OwnerOf(assetId)
	if owner != buyer {
		t.Errorf("owner = %q, want buyer", owner)
	}

	if got := b.BalanceOf(seller); got.Cmp(price) != 0 {
		t.Errorf("seller balance = %s, want %s", got, price)
	}

	fee := new(big.Int).Sub(total, price)
	if got := b.BalanceOf(feeRecipient); got.Cmp(fee) != 0 {
		t.Errorf("fee recipient balance = %s, want %s", got, fee)
	}

	if got := b.BalanceOf(buyer); got.Sign() != 0 {
		t.Errorf("buyer balance = %s, want 0", got)
	}

	listing, _ := l.GetListing(listingId)
	if !listing.Sold {
		t.Error("listing not marked sold")
	}
}

func TestPurchaseItemRejectsRepeatPurchase(t *testing.T) {
	l, r, b := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	listingId, _ := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000))
	total, _ := l.GetTotalPrice(listingId)

	b.Deposit(buyer, new(big.Int).Mul(total, big.NewInt(2)))

	if err := l.PurchaseItem(buyer, listingId, total); err != nil {
		t.Fatalf("first PurchaseItem returned error: %v", err)
	}
	if err := l.PurchaseItem(buyer, listingId, total); !errors.Is(err, ErrAlreadySold) {
		t.Errorf("second PurchaseItem error = %v, want ErrAlreadySold", err)
	}
}

func TestPurchaseItemUnknownListing(t *testing.T) {
	l, r, b := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)
	l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000))

	b.Deposit(buyer, big.NewInt(10000))

	for _, listingId := range []uint64{0, 2} {
		if err := l.PurchaseItem(buyer, listingId, big.NewInt(10000)); !errors.Is(err, ErrListingNotFound) {
			t.Errorf("PurchaseItem(%d) error = %v, want ErrListingNotFound", listingId, err)
		}
	}
}

func TestPurchaseItemRequiresFullPayment(t *testing.T) {
	l, r, b := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	price := big.NewInt(1000000000000)
	listingId, _ := l.CreateListing(seller, "dapp-nft", assetId, price)

	b.Deposit(buyer, price)

	// Item price alone is short of the fee-inclusive total.
	if err := l.PurchaseItem(buyer, listingId, price); !errors.Is(err, ErrInsufficientPayment) {
		t.Errorf("PurchaseItem error = %v, want ErrInsufficientPayment", err)
	}

	if got := b.BalanceOf(buyer); got.Cmp(price) != 0 {
		t.Errorf("buyer balance = %s after rejected purchase, want %s", got, price)
	}
	owner, _ := r.OwnerOf(assetId)
	if owner != marketAddr {
		t.Errorf("owner = %q, asset must remain in escrow", owner)
	}
	listing, _ := l.GetListing(listingId)
	if listing.Sold {
		t.Error("listing marked sold after rejected purchase")
	}
}

func TestPurchaseItemRequiresFunds(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	listingId, _ := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000))
	total, _ := l.GetTotalPrice(listingId)

	if err := l.PurchaseItem(buyer, listingId, total); !errors.Is(err, bank.ErrInsufficientFunds) {
		t.Errorf("PurchaseItem error = %v, want ErrInsufficientFunds", err)
	}

	listing, _ := l.GetListing(listingId)
	if listing.Sold {
		t.Error("listing marked sold without payment")
	}
}

func TestPurchaseItemRetainsOverpayment(t *testing.T) {
	l, r, b := newTestLedger(t, 100)
	assetId := mintAndApprove(t, r)

	price := big.NewInt(1000)
	listingId, _ := l.CreateListing(seller, "dapp-nft", assetId, price)
	total, _ := l.GetTotalPrice(listingId)

	paid := new(big.Int).Add(total, big.NewInt(500))
	b.Deposit(buyer, paid)

	if err := l.PurchaseItem(buyer, listingId, paid); err != nil {
		t.Fatalf("PurchaseItem returned error: %v", err)
	}

	if got := b.BalanceOf(marketAddr); got.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("marketplace balance = %s, want 500 excess", got)
	}
	if got := b.BalanceOf(buyer); got.Sign() != 0 {
		t.Errorf("buyer balance = %s, want 0", got)
	}
}

func TestStalledListenerDoesNotBlockLedger(t *testing.T) {
	l, r, _ := newTestLedger(t, 100)
	r.SetApprovalForAll(seller, marketAddr, true)

	gate := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	defer release()

	event.AddEventListener(event.ListingOfferedEvent, func(msg interface{}) {
		<-gate
	})

	// Enough offers to fill the listener buffer and park the offering
	// goroutine inside the emit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			assetId, err := r.Mint(seller, "ipfs://QmHash")
			if err != nil {
				return
			}
			if _, err := l.CreateListing(seller, "dapp-nft", assetId, big.NewInt(1000)); err != nil {
				return
			}
		}
	}()

	time.Sleep(100 * time.Millisecond)

	counted := make(chan uint64, 1)
	go func() { counted <- l.ListingCount() }()

	select {
	case <-counted:
	case <-time.After(time.Second):
		t.Fatal("ledger mutex held while event delivery is stalled")
	}

	release()
	<-done
}

func TestListingViews(t *testing.T) {
	l, r, b := newTestLedger(t, 100)

	first, _ := r.Mint(seller, "ipfs://QmOne")
	second, _ := r.Mint(seller, "ipfs://QmTwo")
	r.SetApprovalForAll(seller, marketAddr, true)

	firstListing, _ := l.CreateListing(seller, "dapp-nft", first, big.NewInt(1000))
	l.CreateListing(seller, "dapp-nft", second, big.NewInt(2000))

	total, _ := l.GetTotalPrice(firstListing)
	b.Deposit(buyer, total)
	if err := l.PurchaseItem(buyer, firstListing, total); err != nil {
		t.Fatalf("PurchaseItem returned error: %v", err)
	}

	open := l.OpenListings()
	if len(open) != 1 || open[0].AssetId != second {
		t.Errorf("OpenListings = %+v, want only the unsold listing", open)
	}

	bySeller := l.ListingsBySeller(seller)
	if len(bySeller) != 2 {
		t.Fatalf("ListingsBySeller returned %d listings, want 2", len(bySeller))
	}
	if bySeller[0].Id != 1 || bySeller[1].Id != 2 {
		t.Errorf("ListingsBySeller ids = [%d, %d], want [1, 2]", bySeller[0].Id, bySeller[1].Id)
	}

	// Snapshots must not alias ledger state.
	bySeller[1].Price.SetInt64(1)
	listing, _ := l.GetListing(2)
	if listing.Price.Cmp(big.NewInt(2000)) != 0 {
		t.Errorf("price = %s after mutating snapshot, want 2000", listing.Price)
	}
}
