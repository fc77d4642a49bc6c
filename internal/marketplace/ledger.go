package marketplace

import (
	"errors"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/dappmarket/nft-marketplace/internal/bank"
	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/dappmarket/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrAlreadySold         = errors.New("listing already sold")
	ErrInsufficientPayment = errors.New("payment does not cover item price plus market fee")
	ErrUnknownRegistry     = errors.New("unknown asset registry")
)

const feeDenominator = 10000

// TransferAgent is the capability the ledger needs from an asset registry.
// Any registry honouring this contract can back a listing.
type TransferAgent interface {
	ContractRef() string
	OwnerOf(assetId uint64) (string, error)
	IsApprovedForAll(owner, operator string) bool
	Transfer(caller, from, to string, assetId uint64) error
}

// Config is fixed at ledger creation. Address is the escrow identity holding
// listed assets, FeeRateBps the fee in basis points paid to FeeRecipient.
type Config struct {
	Address      string
	FeeRecipient string
	FeeRateBps   uint64
}

type Ledger interface {
	Config() Config
	RegisterAgent(agent TransferAgent)
	CreateListing(seller, registryRef string, assetId uint64, price *big.Int) (uint64, error)
	GetListing(listingId uint64) (entity.Listing, error)
	GetTotalPrice(listingId uint64) (*big.Int, error)
	PurchaseItem(buyer string, listingId uint64, amountPaid *big.Int) error
	ListingCount() uint64
	ListingsBySeller(seller string) []entity.Listing
	OpenListings() []entity.Listing
}

type ledger struct {
	mu       sync.Mutex
	cfg      Config
	bank     bank.Bank
	agents   map[string]TransferAgent
	listings map[uint64]*entity.Listing
	count    uint64
}

func NewLedger(cfg Config, b bank.Bank) Ledger {
	cfg.Address = strings.ToLower(cfg.Address)
	cfg.FeeRecipient = strings.ToLower(cfg.FeeRecipient)

	return &ledger{
		cfg:      cfg,
		bank:     b,
		agents:   make(map[string]TransferAgent),
		listings: make(map[uint64]*entity.Listing),
	}
}

func (l *ledger) Config() Config {
	return l.cfg
}

func (l *ledger) RegisterAgent(agent TransferAgent) {
	l.mu.Lock()
	l.agents[agent.ContractRef()] = agent
	l.mu.Unlock()

	zap.L().With(zap.String("registry", agent.ContractRef())).Info("Ledger: Registered transfer agent")
}

// CreateListing pulls the asset into marketplace escrow and records the
// listing. If the escrow transfer fails nothing is recorded. The notification
// is emitted after the lock is released so listeners cannot stall the ledger.
func (l *ledger) CreateListing(seller, registryRef string, assetId uint64, price *big.Int) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}

	seller = strings.ToLower(seller)

	listing, err := l.offer(seller, registryRef, assetId, price)
	if err != nil {
		return 0, err
	}

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("registry", listing.Registry),
		zap.Uint64("assetId", assetId),
		zap.String("seller", seller),
		zap.String("price", listing.Price.String()),
	).Info("Ledger: Listing offered")

	event.EmitEvent(event.ListingOfferedEvent, listing)

	return listing.Id, nil
}

func (l *ledger) offer(seller, registryRef string, assetId uint64, price *big.Int) (entity.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	agent, ok := l.agents[registryRef]
	if !ok {
		return entity.Listing{}, ErrUnknownRegistry
	}

	if err := agent.Transfer(seller, seller, l.cfg.Address, assetId); err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("registry", registryRef),
			zap.Uint64("assetId", assetId),
			zap.String("seller", seller),
		).Warn("Ledger: Escrow transfer refused")
		return entity.Listing{}, err
	}

	l.count++
	listing := &entity.Listing{
		Id:       l.count,
		Registry: agent.ContractRef(),
		AssetId:  assetId,
		Seller:   seller,
		Price:    new(big.Int).Set(price),
	}
	l.listings[listing.Id] = listing

	snapshot := *listing
	snapshot.Price = new(big.Int).Set(listing.Price)

	return snapshot, nil
}

func (l *ledger) GetListing(listingId uint64) (entity.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok := l.listings[listingId]
	if !ok {
		return entity.Listing{}, ErrListingNotFound
	}

	snapshot := *listing
	snapshot.Price = new(big.Int).Set(listing.Price)

	return snapshot, nil
}

// GetTotalPrice is the authoritative quote a buyer must pay: item price plus
// the market fee, price*rate truncated before division as on chain.
func (l *ledger) GetTotalPrice(listingId uint64) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok := l.listings[listingId]
	if !ok {
		return nil, ErrListingNotFound
	}

	return l.totalPrice(listing.Price), nil
}

func (l *ledger) totalPrice(price *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(l.cfg.FeeRateBps))
	fee.Quo(fee, big.NewInt(feeDenominator))

	return fee.Add(fee, price)
}

// PurchaseItem settles a sale: pay the seller, pay the fee recipient, move
// the asset out of escrow and close the listing. Preconditions are checked
// fail-fast and a failed call leaves no partial state behind. The notification
// is emitted after the lock is released so listeners cannot stall the ledger.
func (l *ledger) PurchaseItem(buyer string, listingId uint64, amountPaid *big.Int) error {
	buyer = strings.ToLower(buyer)

	sale, err := l.settle(buyer, listingId, amountPaid)
	if err != nil {
		return err
	}

	zap.L().With(
		zap.Uint64("listingId", listingId),
		zap.String("registry", sale.Listing.Registry),
		zap.Uint64("assetId", sale.Listing.AssetId),
		zap.String("seller", sale.Listing.Seller),
		zap.String("buyer", buyer),
		zap.String("price", sale.Listing.Price.String()),
		zap.String("fee", sale.Fee.String()),
	).Info("Ledger: Listing bought")

	event.EmitEvent(event.ListingBoughtEvent, sale)

	return nil
}

func (l *ledger) settle(buyer string, listingId uint64, amountPaid *big.Int) (entity.ListingSale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if listingId == 0 || listingId > l.count {
		return entity.ListingSale{}, ErrListingNotFound
	}

	listing, ok := l.listings[listingId]
	if !ok {
		return entity.ListingSale{}, ErrListingNotFound
	}

	if listing.Sold {
		return entity.ListingSale{}, ErrAlreadySold
	}

	total := l.totalPrice(listing.Price)
	if amountPaid == nil || amountPaid.Cmp(total) < 0 {
		return entity.ListingSale{}, ErrInsufficientPayment
	}

	agent, ok := l.agents[listing.Registry]
	if !ok {
		return entity.ListingSale{}, ErrUnknownRegistry
	}

	if err := l.bank.Debit(buyer, amountPaid); err != nil {
		return entity.ListingSale{}, err
	}

	if err := agent.Transfer(l.cfg.Address, l.cfg.Address, buyer, listing.AssetId); err != nil {
		// Escrow invariant broken; hand the payment back untouched.
		_ = l.bank.Credit(buyer, amountPaid)
		zap.L().With(
			zap.Error(err),
			zap.Uint64("listingId", listingId),
			zap.Uint64("assetId", listing.AssetId),
		).Error("Ledger: Escrow release failed")
		return entity.ListingSale{}, err
	}

	fee := new(big.Int).Sub(total, listing.Price)

	_ = l.bank.Credit(listing.Seller, listing.Price)
	if fee.Sign() > 0 {
		_ = l.bank.Credit(l.cfg.FeeRecipient, fee)
	}
	if excess := new(big.Int).Sub(amountPaid, total); excess.Sign() > 0 {
		// Overpayment stays with the marketplace account.
		_ = l.bank.Credit(l.cfg.Address, excess)
	}

	listing.Sold = true

	snapshot := *listing
	snapshot.Price = new(big.Int).Set(listing.Price)

	return entity.ListingSale{
		Listing: snapshot,
		Buyer:   buyer,
		Fee:     fee,
		Total:   total,
	}, nil
}

func (l *ledger) ListingCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

func (l *ledger) ListingsBySeller(seller string) []entity.Listing {
	seller = strings.ToLower(seller)

	return l.filter(func(listing *entity.Listing) bool {
		return listing.Seller == seller
	})
}

func (l *ledger) OpenListings() []entity.Listing {
	return l.filter(func(listing *entity.Listing) bool {
		return !listing.Sold
	})
}

func (l *ledger) filter(match func(*entity.Listing) bool) []entity.Listing {
	l.mu.Lock()
	defer l.mu.Unlock()

	listings := make([]entity.Listing, 0)
	for _, listing := range l.listings {
		if match(listing) {
			snapshot := *listing
			snapshot.Price = new(big.Int).Set(listing.Price)
			listings = append(listings, snapshot)
		}
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].Id < listings[j].Id })

	return listings
}
