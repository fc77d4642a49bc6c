package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/dappmarket/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrNotAuthorized      = errors.New("caller is neither owner nor approved operator")
	ErrOwnershipMismatch  = errors.New("stated owner does not match current owner")
	ErrMissingMetadataRef = errors.New("metadata ref is required")
)

// Registry owns the catalog of unique assets. Transfer is the sole mutator of
// ownership; every mutating call runs to completion under one lock so the
// catalog never exposes partial state.
type Registry interface {
	ContractRef() string
	Mint(requester, metadataRef string) (uint64, error)
	OwnerOf(assetId uint64) (string, error)
	GetAsset(assetId uint64) (entity.Asset, error)
	AssetsByOwner(owner string) []entity.Asset
	TotalMinted() uint64
	SetApprovalForAll(owner, operator string, approved bool)
	IsApprovedForAll(owner, operator string) bool
	Transfer(caller, from, to string, assetId uint64) error
}

type approvalKey struct {
	owner    string
	operator string
}

type assetRegistry struct {
	mu        sync.Mutex
	ref       string
	assets    map[uint64]*entity.Asset
	minted    uint64
	approvals map[approvalKey]bool
}

func NewAssetRegistry(ref string) Registry {
	return &assetRegistry{
		ref:       ref,
		assets:    make(map[uint64]*entity.Asset),
		approvals: make(map[approvalKey]bool),
	}
}

func (r *assetRegistry) ContractRef() string {
	return r.ref
}

func (r *assetRegistry) Mint(requester, metadataRef string) (uint64, error) {
	if metadataRef == "" {
		return 0, ErrMissingMetadataRef
	}

	r.mu.Lock()
	r.minted++
	asset := &entity.Asset{
		Id:          r.minted,
		Registry:    r.ref,
		Owner:       normalize(requester),
		MetadataRef: metadataRef,
	}
	r.assets[asset.Id] = asset
	r.mu.Unlock()

	zap.L().With(
		zap.String("registry", r.ref),
		zap.Uint64("assetId", asset.Id),
		zap.String("owner", asset.Owner),
	).Info("Registry: Mint asset")

	event.EmitEvent(event.AssetMintedEvent, *asset)

	return asset.Id, nil
}

func (r *assetRegistry) OwnerOf(assetId uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetId]
	if !ok {
		return "", ErrAssetNotFound
	}

	return asset.Owner, nil
}

func (r *assetRegistry) GetAsset(assetId uint64) (entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetId]
	if !ok {
		return entity.Asset{}, ErrAssetNotFound
	}

	return *asset, nil
}

func (r *assetRegistry) AssetsByOwner(owner string) []entity.Asset {
	owner = normalize(owner)

	r.mu.Lock()
	defer r.mu.Unlock()

	assets := make([]entity.Asset, 0)
	for _, asset := range r.assets {
		if asset.Owner == owner {
			assets = append(assets, *asset)
		}
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Id < assets[j].Id })

	return assets
}

func (r *assetRegistry) TotalMinted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.minted
}

func (r *assetRegistry) SetApprovalForAll(owner, operator string, approved bool) {
	key := approvalKey{normalize(owner), normalize(operator)}

	r.mu.Lock()
	if approved {
		r.approvals[key] = true
	} else {
		delete(r.approvals, key)
	}
	r.mu.Unlock()

	zap.L().With(
		zap.String("registry", r.ref),
		zap.String("owner", key.owner),
		zap.String("operator", key.operator),
		zap.Bool("approved", approved),
	).Info("Registry: Set approval for all")
}

func (r *assetRegistry) IsApprovedForAll(owner, operator string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.approvals[approvalKey{normalize(owner), normalize(operator)}]
}

func (r *assetRegistry) Transfer(caller, from, to string, assetId uint64) error {
	caller = normalize(caller)
	from = normalize(from)
	to = normalize(to)

	r.mu.Lock()

	if caller != from && !r.approvals[approvalKey{from, caller}] {
		r.mu.Unlock()
		return ErrNotAuthorized
	}

	asset, ok := r.assets[assetId]
	if !ok {
		r.mu.Unlock()
		return ErrAssetNotFound
	}

	if asset.Owner != from {
		r.mu.Unlock()
		return ErrOwnershipMismatch
	}

	asset.Owner = to
	transferred := *asset
	r.mu.Unlock()

	zap.L().With(
		zap.String("registry", r.ref),
		zap.Uint64("assetId", assetId),
		zap.String("from", from),
		zap.String("to", to),
	).Info("Registry: Transfer asset")

	event.EmitEvent(event.AssetTransferredEvent, entity.AssetTransfer{Asset: transferred, From: from, To: to})

	return nil
}

func normalize(identity string) string {
	return strings.ToLower(identity)
}
