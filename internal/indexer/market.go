package indexer

import (
	"errors"
	"math/big"
	"sync/atomic"

	"github.com/dappmarket/nft-marketplace/internal/dev"
	"github.com/dappmarket/nft-marketplace/internal/elastic_search"
	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/dappmarket/nft-marketplace/internal/factory"
	"go.uber.org/zap"
)

var errUnexpectedPayload = errors.New("unexpected event payload")

// MarketProjector consumes core notifications and maintains the elastic read
// models: per-asset documents, per-listing documents and the append-only
// market action history. External observers reconstruct marketplace history
// from these alone.
type MarketProjector interface {
	ProjectMint(msg interface{})
	ProjectTransfer(msg interface{})
	ProjectListing(msg interface{})
	ProjectSale(msg interface{})
}

type marketProjector struct {
	elastic    elastic_search.Index
	feeRateBps uint64
	seq        uint64
}

func NewMarketProjector(elastic elastic_search.Index, feeRateBps uint64) MarketProjector {
	return &marketProjector{elastic: elastic, feeRateBps: feeRateBps}
}

func (p *marketProjector) ProjectMint(msg interface{}) {
	asset, ok := msg.(entity.Asset)
	if !ok {
		p.reject("ProjectMint", msg)
		return
	}

	zap.L().With(
		zap.String("registry", asset.Registry),
		zap.Uint64("assetId", asset.Id),
	).Debug("MarketProjector: Project mint")

	p.elastic.AddIndexRequest(elastic_search.AssetIndex.Get(), factory.CreateAssetDoc(asset), elastic_search.AssetMint)
	p.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateMintAction(asset, p.next()), elastic_search.MarketAction)
	p.elastic.Persist()
}

func (p *marketProjector) ProjectTransfer(msg interface{}) {
	transfer, ok := msg.(entity.AssetTransfer)
	if !ok {
		p.reject("ProjectTransfer", msg)
		return
	}

	zap.L().With(
		zap.String("registry", transfer.Asset.Registry),
		zap.Uint64("assetId", transfer.Asset.Id),
		zap.String("from", transfer.From),
		zap.String("to", transfer.To),
	).Debug("MarketProjector: Project transfer")

	p.elastic.AddIndexRequest(elastic_search.AssetIndex.Get(), factory.CreateAssetDoc(transfer.Asset), elastic_search.AssetTransfer)
	p.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateTransferAction(transfer, p.next()), elastic_search.MarketAction)
	p.elastic.Persist()
}

func (p *marketProjector) ProjectListing(msg interface{}) {
	listing, ok := msg.(entity.Listing)
	if !ok {
		p.reject("ProjectListing", msg)
		return
	}

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.Uint64("assetId", listing.AssetId),
	).Debug("MarketProjector: Project listing")

	p.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), factory.CreateListingDoc(listing, p.totalPrice(listing.Price)), elastic_search.ListingCreate)
	p.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateListingAction(listing, p.next()), elastic_search.MarketAction)
	p.elastic.Persist()
}

func (p *marketProjector) ProjectSale(msg interface{}) {
	sale, ok := msg.(entity.ListingSale)
	if !ok {
		p.reject("ProjectSale", msg)
		return
	}

	zap.L().With(
		zap.Uint64("listingId", sale.Listing.Id),
		zap.String("buyer", sale.Buyer),
	).Debug("MarketProjector: Project sale")

	p.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), factory.CreateSaleDoc(sale), elastic_search.ListingSale)
	p.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateSaleAction(sale, p.next()), elastic_search.MarketAction)
	p.elastic.Persist()
}

func (p *marketProjector) next() uint64 {
	return atomic.AddUint64(&p.seq, 1)
}

func (p *marketProjector) totalPrice(price *big.Int) string {
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(p.feeRateBps))
	fee.Quo(fee, big.NewInt(10000))

	return fee.Add(fee, price).String()
}

func (p *marketProjector) reject(operation string, msg interface{}) {
	zap.L().With(zap.Any("msg", msg)).Error("MarketProjector: Unexpected payload")

	p.elastic.AddIndexRequest(
		elastic_search.DevErrorIndex.Get(),
		dev.NewError("indexer", operation, errUnexpectedPayload, map[string]interface{}{"msg": msg}),
		elastic_search.DevError,
	)
}
