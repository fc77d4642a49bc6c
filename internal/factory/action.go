package factory

import (
	"github.com/dappmarket/nft-marketplace/internal/entity"
)

func CreateMintAction(asset entity.Asset, seq uint64) entity.MarketAction {
	return entity.MarketAction{
		Registry: asset.Registry,
		AssetId:  asset.Id,
		Seq:      seq,
		Action:   entity.MintAction,
		From:     "",
		To:       asset.Owner,
	}
}

func CreateTransferAction(transfer entity.AssetTransfer, seq uint64) entity.MarketAction {
	return entity.MarketAction{
		Registry: transfer.Asset.Registry,
		AssetId:  transfer.Asset.Id,
		Seq:      seq,
		Action:   entity.TransferAction,
		From:     transfer.From,
		To:       transfer.To,
	}
}

func CreateListingAction(listing entity.Listing, seq uint64) entity.MarketAction {
	return entity.MarketAction{
		Registry:  listing.Registry,
		AssetId:   listing.AssetId,
		ListingId: listing.Id,
		Seq:       seq,
		Action:    entity.ListingAction,
		From:      listing.Seller,
		Cost:      listing.Price.String(),
	}
}

func CreateSaleAction(sale entity.ListingSale, seq uint64) entity.MarketAction {
	return entity.MarketAction{
		Registry:  sale.Listing.Registry,
		AssetId:   sale.Listing.AssetId,
		ListingId: sale.Listing.Id,
		Seq:       seq,
		Action:    entity.SaleAction,
		From:      sale.Listing.Seller,
		To:        sale.Buyer,
		Cost:      sale.Listing.Price.String(),
		Fee:       sale.Fee.String(),
	}
}
