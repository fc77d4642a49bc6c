package factory

import (
	"github.com/Zilliqa/gozilliqa-sdk/bech32"
	"github.com/dappmarket/nft-marketplace/internal/entity"
)

// CreateAssetDoc prepares an asset for indexing, attaching the bech32 display
// form of the owner when the address converts cleanly.
func CreateAssetDoc(asset entity.Asset) entity.Asset {
	asset.OwnerBech32 = toBech32(asset.Owner)

	return asset
}

func CreateListingDoc(listing entity.Listing, totalPrice string) entity.ListingDoc {
	return entity.ListingDoc{
		Id:           listing.Id,
		Registry:     listing.Registry,
		AssetId:      listing.AssetId,
		Seller:       listing.Seller,
		SellerBech32: toBech32(listing.Seller),
		Price:        listing.Price.String(),
		TotalPrice:   totalPrice,
		Sold:         listing.Sold,
	}
}

func CreateSaleDoc(sale entity.ListingSale) entity.ListingDoc {
	doc := CreateListingDoc(sale.Listing, sale.Total.String())
	doc.Sold = true
	doc.Buyer = sale.Buyer

	return doc
}

func toBech32(addr string) string {
	display, err := bech32.ToBech32Address(addr)
	if err != nil {
		return ""
	}

	return display
}
