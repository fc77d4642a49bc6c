package entity

import (
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

type Listing struct {
	Id       uint64
	Registry string
	AssetId  uint64
	Seller   string
	Price    *big.Int
	Sold     bool
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(listingId uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", listingId))
}

// ListingDoc is the indexed form of a Listing. Prices are decimal strings so
// arbitrary precision survives the round trip through the document store.
type ListingDoc struct {
	Id           uint64 `json:"id"`
	Registry     string `json:"registry"`
	AssetId      uint64 `json:"assetId"`
	Seller       string `json:"seller"`
	SellerBech32 string `json:"sellerBech32,omitempty"`
	Price        string `json:"price"`
	TotalPrice   string `json:"totalPrice"`
	Sold         bool   `json:"sold"`
	Buyer        string `json:"buyer,omitempty"`
}

func (l ListingDoc) Slug() string {
	return CreateListingSlug(l.Id)
}

// ListingSale is the payload emitted on a successful purchase.
type ListingSale struct {
	Listing Listing
	Buyer   string
	Fee     *big.Int
	Total   *big.Int
}
