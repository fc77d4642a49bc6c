package messenger

import (
	"encoding/json"
	"math/big"

	"github.com/dappmarket/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// Relay forwards core notifications onto the message bus so out-of-process
// consumers can follow marketplace history.
type Relay struct {
	svc MessageService
}

func NewRelay(svc MessageService) *Relay {
	return &Relay{svc: svc}
}

type saleMessage struct {
	ListingId uint64 `json:"listingId"`
	Registry  string `json:"registry"`
	AssetId   uint64 `json:"assetId"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	Price     string `json:"price"`
	Fee       string `json:"fee"`
	Total     string `json:"total"`
}

type listingMessage struct {
	ListingId uint64 `json:"listingId"`
	Registry  string `json:"registry"`
	AssetId   uint64 `json:"assetId"`
	Seller    string `json:"seller"`
	Price     string `json:"price"`
}

func (r *Relay) RelayMint(msg interface{}) {
	if asset, ok := msg.(entity.Asset); ok {
		r.publish(AssetMinted, asset)
	}
}

func (r *Relay) RelayTransfer(msg interface{}) {
	if transfer, ok := msg.(entity.AssetTransfer); ok {
		r.publish(AssetTransferred, transfer)
	}
}

func (r *Relay) RelayListing(msg interface{}) {
	listing, ok := msg.(entity.Listing)
	if !ok {
		return
	}

	r.publish(ListingOffered, listingMessage{
		ListingId: listing.Id,
		Registry:  listing.Registry,
		AssetId:   listing.AssetId,
		Seller:    listing.Seller,
		Price:     listing.Price.String(),
	})
}

func (r *Relay) RelaySale(msg interface{}) {
	sale, ok := msg.(entity.ListingSale)
	if !ok {
		return
	}

	r.publish(ListingBought, saleMessage{
		ListingId: sale.Listing.Id,
		Registry:  sale.Listing.Registry,
		AssetId:   sale.Listing.AssetId,
		Seller:    sale.Listing.Seller,
		Buyer:     sale.Buyer,
		Price:     amount(sale.Listing.Price),
		Fee:       amount(sale.Fee),
		Total:     amount(sale.Total),
	})
}

func (r *Relay) publish(item Item, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Relay: Failed to encode message")
		return
	}

	if err := r.svc.SendMessage(item, body, false); err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Relay: Failed to publish message")
	}
}

func amount(value *big.Int) string {
	if value == nil {
		return "0"
	}

	return value.String()
}
