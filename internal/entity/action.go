package entity

import (
	"crypto/md5"
	"fmt"
)

type MarketAction struct {
	Registry  string     `json:"registry"`
	AssetId   uint64     `json:"assetId"`
	ListingId uint64     `json:"listingId,omitempty"`
	Seq       uint64     `json:"seq"`
	Action    ActionType `json:"action"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Cost      string     `json:"cost,omitempty"`
	Fee       string     `json:"fee,omitempty"`
}

type ActionType string

const (
	MintAction     ActionType = "mint"
	TransferAction ActionType = "transfer"
	ListingAction  ActionType = "listing"
	SaleAction     ActionType = "sale"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.AssetId, a.Registry, a.Seq, string(a.Action))
}

func CreateMarketActionSlug(assetId uint64, registry string, seq uint64, action string) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%s-%d-%s", assetId, registry, seq, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
