package entity

import "testing"

func TestAssetSlug(t *testing.T) {
	asset := Asset{Id: 7, Registry: "dapp-nft"}

	if asset.Slug() != "asset-7-dapp-nft" {
		t.Errorf("Slug = %q, want asset-7-dapp-nft", asset.Slug())
	}
	if asset.Slug() != CreateAssetSlug(7, "dapp-nft") {
		t.Error("Slug must match CreateAssetSlug for the same asset")
	}
}

func TestListingSlug(t *testing.T) {
	listing := Listing{Id: 3}

	if listing.Slug() != CreateListingSlug(3) {
		t.Error("Slug must match CreateListingSlug for the same listing")
	}
	if listing.Slug() == CreateListingSlug(4) {
		t.Error("listings with different ids must not share a slug")
	}
}

func TestMarketActionSlugDistinguishesActions(t *testing.T) {
	mint := MarketAction{Registry: "dapp-nft", AssetId: 1, Seq: 1, Action: MintAction}
	transfer := MarketAction{Registry: "dapp-nft", AssetId: 1, Seq: 1, Action: TransferAction}

	if mint.Slug() == transfer.Slug() {
		t.Error("different actions over the same asset must not collide")
	}
	if mint.Slug() != CreateMarketActionSlug(1, "dapp-nft", 1, string(MintAction)) {
		t.Error("Slug must match CreateMarketActionSlug for the same action")
	}
}
