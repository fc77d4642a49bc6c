package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type Asset struct {
	Id          uint64 `json:"id"`
	Registry    string `json:"registry"`
	Owner       string `json:"owner"`
	OwnerBech32 string `json:"ownerBech32,omitempty"`
	MetadataRef string `json:"metadataRef"`
}

func (a Asset) Slug() string {
	return CreateAssetSlug(a.Id, a.Registry)
}

func CreateAssetSlug(assetId uint64, registry string) string {
	return slug.Make(fmt.Sprintf("asset-%d-%s", assetId, registry))
}

// AssetTransfer is the payload emitted whenever asset ownership changes,
// including escrow moves in and out of the marketplace.
type AssetTransfer struct {
	Asset Asset  `json:"asset"`
	From  string `json:"from"`
	To    string `json:"to"`
}
