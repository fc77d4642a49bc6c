package event

type Type string

const (
	AssetMintedEvent      Type = "AssetMintedEvent"
	AssetTransferredEvent Type = "AssetTransferredEvent"
	ListingOfferedEvent   Type = "ListingOfferedEvent"
	ListingBoughtEvent    Type = "ListingBoughtEvent"
)
