package elastic_search

import (
	"fmt"

	"github.com/dappmarket/nft-marketplace/internal/config"
)

type Indices string

var (
	AssetIndex        Indices = "asset"
	ListingIndex      Indices = "listing"
	MarketActionIndex Indices = "marketaction"
	DevErrorIndex     Indices = "deverror"
)

// Get prefixes the index with the network and deployment name.
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
