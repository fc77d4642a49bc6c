package repository

import (
	"encoding/json"
	"strings"

	"github.com/dappmarket/nft-marketplace/internal/elastic_search"
	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
)

type AssetRepository interface {
	GetAssetsByOwner(owner string, size, page int) ([]entity.Asset, int64, error)
}

type assetRepository struct {
	elastic elastic_search.Index
}

func NewAssetRepository(elastic elastic_search.Index) AssetRepository {
	return assetRepository{elastic}
}

func (r assetRepository) GetAssetsByOwner(owner string, size, page int) ([]entity.Asset, int64, error) {
	// Owners are indexed in their normalized lowercase form.
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("owner.keyword", strings.ToLower(owner)),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.AssetIndex.Get()).
		Query(query).
		Sort("id", true).
		Size(size).
		From((page - 1) * size))

	return r.findMany(result, err)
}

func (r assetRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Asset, int64, error) {
	assets := make([]entity.Asset, 0)

	if err != nil {
		return assets, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var asset entity.Asset
		if err := json.Unmarshal(hit.Source, &asset); err == nil {
			assets = append(assets, asset)
		}
	}

	return assets, results.TotalHits(), nil
}
