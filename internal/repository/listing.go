package repository

import (
	"encoding/json"
	"strings"

	"github.com/dappmarket/nft-marketplace/internal/elastic_search"
	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
)

type ListingRepository interface {
	GetOpenListings(size, page int) ([]entity.ListingDoc, int64, error)
	GetListingsBySeller(seller string, size, page int) ([]entity.ListingDoc, int64, error)
	GetPurchasesByBuyer(buyer string, size, page int) ([]entity.MarketAction, int64, error)
}

type listingRepository struct {
	elastic elastic_search.Index
}

func NewListingRepository(elastic elastic_search.Index) ListingRepository {
	return listingRepository{elastic}
}

func (r listingRepository) GetOpenListings(size, page int) ([]entity.ListingDoc, int64, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("sold", false),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(query).
		Sort("id", true).
		Size(size).
		From((page - 1) * size))

	return r.findMany(result, err)
}

func (r listingRepository) GetListingsBySeller(seller string, size, page int) ([]entity.ListingDoc, int64, error) {
	// Sellers are indexed in their normalized lowercase form.
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("seller.keyword", strings.ToLower(seller)),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(query).
		Sort("id", true).
		Size(size).
		From((page - 1) * size))

	return r.findMany(result, err)
}

func (r listingRepository) GetPurchasesByBuyer(buyer string, size, page int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("action.keyword", string(entity.SaleAction)),
		elastic.NewTermQuery("to.keyword", strings.ToLower(buyer)),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("seq", true).
		Size(size).
		From((page - 1) * size))

	actions := make([]entity.MarketAction, 0)

	if err != nil {
		return actions, 0, err
	}

	for _, hit := range result.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err == nil {
			actions = append(actions, action)
		}
	}

	return actions, result.TotalHits(), nil
}

func (r listingRepository) findMany(results *elastic.SearchResult, err error) ([]entity.ListingDoc, int64, error) {
	listings := make([]entity.ListingDoc, 0)

	if err != nil {
		return listings, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var listing entity.ListingDoc
		if err := json.Unmarshal(hit.Source, &listing); err == nil {
			listings = append(listings, listing)
		}
	}

	return listings, results.TotalHits(), nil
}
