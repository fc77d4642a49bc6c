package di

import (
	"time"

	"github.com/dappmarket/nft-marketplace/internal/api"
	"github.com/dappmarket/nft-marketplace/internal/bank"
	"github.com/dappmarket/nft-marketplace/internal/config"
	"github.com/dappmarket/nft-marketplace/internal/elastic_search"
	"github.com/dappmarket/nft-marketplace/internal/indexer"
	"github.com/dappmarket/nft-marketplace/internal/marketplace"
	"github.com/dappmarket/nft-marketplace/internal/metadata"
	"github.com/dappmarket/nft-marketplace/internal/messenger"
	"github.com/dappmarket/nft-marketplace/internal/registry"
	"github.com/dappmarket/nft-marketplace/internal/repository"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

var definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "bank",
		Build: func(ctn di.Container) (interface{}, error) {
			return bank.NewBank(), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			return registry.NewAssetRegistry(config.Get().RegistryRef), nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			ledger := marketplace.NewLedger(marketplace.Config{
				Address:      config.Get().MarketplaceAddress,
				FeeRecipient: config.Get().FeeRecipient,
				FeeRateBps:   config.Get().FeeRateBps,
			}, ctn.Get("bank").(bank.Bank))

			ledger.RegisterAgent(ctn.Get("registry").(registry.Registry))

			return ledger, nil
		},
	},
	{
		Name: "projector",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewMarketProjector(
				ctn.Get("elastic").(elastic_search.Index),
				config.Get().FeeRateBps,
			), nil
		},
	},
	{
		Name: "asset.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewAssetRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "metadata",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.RetryMax = config.Get().MetadataRetries
			client.HTTPClient.Timeout = time.Duration(config.Get().IpfsTimeout) * time.Second
			client.Logger = nil

			return metadata.NewMetadataService(client, config.Get().IpfsHosts), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Amqp.Uri), nil
		},
	},
	{
		Name: "relay",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewRelay(ctn.Get("messenger").(messenger.MessageService)), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("registry").(registry.Registry),
				ctn.Get("ledger").(marketplace.Ledger),
				ctn.Get("bank").(bank.Bank),
				ctn.Get("metadata").(metadata.Service),
				ctn.Get("asset.repo").(repository.AssetRepository),
				ctn.Get("listing.repo").(repository.ListingRepository),
			), nil
		},
	},
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetBank() bank.Bank {
	return c.ctn.Get("bank").(bank.Bank)
}

func (c *Container) GetRegistry() registry.Registry {
	return c.ctn.Get("registry").(registry.Registry)
}

func (c *Container) GetLedger() marketplace.Ledger {
	return c.ctn.Get("ledger").(marketplace.Ledger)
}

func (c *Container) GetProjector() indexer.MarketProjector {
	return c.ctn.Get("projector").(indexer.MarketProjector)
}

func (c *Container) GetAssetRepo() repository.AssetRepository {
	return c.ctn.Get("asset.repo").(repository.AssetRepository)
}

func (c *Container) GetListingRepo() repository.ListingRepository {
	return c.ctn.Get("listing.repo").(repository.ListingRepository)
}

func (c *Container) GetMetadata() metadata.Service {
	return c.ctn.Get("metadata").(metadata.Service)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetRelay() *messenger.Relay {
	return c.ctn.Get("relay").(*messenger.Relay)
}

func (c *Container) GetApiServer() api.Server {
	return c.ctn.Get("api").(api.Server)
}
