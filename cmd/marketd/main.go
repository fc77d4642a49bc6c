package main

import (
	"fmt"
	"net/http"

	"github.com/dappmarket/nft-marketplace/internal/config"
	"github.com/dappmarket/nft-marketplace/internal/config/di"
	"github.com/dappmarket/nft-marketplace/internal/event"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var container *di.Container

func main() {
	config.Init("marketd")
	container, _ = di.NewContainer()

	container.GetElastic().InstallMappings()

	projector := container.GetProjector()
	event.AddEventListener(event.AssetMintedEvent, projector.ProjectMint)
	event.AddEventListener(event.AssetTransferredEvent, projector.ProjectTransfer)
	event.AddEventListener(event.ListingOfferedEvent, projector.ProjectListing)
	event.AddEventListener(event.ListingBoughtEvent, projector.ProjectSale)

	if config.Get().Amqp.Enabled {
		relay := container.GetRelay()
		event.AddEventListener(event.AssetMintedEvent, relay.RelayMint)
		event.AddEventListener(event.AssetTransferredEvent, relay.RelayTransfer)
		event.AddEventListener(event.ListingOfferedEvent, relay.RelayListing)
		event.AddEventListener(event.ListingBoughtEvent, relay.RelaySale)
	}

	go health()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace Started")

	if err := http.ListenAndServe(":"+config.Get().ApiPort, container.GetApiServer().Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health check")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
