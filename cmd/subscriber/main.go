package main

import (
	"github.com/dappmarket/nft-marketplace/internal/config"
	"github.com/dappmarket/nft-marketplace/internal/messenger"
	"go.uber.org/zap"
)

var items = []messenger.Item{
	messenger.AssetMinted,
	messenger.AssetTransferred,
	messenger.ListingOffered,
	messenger.ListingBought,
}

func main() {
	config.Init("subscriber")

	svc := messenger.NewMessenger(config.Get().Amqp.Uri)

	for _, item := range items {
		size, err := svc.GetQueueSize(item)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Fatal("Subscriber: Queue unavailable")
		}
		zap.L().With(zap.String("queue", string(item)), zap.Int("pending", *size)).Info("Subscriber: Queue ready")

		go consume(svc, item)
	}

	select {}
}

func consume(svc messenger.MessageService, item messenger.Item) {
	err := svc.ConsumeMessages(item, func(msg string) {
		zap.L().With(zap.String("queue", string(item)), zap.String("body", msg)).Info("Subscriber: Message received")
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", string(item))).Fatal("Subscriber: Failed to consume queue")
	}
}
