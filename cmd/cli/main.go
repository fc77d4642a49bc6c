package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/dappmarket/nft-marketplace/internal/config"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var client *retryablehttp.Client

func main() {
	config.Init("cli")

	client = retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil

	app := &cli.App{
		Usage: "administer the marketplace over its HTTP API",
		Commands: []*cli.Command{
			{
				Name:   "mint",
				Usage:  "Mint a new asset for an owner",
				Action: mint,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true, Usage: "owner address"},
					&cli.StringFlag{Name: "uri", Required: true, Usage: "metadata ref"},
				},
			},
			{
				Name:   "approve",
				Usage:  "Grant or revoke an operator for all of an owner's assets",
				Action: approve,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true},
					&cli.StringFlag{Name: "operator", Required: true},
					&cli.BoolFlag{Name: "revoke", Usage: "clear the grant instead of setting it"},
				},
			},
			{
				Name:   "deposit",
				Usage:  "Credit an account on the payment ledger",
				Action: deposit,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true},
					&cli.StringFlag{Name: "amount", Required: true},
				},
			},
			{
				Name:   "balance",
				Usage:  "Show an account balance",
				Action: balance,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true},
				},
			},
			{
				Name:   "list",
				Usage:  "Offer an owned asset for sale",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Required: true},
					&cli.Uint64Flag{Name: "asset", Required: true},
					&cli.StringFlag{Name: "price", Required: true},
					&cli.StringFlag{Name: "registry", Usage: "registry ref, defaults to the configured registry"},
				},
			},
			{
				Name:   "listings",
				Usage:  "Show open listings, or a seller's listings",
				Action: listings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller"},
				},
			},
			{
				Name:      "quote",
				Usage:     "Show the total price (item plus fee) for a listing",
				ArgsUsage: "<listingId>",
				Action:    quote,
			},
			{
				Name:   "buy",
				Usage:  "Purchase a listing",
				Action: buy,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "buyer", Required: true},
					&cli.Uint64Flag{Name: "listing", Required: true},
					&cli.StringFlag{Name: "amount", Required: true, Usage: "amount paid, must cover the quote"},
				},
			},
			{
				Name:      "asset",
				Usage:     "Show an asset",
				ArgsUsage: "<assetId>",
				Action:    asset,
			},
			{
				Name:   "assets",
				Usage:  "Show the assets owned by an address",
				Action: assets,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true},
				},
			},
			{
				Name:   "purchases",
				Usage:  "Show the purchase history of a buyer",
				Action: purchases,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "buyer", Required: true},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to run CLI")
	}
}

func mint(c *cli.Context) error {
	return post("/assets", map[string]interface{}{
		"owner":       c.String("owner"),
		"metadataRef": c.String("uri"),
	})
}

func approve(c *cli.Context) error {
	return post("/approvals", map[string]interface{}{
		"owner":    c.String("owner"),
		"operator": c.String("operator"),
		"approved": !c.Bool("revoke"),
	})
}

func deposit(c *cli.Context) error {
	return post(fmt.Sprintf("/addresses/%s/deposits", c.String("account")), map[string]interface{}{
		"amount": c.String("amount"),
	})
}

func balance(c *cli.Context) error {
	return get(fmt.Sprintf("/addresses/%s/balance", c.String("account")))
}

func list(c *cli.Context) error {
	return post("/listings", map[string]interface{}{
		"seller":   c.String("seller"),
		"registry": c.String("registry"),
		"assetId":  c.Uint64("asset"),
		"price":    c.String("price"),
	})
}

func listings(c *cli.Context) error {
	path := "/listings"
	if seller := c.String("seller"); seller != "" {
		path = fmt.Sprintf("%s?seller=%s", path, seller)
	}

	return get(path)
}

func quote(c *cli.Context) error {
	return get(fmt.Sprintf("/listings/%s/total-price", c.Args().First()))
}

func buy(c *cli.Context) error {
	return post(fmt.Sprintf("/listings/%d/purchases", c.Uint64("listing")), map[string]interface{}{
		"buyer":      c.String("buyer"),
		"amountPaid": c.String("amount"),
	})
}

func asset(c *cli.Context) error {
	return get(fmt.Sprintf("/assets/%s", c.Args().First()))
}

func assets(c *cli.Context) error {
	return get(fmt.Sprintf("/addresses/%s/assets", c.String("owner")))
}

func purchases(c *cli.Context) error {
	return get(fmt.Sprintf("/addresses/%s/purchases", c.String("buyer")))
}

func post(path string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest("POST", config.Get().ApiHost+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	return render(resp)
}

func get(path string) error {
	resp, err := client.Get(config.Get().ApiHost + path)
	if err != nil {
		return err
	}

	return render(resp)
}

func render(resp *http.Response) error {
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	status := resp.StatusCode

	if status >= 400 {
		return cli.Exit(fmt.Sprintf("%d: %s", status, bytes.TrimSpace(data)), 1)
	}

	fmt.Println(string(bytes.TrimSpace(data)))

	return nil
}
