package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/dappmarket/nft-marketplace/internal/bank"
	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/dappmarket/nft-marketplace/internal/marketplace"
	"github.com/dappmarket/nft-marketplace/internal/metadata"
	"github.com/dappmarket/nft-marketplace/internal/registry"
	"github.com/dappmarket/nft-marketplace/internal/repository"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server is the thin-client boundary: it exposes the core operations and the
// derived owner/buyer views over HTTP and renders their results as JSON.
// Caller identities arrive in the request body and are trusted as supplied.
// Single-entity lookups and quotes come from the core; collection and history
// views are served from the indexed read models.
type Server struct {
	registry    registry.Registry
	ledger      marketplace.Ledger
	bank        bank.Bank
	metadata    metadata.Service
	assetRepo   repository.AssetRepository
	listingRepo repository.ListingRepository
}

func NewServer(
	reg registry.Registry,
	ledger marketplace.Ledger,
	b bank.Bank,
	metadataService metadata.Service,
	assetRepo repository.AssetRepository,
	listingRepo repository.ListingRepository,
) Server {
	return Server{reg, ledger, b, metadataService, assetRepo, listingRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/assets", s.handleMint).Methods("POST")
	r.HandleFunc("/assets/{assetId}", s.handleGetAsset).Methods("GET")
	r.HandleFunc("/assets/{assetId}/metadata", s.handleGetMetadata).Methods("GET")
	r.HandleFunc("/approvals", s.handleSetApproval).Methods("POST")
	r.HandleFunc("/transfers", s.handleTransfer).Methods("POST")

	r.HandleFunc("/listings", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc("/listings/{listingId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{listingId}/total-price", s.handleGetTotalPrice).Methods("GET")
	r.HandleFunc("/listings/{listingId}/purchases", s.handlePurchase).Methods("POST")

	r.HandleFunc("/addresses/{address}/assets", s.handleGetAssetsByOwner).Methods("GET")
	r.HandleFunc("/addresses/{address}/purchases", s.handleGetPurchases).Methods("GET")
	r.HandleFunc("/addresses/{address}/balance", s.handleGetBalance).Methods("GET")
	r.HandleFunc("/addresses/{address}/deposits", s.handleDeposit).Methods("POST")

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "NFT Marketplace")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

type mintRequest struct {
	Owner       string `json:"owner"`
	MetadataRef string `json:"metadataRef"`
}

func (s Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decode(w, r, &req) {
		return
	}

	assetId, err := s.registry.Mint(req.Owner, req.MetadataRef)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{"assetId": assetId})
}

func (s Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetId, err := pathId(r, "assetId")
	if err != nil {
		writeError(w, err)
		return
	}

	asset, err := s.registry.GetAsset(assetId)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, asset)
}

func (s Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	assetId, err := pathId(r, "assetId")
	if err != nil {
		writeError(w, err)
		return
	}

	asset, err := s.registry.GetAsset(assetId)
	if err != nil {
		writeError(w, err)
		return
	}

	md, err := s.metadata.GetMetadata(asset)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("assetId", assetId)).Warn("Api: Metadata not available")
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, md)
}

type approvalRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (s Server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if !decode(w, r, &req) {
		return
	}

	s.registry.SetApprovalForAll(req.Owner, req.Operator, req.Approved)

	respond(w, http.StatusOK, map[string]interface{}{"approved": req.Approved})
}

type transferRequest struct {
	Caller  string `json:"caller"`
	From    string `json:"from"`
	To      string `json:"to"`
	AssetId uint64 `json:"assetId"`
}

func (s Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.registry.Transfer(req.Caller, req.From, req.To, req.AssetId); err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"assetId": req.AssetId, "owner": req.To})
}

type createListingRequest struct {
	Seller   string `json:"seller"`
	Registry string `json:"registry"`
	AssetId  uint64 `json:"assetId"`
	Price    string `json:"price"`
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if !decode(w, r, &req) {
		return
	}

	price, err := parseAmount(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	registryRef := req.Registry
	if registryRef == "" {
		registryRef = s.registry.ContractRef()
	}

	listingId, err := s.ledger.CreateListing(req.Seller, registryRef, req.AssetId, price)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{"listingId": listingId})
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	size, page := pagination(r)

	var listings []entity.ListingDoc
	var err error
	if seller := r.URL.Query().Get("seller"); seller != "" {
		listings, _, err = s.listingRepo.GetListingsBySeller(seller, size, page)
	} else {
		listings, _, err = s.listingRepo.GetOpenListings(size, page)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, listings)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		writeError(w, err)
		return
	}

	listing, err := s.ledger.GetListing(listingId)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, newListingView(listing))
}

func (s Server) handleGetTotalPrice(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := s.ledger.GetTotalPrice(listingId)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"listingId": listingId, "totalPrice": total.String()})
}

type purchaseRequest struct {
	Buyer      string `json:"buyer"`
	AmountPaid string `json:"amountPaid"`
}

func (s Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req purchaseRequest
	if !decode(w, r, &req) {
		return
	}

	amountPaid, err := parseAmount(req.AmountPaid)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.PurchaseItem(req.Buyer, listingId, amountPaid); err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{"listingId": listingId, "buyer": req.Buyer})
}

func (s Server) handleGetAssetsByOwner(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	size, page := pagination(r)

	assets, _, err := s.assetRepo.GetAssetsByOwner(address, size, page)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, assets)
}

func (s Server) handleGetPurchases(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	size, page := pagination(r)

	purchases, _, err := s.listingRepo.GetPurchasesByBuyer(address, size, page)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, purchases)
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	respond(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"balance": s.bank.BalanceOf(address).String(),
	})
}

type depositRequest struct {
	Amount string `json:"amount"`
}

func (s Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var req depositRequest
	if !decode(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.bank.Deposit(address, amount); err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"balance": s.bank.BalanceOf(address).String(),
	})
}

type listingView struct {
	Id       uint64 `json:"id"`
	Registry string `json:"registry"`
	AssetId  uint64 `json:"assetId"`
	Seller   string `json:"seller"`
	Price    string `json:"price"`
	Sold     bool   `json:"sold"`
}

func newListingView(listing entity.Listing) listingView {
	return listingView{
		Id:       listing.Id,
		Registry: listing.Registry,
		AssetId:  listing.AssetId,
		Seller:   listing.Seller,
		Price:    listing.Price.String(),
		Sold:     listing.Sold,
	}
}

var errBadRequest = errors.New("bad request")

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	return true
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pagination(r *http.Request) (int, int) {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 25
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	return size, page
}

func pathId(r *http.Request, name string) (uint64, error) {
	value, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errBadRequest
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errBadRequest
	}

	return id, nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errBadRequest
	}

	return amount, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, marketplace.ErrInvalidPrice),
		errors.Is(err, registry.ErrMissingMetadataRef),
		errors.Is(err, bank.ErrInvalidAmount),
		errors.Is(err, metadata.ErrInvalidMetadataUri):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrAssetNotFound),
		errors.Is(err, marketplace.ErrListingNotFound),
		errors.Is(err, marketplace.ErrUnknownRegistry),
		errors.Is(err, metadata.ErrMetadataUnavailable):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, registry.ErrOwnershipMismatch),
		errors.Is(err, marketplace.ErrAlreadySold):
		status = http.StatusConflict
	case errors.Is(err, marketplace.ErrInsufficientPayment),
		errors.Is(err, bank.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	}

	http.Error(w, err.Error(), status)
}
