package registry

import (
	"errors"
	"testing"
)

func TestMintAssignsSequentialIds(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")

	for want := uint64(1); want <= 3; want++ {
		assetId, err := r.Mint("0xAAA", "ipfs://QmNgCwBUSyFYMTFwEaWrtVdFDTBLRRiwAjyHyEVezzNdY1")
		if err != nil {
			t.Fatalf("Mint returned error: %v", err)
		}
		if assetId != want {
			t.Errorf("Mint id = %d, want %d", assetId, want)
		}
	}

	if r.TotalMinted() != 3 {
		t.Errorf("TotalMinted = %d, want 3", r.TotalMinted())
	}
}

func TestMintRequiresMetadataRef(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")

	if _, err := r.Mint("0xaaa", ""); !errors.Is(err, ErrMissingMetadataRef) {
		t.Errorf("Mint error = %v, want ErrMissingMetadataRef", err)
	}
	if r.TotalMinted() != 0 {
		t.Errorf("TotalMinted = %d after rejected mint, want 0", r.TotalMinted())
	}
}

func TestMintRecordsRequesterAsOwner(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")

	assetId, err := r.Mint("0xABCdef", "ipfs://QmHash")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	owner, err := r.OwnerOf(assetId)
	if err != nil {
		t.Fatalf("OwnerOf returned error: %v", err)
	}
	if owner != "0xabcdef" {
		t.Errorf("owner = %q, want lowercased requester", owner)
	}
}

func TestOwnerOfUnknownAsset(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")

	if _, err := r.OwnerOf(1); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("OwnerOf error = %v, want ErrAssetNotFound", err)
	}
	if _, err := r.GetAsset(1); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("GetAsset error = %v, want ErrAssetNotFound", err)
	}
}

func TestSetApprovalForAll(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")

	if r.IsApprovedForAll("0xowner", "0xoperator") {
		t.Error("approval should default to false")
	}

	r.SetApprovalForAll("0xOwner", "0xOperator", true)
	if !r.IsApprovedForAll("0xowner", "0xoperator") {
		t.Error("approval not recorded")
	}

	r.SetApprovalForAll("0xowner", "0xoperator", false)
	if r.IsApprovedForAll("0xowner", "0xoperator") {
		t.Error("approval not revoked")
	}
}

func TestTransferByOwner(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")
	assetId, _ := r.Mint("0xseller", "ipfs://QmHash")

	if err := r.Transfer("0xseller", "0xseller", "0xbuyer", assetId); err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}

	owner, _ := r.OwnerOf(assetId)
	if owner != "0xbuyer" {
		t.Errorf("owner = %q, want 0xbuyer", owner)
	}
}

func TestTransferByApprovedOperator(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")
	assetId, _ := r.Mint("0xseller", "ipfs://QmHash")
	r.SetApprovalForAll("0xseller", "0xmarket", true)

	if err := r.Transfer("0xmarket", "0xseller", "0xmarket", assetId); err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}

	owner, _ := r.OwnerOf(assetId)
	if owner != "0xmarket" {
		t.Errorf("owner = %q, want 0xmarket", owner)
	}
}

func TestTransferRejections(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")
	assetId, _ := r.Mint("0xseller", "ipfs://QmHash")

	tests := []struct {
		name    string
		caller  string
		from    string
		to      string
		assetId uint64
		wantErr error
	}{
		{"stranger is not authorized", "0xstranger", "0xseller", "0xstranger", assetId, ErrNotAuthorized},
		{"unknown asset", "0xseller", "0xseller", "0xbuyer", 99, ErrAssetNotFound},
		{"stated owner mismatch", "0xbuyer", "0xbuyer", "0xother", assetId, ErrOwnershipMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Transfer(tt.caller, tt.from, tt.to, tt.assetId); !errors.Is(err, tt.wantErr) {
				t.Errorf("Transfer error = %v, want %v", err, tt.wantErr)
			}

			owner, err := r.OwnerOf(assetId)
			if err != nil {
				t.Fatalf("OwnerOf returned error: %v", err)
			}
			if owner != "0xseller" {
				t.Errorf("owner changed to %q after rejected transfer", owner)
			}
		})
	}
}

func TestAssetsByOwnerSortedById(t *testing.T) {
	r := NewAssetRegistry("dapp-nft")
	r.Mint("0xalice", "ipfs://QmOne")
	r.Mint("0xbob", "ipfs://QmTwo")
	r.Mint("0xalice", "ipfs://QmThree")

	assets := r.AssetsByOwner("0xAlice")
	if len(assets) != 2 {
		t.Fatalf("AssetsByOwner returned %d assets, want 2", len(assets))
	}
	if assets[0].Id != 1 || assets[1].Id != 3 {
		t.Errorf("AssetsByOwner ids = [%d, %d], want [1, 3]", assets[0].Id, assets[1].Id)
	}

	if len(r.AssetsByOwner("0xnobody")) != 0 {
		t.Error("AssetsByOwner for unknown owner should be empty")
	}
}
