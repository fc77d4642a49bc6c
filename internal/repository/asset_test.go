package repository

import (
	"strings"
	"testing"
)

func TestGetAssetsByOwnerNormalizesOwner(t *testing.T) {
	var captured string
	repo := NewAssetRepository(newCapturingIndex(t, &captured))

	if _, _, err := repo.GetAssetsByOwner("0xAliCe", 10, 1); err != nil {
		t.Fatalf("GetAssetsByOwner returned error: %v", err)
	}

	if !strings.Contains(captured, `"owner.keyword":"0xalice"`) {
		t.Errorf("query = %s, want lowercase owner term", captured)
	}
}
