package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dappmarket/nft-marketplace/internal/entity"
	"github.com/dappmarket/nft-marketplace/internal/helper"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrInvalidMetadataUri  = errors.New("metadata ref is not resolvable")
	ErrMetadataUnavailable = errors.New("metadata not available")
)

// Service resolves an asset's metadataRef into its metadata document.
// Failures here never affect settlement; the ref itself stays immutable.
type Service interface {
	GetMetadata(asset entity.Asset) (map[string]interface{}, error)
}

type service struct {
	client    *retryablehttp.Client
	cache     *cache.Cache
	ipfsHosts []string
}

func NewMetadataService(client *retryablehttp.Client, ipfsHosts []string) Service {
	return service{client, cache.New(10*time.Minute, 30*time.Minute), ipfsHosts}
}

func (s service) GetMetadata(asset entity.Asset) (map[string]interface{}, error) {
	if cached, found := s.cache.Get(asset.Slug()); found {
		return cached.(map[string]interface{}), nil
	}

	md, err := s.fetch(asset)
	if err != nil {
		return nil, err
	}

	s.cache.Set(asset.Slug(), md, cache.DefaultExpiration)

	return md, nil
}

func (s service) fetch(asset entity.Asset) (map[string]interface{}, error) {
	if helper.IsIpfs(asset.MetadataRef) {
		return s.fetchIpfs(asset.MetadataRef)
	}

	if !helper.IsUrl(asset.MetadataRef) {
		return nil, ErrInvalidMetadataUri
	}

	return s.fetchUri(asset.MetadataRef)
}

func (s service) fetchIpfs(uri string) (map[string]interface{}, error) {
	for _, host := range s.ipfsHosts {
		resolved, ok := helper.ResolveIpfs(uri, host)
		if !ok {
			return nil, ErrInvalidMetadataUri
		}

		md, err := s.fetchUri(resolved)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("gateway", host)).Debug("Metadata: Gateway failed")
			continue
		}

		return md, nil
	}

	return nil, ErrMetadataUnavailable
}

func (s service) fetchUri(uri string) (map[string]interface{}, error) {
	resp, err := s.client.Get(uri)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnavailable, resp.Status)
	}

	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	var md map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		return nil, err
	}

	return md, nil
}
