package helper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ipfsHashRe = regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44}.*$)")

func IsUrl(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func IsIpfs(uri string) bool {
	if strings.HasPrefix(uri, "ipfs://") {
		return true
	}

	return ipfsHashRe.MatchString(uri)
}

// GetIpfsHash extracts the content hash (and any trailing path) from an ipfs
// uri or a gateway url embedding one.
func GetIpfsHash(uri string) (string, bool) {
	parts := ipfsHashRe.FindStringSubmatch(uri)
	if len(parts) == 2 {
		return parts[1], true
	}

	return "", false
}

// ResolveIpfs rewrites an ipfs uri against a gateway host.
func ResolveIpfs(uri, gateway string) (string, bool) {
	hash, ok := GetIpfsHash(uri)
	if !ok {
		return "", false
	}

	return fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(gateway, "/"), hash), true
}
