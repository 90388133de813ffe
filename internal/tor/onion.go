package tor

import (
	"encoding/base32"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address layout.
const (
	// OnionV3Length is the base32 part of a v3 address.
	OnionV3Length = 56

	// OnionV3Version is the trailing version byte of a v3 address.
	OnionV3Version = 0x03

	// OnionSuffix ends every onion host.
	OnionSuffix = ".onion"
)

var (
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is hashed ahead of the key when computing a v3 checksum.
var checksumPrefix = []byte(".onion checksum")

// IsValidV3Address reports whether address (host only, with the .onion
// suffix) is a v3 address whose checksum and version byte are correct.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// pubkey(32) | checksum(2) | version(1)
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != OnionV3Version {
		return false
	}

	want := computeV3Checksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// computeV3Checksum returns the first two bytes of
// SHA3-256(".onion checksum" | pubkey | version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	sum := sha3.Sum256(data)
	return sum[:2]
}

// IsV2Address reports whether address has the retired v2 shape.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// ComputeV3AddressFromPublicKey builds the v3 address of a 32-byte ed25519
// public key.
func ComputeV3AddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", fmt.Errorf("%w: public key must be 32 bytes, got %d", ErrInvalidOnionAddress, len(pubkey))
	}

	data := make([]byte, 35)
	copy(data[:32], pubkey)
	copy(data[32:34], computeV3Checksum(pubkey, OnionV3Version))
	data[34] = OnionV3Version

	return strings.ToLower(base32.StdEncoding.EncodeToString(data)) + OnionSuffix, nil
}

// IsOnionURL reports whether rawURL points at a .onion host.
func IsOnionURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), OnionSuffix)
}

// ValidateSeed checks a seed before crawling. Non-onion seeds always pass:
// their problems surface as ordinary fetch failures. Onion seeds need a
// proxy and a valid v3 host.
func ValidateSeed(rawURL string, haveProxy bool) error {
	if !IsOnionURL(rawURL) {
		return nil
	}
	if !haveProxy {
		return fmt.Errorf("%w: %s", ErrOnionNeedsProxy, rawURL)
	}

	u, _ := url.Parse(rawURL) //nolint:errcheck // IsOnionURL already parsed it
	host := strings.ToLower(u.Hostname())
	if IsValidV3Address(host) {
		return nil
	}
	if IsV2Address(host) {
		return fmt.Errorf("%w: %s", ErrV2AddressDeprecated, host)
	}
	return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, host)
}
