package ledger

import (
	"bytes"
	"crypto/sha512"
	"math/big"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

// masterRoot computes the Ω master root string for a height and balance map.
// The canonical byte form sorts accounts by (phone, label) so the digest is
// independent of map iteration order. Two hash functions are folded over the
// same bytes and their concatenation is rendered in base 8 inside the
// ";∞;sha-less;…;" frame. The framing is cosmetic; the determinism is the
// contract.
func masterRoot(height uint64, balances map[ledger.AccountID]*big.Int) string {
	payload := canonicalBytes(height, balances)

	shaOut := sha512.Sum512(payload)
	blakeOut := blake2b.Sum512(payload)

	combined := make([]byte, 0, len(shaOut)+len(blakeOut))
	combined = append(combined, shaOut[:]...)
	combined = append(combined, blakeOut[:]...)

	oct := new(big.Int).SetBytes(combined).Text(8)

	var b bytes.Buffer
	b.WriteString(";∞;sha-less;")
	b.WriteString(oct)
	b.WriteString(";")
	return b.String()
}

// canonicalBytes serializes (height, balances) with stable field ordering.
func canonicalBytes(height uint64, balances map[ledger.AccountID]*big.Int) []byte {
	ids := make([]ledger.AccountID, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Phone != ids[j].Phone {
			return ids[i].Phone < ids[j].Phone
		}
		return ids[i].Label < ids[j].Label
	})

	var b bytes.Buffer
	b.WriteString(";height;")
	b.WriteString(new(big.Int).SetUint64(height).String())
	b.WriteString(";")
	for _, id := range ids {
		b.WriteString(";")
		b.WriteString(id.Phone)
		b.WriteString(";")
		b.WriteString(id.Label)
		b.WriteString(";=")
		b.WriteString(balances[id].String())
		b.WriteString(";")
	}
	return b.Bytes()
}

// LabelUniversePath builds the canonical Ω filesystem path for a
// (phone, label) universe file: ;phone;label;∞;∞;∞;∞;∞;∞;∞;∞;hash;
func LabelUniversePath(id ledger.AccountID) string {
	var b bytes.Buffer
	b.WriteString(";")
	b.WriteString(id.Phone)
	b.WriteString(";")
	b.WriteString(id.Label)
	b.WriteString(";∞;∞;∞;∞;∞;∞;∞;∞;hash;")
	return b.String()
}
