package blockchain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Contract call signatures used by the escrow and carbon-credit contracts
const (
	SigDeposit = "deposit(bytes32,address)"
	SigRelease = "release(bytes32)"
	SigRefund  = "refund(bytes32)"
	SigMint    = "mint(address,uint256)"

	SigBalanceOf = "balanceOf(address)"
)

// weiPerMinorUnit maps one price minor unit (a cent) onto 1e16 wei, so one
// whole currency unit equals one native token.
var weiPerMinorUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// Selector returns the first four bytes of keccak256(signature)
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// EncodeBytes32 left-aligns b in a 32-byte word
func EncodeBytes32(b [32]byte) []byte {
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// EncodeAddress right-aligns a 20-byte address in a 32-byte word
func EncodeAddress(addr string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(addr), "0x"))
	if err != nil || len(raw) != 20 {
		return nil, fmt.Errorf("invalid address %q", addr)
	}
	out := make([]byte, 32)
	copy(out[12:], raw)
	return out, nil
}

func EncodeUint256(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("value out of uint256 range")
	}
	out := make([]byte, 32)
	v.FillBytes(out)
	return out, nil
}

// DecodeUint256 reads a single 32-byte word returned by eth_call
func DecodeUint256(word string) (*big.Int, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(word, "0x"))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("invalid uint256 word %q", word)
	}
	return new(big.Int).SetBytes(raw), nil
}

// PackCall builds 0x-prefixed calldata from a signature and pre-encoded static words
func PackCall(signature string, words ...[]byte) string {
	buf := make([]byte, 0, 4+32*len(words))
	buf = append(buf, Selector(signature)...)
	for _, w := range words {
		buf = append(buf, w...)
	}
	return "0x" + hex.EncodeToString(buf)
}

// OrderRef derives the on-chain escrow key for an order
func OrderRef(orderID uuid.UUID) [32]byte {
	var ref [32]byte
	copy(ref[:], orderID[:])
	return ref
}

func AmountToWei(minorUnits int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(minorUnits), weiPerMinorUnit)
}
