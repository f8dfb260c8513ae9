// Package funds models the opaque fungible value token used to pay for
// domain purchases and to carry withdrawn fees. Tokens support splitting
// an exact amount out of a larger token and merging two tokens, which is
// all the registry needs from the surrounding payment system.
package funds

import (
	dErrors "nameledger/pkg/domain-errors"
)

// Token is a fungible value carrier. The zero value is a zero-value token.
type Token struct {
	value uint64
}

// NewToken mints a token holding the given value.
func NewToken(value uint64) Token {
	return Token{value: value}
}

// Value reports the value held by the token.
func (t Token) Value() uint64 {
	return t.value
}

// IsZero reports whether the token holds no value.
func (t Token) IsZero() bool {
	return t.value == 0
}

// Split carves amount out of the token and returns it as a new token,
// leaving the remainder behind. Fails with insufficient_funds when the
// token holds less than amount.
func (t *Token) Split(amount uint64) (Token, error) {
	if t.value < amount {
		return Token{}, dErrors.New(dErrors.CodeInsufficientFunds, "token value below requested amount")
	}
	t.value -= amount
	return Token{value: amount}, nil
}

// Merge absorbs other into the token. The other token is spent and must
// not be reused by the caller.
func (t *Token) Merge(other Token) {
	t.value += other.value
}
