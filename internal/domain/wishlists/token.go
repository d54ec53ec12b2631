package wishlists

import (
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

// TokenCodec turns wishlist ids into short opaque share tokens so a
// public wishlist link does not leak sequential row ids.
type TokenCodec struct {
	h *hashids.HashID
}

func NewTokenCodec(salt string) (*TokenCodec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 10

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init share token codec: %w", err)
	}
	return &TokenCodec{h: h}, nil
}

func (c *TokenCodec) Encode(wishlistID int64) (string, error) {
	token, err := c.h.EncodeInt64([]int64{wishlistID})
	if err != nil {
		return "", fmt.Errorf("encode share token: %w", err)
	}
	return token, nil
}

func (c *TokenCodec) Decode(token string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(token)
	if err != nil || len(ids) != 1 {
		return 0, ErrBadShareToken
	}
	return ids[0], nil
}
