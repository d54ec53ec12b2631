package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OrderNumberGenerator produces short human-quotable order numbers. The
// HMAC keeps them non-guessable from the user id alone.
type OrderNumberGenerator struct {
	secret string
}

func NewOrderNumberGenerator(secret string) *OrderNumberGenerator {
	return &OrderNumberGenerator{secret: secret}
}

func (g *OrderNumberGenerator) Generate(userID int64) string {
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(fmt.Sprintf("uid:%d|nonce:%s", userID, nonce)))

	tag := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))

	return fmt.Sprintf(
		"BZR-%s-%s",
		strings.ToUpper(tag[:5]),
		strings.ToUpper(nonce[:4]),
	)
}
