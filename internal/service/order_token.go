package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/canteen-rush/internal/constants"
)

// generateOrderToken 生成 6 位大写字母数字取餐码
func generateOrderToken() string {
	return randToken(constants.OrderTokenLength)
}

func randToken(length int) string {
	charset := constants.OrderTokenCharset
	max := big.NewInt(int64(len(charset)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(charset[0])
			continue
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String()
}
