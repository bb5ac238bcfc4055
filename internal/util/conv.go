package util

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MustParseUint returns 0 when s is not an unsigned integer.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id := MustParseUint(c.Param(name))
	if id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// Pagination reads page/limit query parameters with sane bounds.
func Pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

const randomAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString returns n characters from an unambiguous uppercase alphabet.
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = randomAlphabet[i%len(randomAlphabet)]
			continue
		}
		b[i] = randomAlphabet[idx.Int64()]
	}
	return string(b)
}
