package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateKeyWithParams joins a prefix and parameters with ":".
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, param)
	}
	return b.String()
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BuildPattern creates a glob matching every key under prefix.
func BuildPattern(prefix string) string {
	return prefix + ":*"
}
