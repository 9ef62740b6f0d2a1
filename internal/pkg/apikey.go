package pkg

import (
	cryptoRand "crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const apiKeyBytes = 24

// NewAPIKey 生成随机 API key，只在创建用户时返回一次
func NewAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := cryptoRand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DigestAPIKey 库里只存 key 的 BLAKE2b-256 摘要
func DigestAPIKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
