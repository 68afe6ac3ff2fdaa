package util

import (
	"crypto/rand"
	"encoding/hex"
)

const minSigningTokenLength = 32

// GenerateSigningToken : случайный hex токен для ссылки подписанта.
// Уникальность гарантируется индексом recipients.token, коллизия при 128+ битах энтропии не ожидается
func GenerateSigningToken(length int) (string, error) {
	if length < minSigningTokenLength {
		length = minSigningTokenLength
	}

	byteLength := (length + 1) / 2 // hex кодирует 1 байт = 2 символа
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", LogError("[util] ошибка генерации токена", err)
	}

	return hex.EncodeToString(bytes)[:length], nil
}
