// Package security genera los tokens aleatorios criptográficamente seguros
// que protegen el enlace público de entrega.
package security

import (
	"crypto/rand"
	"encoding/base64"
)

func RandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return b, nil
}

// RandomString devuelve una cadena aleatoria de longitud size formada solo
// por caracteres seguros en URL.
func RandomString(size int) (string, error) {
	b, err := RandomBytes(size)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b)[:size], nil
}
