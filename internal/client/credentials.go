package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imroc/req/v3"
	inerr "github.com/tradutema/delivery/internal/errors"
)

// expiryMargin adelanta la caducidad del token cacheado para no entregar
// tokens a punto de expirar a una subida larga.
const expiryMargin = time.Minute

// Credentials obtiene tokens de acceso para la API de almacenamiento mediante
// una concesión refresh_token contra el endpoint OAuth del proveedor. El token
// se cachea hasta su caducidad.
type Credentials struct {
	req          *req.Client
	clientID     string
	clientSecret string
	refreshToken string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewCredentials(tokenURL, clientID, clientSecret, refreshToken string) *Credentials {
	return &Credentials{
		req: req.C().
			SetBaseURL(tokenURL).
			SetTimeout(10 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
	}
}

// AccessToken devuelve un token de acceso vigente, renovándolo si el cacheado
// ha caducado.
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiry) {
		return c.token, nil
	}

	respBody := struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}{}
	resp, err := c.req.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"refresh_token": c.refreshToken,
			"grant_type":    "refresh_token",
		}).
		SetSuccessResult(&respBody).
		Post("")
	if err != nil {
		return "", fmt.Errorf("%w: %v", inerr.ErrMissingAccessToken, err)
	}

	if resp.IsErrorState() {
		return "", fmt.Errorf("%w: status code %d", inerr.ErrMissingAccessToken, resp.StatusCode)
	}

	if respBody.AccessToken == "" {
		return "", inerr.ErrMissingAccessToken
	}

	c.token = respBody.AccessToken
	c.expiry = time.Now().Add(time.Duration(respBody.ExpiresIn)*time.Second - expiryMargin)

	return c.token, nil
}
