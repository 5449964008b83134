package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	inerr "github.com/tradutema/delivery/internal/errors"
)

func TestCredentials_AccessToken(t *testing.T) {
	var (
		ctx      = context.Background()
		tokenURL = "https://oauth.loc/token"
	)

	c := NewCredentials(tokenURL, "id", "secreto", "refresco")
	httpmock.ActivateNonDefault(c.req.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(
		"POST",
		tokenURL,
		httpmock.NewStringResponder(http.StatusOK, `{"access_token":"tok-1","expires_in":3600}`),
	)

	token, err := c.AccessToken(ctx)
	require.NoError(t, err, "obtención correcta del token")
	assert.Equal(t, "tok-1", token, "obtención correcta del token")

	token, err = c.AccessToken(ctx)
	require.NoError(t, err, "segunda llamada servida desde la caché")
	assert.Equal(t, "tok-1", token, "segunda llamada servida desde la caché")
	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+tokenURL], "una sola concesión mientras el token está vigente")
}

func TestCredentials_AccessTokenExpired(t *testing.T) {
	var (
		ctx      = context.Background()
		tokenURL = "https://oauth.loc/token"
	)

	c := NewCredentials(tokenURL, "id", "secreto", "refresco")
	httpmock.ActivateNonDefault(c.req.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(
		"POST",
		tokenURL,
		httpmock.NewStringResponder(http.StatusOK, `{"access_token":"tok-2","expires_in":3600}`),
	)

	c.token = "tok-caducado"
	c.expiry = time.Now().Add(-time.Minute)

	token, err := c.AccessToken(ctx)
	require.NoError(t, err, "el token caducado fuerza una renovación")
	assert.Equal(t, "tok-2", token, "el token caducado fuerza una renovación")
}

func TestCredentials_AccessTokenErrors(t *testing.T) {
	var (
		ctx      = context.Background()
		tokenURL = "https://oauth.loc/token"
	)

	c := NewCredentials(tokenURL, "id", "secreto", "refresco")
	httpmock.ActivateNonDefault(c.req.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(
		"POST",
		tokenURL,
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"invalid_grant"}`),
	)

	_, err := c.AccessToken(ctx)
	assert.ErrorIs(t, err, inerr.ErrMissingAccessToken, "respuesta de error del endpoint OAuth")

	httpmock.Reset()
	httpmock.RegisterResponder(
		"POST",
		tokenURL,
		httpmock.NewStringResponder(http.StatusOK, `{}`),
	)

	_, err = c.AccessToken(ctx)
	assert.ErrorIs(t, err, inerr.ErrMissingAccessToken, "respuesta sin token de acceso")
}
