package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/drive/v3"
	defaultUploadBase = "https://www.googleapis.com/upload/drive/v3"

	shareParam = "usp=share_link"
)

// TokenSource entrega el token de acceso para la API de almacenamiento.
// El flujo OAuth es responsabilidad del colaborador, nunca de esta pasarela.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Drive habla con la API remota de almacenamiento de documentos. Las cachés
// de permisos y de enlaces viven en la instancia: una pasarela se construye
// por ejecución del flujo y no debe compartirse entre peticiones.
type Drive struct {
	req        *req.Client
	creds      TokenSource
	apiBase    string
	uploadBase string
	shared     map[string]struct{}
	links      map[string]string
}

func NewDrive(creds TokenSource, apiBase, uploadBase string) *Drive {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if uploadBase == "" {
		uploadBase = defaultUploadBase
	}

	return &Drive{
		req:        req.C().SetTimeout(30 * time.Second),
		creds:      creds,
		apiBase:    apiBase,
		uploadBase: uploadBase,
		shared:     map[string]struct{}{},
		links:      map[string]string{},
	}
}

// EnsurePublicReadable concede permiso de lectura pública a una carpeta.
// Es idempotente y de mejor esfuerzo: la carpeta puede estar ya compartida y
// la obtención del enlace tolera por sí sola el fallo, así que los errores se
// tragan. Emite como máximo un par de llamadas remotas por carpeta y
// ejecución.
func (d *Drive) EnsurePublicReadable(ctx context.Context, folderID string) {
	if folderID == "" {
		return
	}
	if _, ok := d.shared[folderID]; ok {
		return
	}

	d.shared[folderID] = struct{}{}

	token, err := d.creds.AccessToken(ctx)
	if err != nil {
		return
	}

	_, _ = d.req.R().
		SetContext(ctx).
		SetBearerAuthToken(token).
		SetBodyJsonMarshal(map[string]string{"role": "reader", "type": "anyone"}).
		Post(d.apiBase + "/files/" + folderID + "/permissions")

	_, _ = d.req.R().
		SetContext(ctx).
		SetBearerAuthToken(token).
		SetBodyJsonMarshal(map[string]bool{"copyRequiresWriterPermission": false}).
		Patch(d.apiBase + "/files/" + folderID)
}

// ShareLink devuelve un enlace compartible a la carpeta, normalizado con el
// marcador usp=share_link. Estrategia en cascada: metadatos remotos si hay
// token y carpeta, la url de respaldo si sigue siendo utilizable y, en último
// término, la url canónica sintetizada. El resultado se cachea por carpeta
// para que dos llamadas en el mismo flujo emitan una sola petición remota.
func (d *Drive) ShareLink(ctx context.Context, folderID, fallbackURL string) string {
	cacheKey := folderID
	if cacheKey == "" {
		cacheKey = fallbackURL
	}
	if cacheKey == "" {
		return ""
	}
	if link, ok := d.links[cacheKey]; ok {
		return link
	}

	link := d.resolveShareLink(ctx, folderID, fallbackURL)
	d.links[cacheKey] = link

	return link
}

func (d *Drive) resolveShareLink(ctx context.Context, folderID, fallbackURL string) string {
	if folderID != "" {
		if token, err := d.creds.AccessToken(ctx); err == nil {
			respBody := struct {
				WebViewLink    string `json:"webViewLink"`
				WebContentLink string `json:"webContentLink"`
				AlternateLink  string `json:"alternateLink"`
			}{}
			resp, err := d.req.R().
				SetContext(ctx).
				SetBearerAuthToken(token).
				SetQueryParam("fields", "webViewLink,webContentLink,alternateLink").
				SetSuccessResult(&respBody).
				Get(d.apiBase + "/files/" + folderID)
			if err == nil && !resp.IsErrorState() {
				for _, candidate := range []string{respBody.WebViewLink, respBody.WebContentLink, respBody.AlternateLink} {
					if candidate != "" {
						return withShareParam(candidate)
					}
				}
			}
		}
	}

	if fallbackURL != "" && (folderID == "" || strings.Contains(fallbackURL, folderID)) {
		return withShareParam(fallbackURL)
	}

	if folderID != "" {
		return fmt.Sprintf("https://drive.google.com/drive/folders/%s?%s", folderID, shareParam)
	}

	return ""
}

// Upload sube un archivo a la carpeta indicada en una única petición
// multiparte (metadatos + binario). No hay subida reanudable: los adjuntos
// del flujo son documentos pequeños.
func (d *Drive) Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (entity.DriveFile, error) {
	if folderID == "" {
		return entity.DriveFile{}, inerr.ErrMissingFolder
	}

	token, err := d.creds.AccessToken(ctx)
	if err != nil {
		return entity.DriveFile{}, fmt.Errorf("%w: %v", inerr.ErrMissingAccessToken, err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return entity.DriveFile{}, fmt.Errorf("%w: %v", inerr.ErrFileRead, err)
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metaPart, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return entity.DriveFile{}, err
	}
	if err := json.NewEncoder(metaPart).Encode(map[string]any{"name": name, "parents": []string{folderID}}); err != nil {
		return entity.DriveFile{}, err
	}

	filePart, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {mimeType}})
	if err != nil {
		return entity.DriveFile{}, err
	}
	if _, err := filePart.Write(data); err != nil {
		return entity.DriveFile{}, err
	}
	if err := writer.Close(); err != nil {
		return entity.DriveFile{}, err
	}

	respBody := struct {
		ID          string `json:"id"`
		WebViewLink string `json:"webViewLink"`
	}{}
	resp, err := d.req.R().
		SetContext(ctx).
		SetBearerAuthToken(token).
		SetContentType("multipart/related; boundary=" + writer.Boundary()).
		SetBodyBytes(body.Bytes()).
		SetSuccessResult(&respBody).
		Post(d.uploadBase + "/files?uploadType=multipart")
	if err != nil {
		return entity.DriveFile{}, fmt.Errorf("%w: %v", inerr.ErrStorageTransport, err)
	}

	if resp.IsErrorState() {
		apiErr := struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}{}
		_ = json.Unmarshal([]byte(resp.String()), &apiErr)
		if apiErr.Error.Message != "" {
			return entity.DriveFile{}, fmt.Errorf("%w: %s", inerr.ErrStorageAPI, apiErr.Error.Message)
		}

		return entity.DriveFile{}, fmt.Errorf("%w: status code %d", inerr.ErrStorageAPI, resp.StatusCode)
	}

	if respBody.ID == "" {
		return entity.DriveFile{}, inerr.ErrInvalidResponse
	}

	return entity.DriveFile{ID: respBody.ID, WebViewLink: respBody.WebViewLink}, nil
}

// withShareParam sustituye la query de la url por el marcador compartible.
func withShareParam(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if strings.Contains(raw, "?") {
			return raw + "&" + shareParam
		}

		return raw + "?" + shareParam
	}

	u.RawQuery = shareParam
	u.Fragment = ""

	return u.String()
}
