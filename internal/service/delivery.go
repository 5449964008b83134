package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
	"github.com/tradutema/delivery/internal/status"
	"go.uber.org/zap"
)

type OrderStore interface {
	Find(ctx context.Context, id int) (entity.Order, error)
	Meta(ctx context.Context, orderID int) (entity.OrderMeta, error)
	SaveMeta(ctx context.Context, meta entity.OrderMeta) error
}

type ProviderStore interface {
	Find(ctx context.Context, id int) (entity.Provider, error)
}

type TokenStore interface {
	Issue(ctx context.Context, orderID int) (string, error)
	Find(ctx context.Context, token string) (entity.UploadToken, error)
	Consume(ctx context.Context, token string, files []string) error
	History(ctx context.Context, orderID int) ([]entity.UploadToken, error)
}

type StorageGateway interface {
	EnsurePublicReadable(ctx context.Context, folderID string)
	ShareLink(ctx context.Context, folderID, fallbackURL string) string
	Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (entity.DriveFile, error)
}

type Notifier interface {
	NotifyInternalCompletion(ctx context.Context, order entity.Order, meta entity.OrderMeta, provider *entity.Provider) (entity.EmailReceipt, error)
	NotifyClientDelivery(ctx context.Context, order entity.Order, meta entity.OrderMeta, provider *entity.Provider, links map[entity.SubfolderKey]string) (entity.EmailReceipt, error)
}

type AuditLog interface {
	Append(ctx context.Context, event entity.AuditEvent) error
}

// RedemptionView es el estado que ve quien abre el enlace de entrega.
type RedemptionView struct {
	OrderID        int
	Reference      string
	ProviderName   string
	Internal       bool
	Used           bool
	SourceLanguage string
	TargetLanguage string
}

// RedemptionResult es el desenlace de una redención completada.
type RedemptionResult struct {
	OrderID  int
	Internal bool
	Status   entity.OperationalStatus
	Files    []string
	ShareURL string
}

// Delivery orquesta el flujo de entrega: redención del token de un solo uso,
// subida de archivos, transición de estado, notificaciones y registro de
// actividad. Recibe todos sus colaboradores por constructor.
type Delivery struct {
	orders     OrderStore
	providers  ProviderStore
	tokens     TokenStore
	newStorage func() StorageGateway
	notifier   Notifier
	audit      AuditLog
	publicURL  string
	log        *zap.Logger
	locks      *tokenLocks
}

// NewDelivery construye el orquestador. newStorage se invoca una vez por
// redención: las cachés de la pasarela de almacenamiento viven exactamente lo
// que dura una ejecución del flujo.
func NewDelivery(
	orders OrderStore,
	providers ProviderStore,
	tokens TokenStore,
	newStorage func() StorageGateway,
	notifier Notifier,
	audit AuditLog,
	publicURL string,
	log *zap.Logger,
) *Delivery {
	return &Delivery{
		orders:     orders,
		providers:  providers,
		tokens:     tokens,
		newStorage: newStorage,
		notifier:   notifier,
		audit:      audit,
		publicURL:  publicURL,
		log:        log,
		locks:      newTokenLocks(),
	}
}

// Begin resuelve el token y devuelve el estado a presentar en el formulario
// de entrega. No muta nada.
func (s *Delivery) Begin(ctx context.Context, token string) (RedemptionView, error) {
	record, err := s.tokens.Find(ctx, token)
	if err != nil {
		return RedemptionView{}, err
	}

	order, err := s.orders.Find(ctx, record.OrderID)
	if err != nil {
		return RedemptionView{}, err
	}

	meta, err := s.orders.Meta(ctx, record.OrderID)
	if err != nil {
		return RedemptionView{}, err
	}

	view := RedemptionView{
		OrderID:        order.ID,
		Reference:      meta.Reference,
		Used:           record.Used,
		SourceLanguage: meta.SourceLanguage,
		TargetLanguage: meta.TargetLanguage,
	}
	if provider, err := s.assignedProvider(ctx, meta); err == nil && provider != nil {
		view.ProviderName = provider.Name
		view.Internal = provider.Internal
	}

	return view, nil
}

// Redeem ejecuta la redención de un token. Cada paso es precondición dura
// del siguiente: cualquier fallo previo a la subida aborta sin mutar nada y
// un fallo durante la subida aborta el lote completo sin consumir el token,
// de modo que el proveedor puede reintentar.
func (s *Delivery) Redeem(ctx context.Context, token string, files []entity.FileUpload) (RedemptionResult, error) {
	s.locks.lock(token)
	defer s.locks.unlock(token)

	record, err := s.tokens.Find(ctx, token)
	if err != nil {
		return RedemptionResult{}, err
	}
	if record.Used {
		return RedemptionResult{}, inerr.ErrTokenAlreadyUsed
	}

	order, err := s.orders.Find(ctx, record.OrderID)
	if err != nil {
		return RedemptionResult{}, err
	}

	meta, err := s.orders.Meta(ctx, record.OrderID)
	if err != nil {
		return RedemptionResult{}, err
	}

	provider, err := s.assignedProvider(ctx, meta)
	if err != nil {
		return RedemptionResult{}, err
	}

	if provider != nil && provider.Internal {
		return s.completeInternal(ctx, token, order, meta, provider)
	}

	return s.completeExternal(ctx, token, order, meta, provider, files)
}

// completeInternal cierra la redención de un proveedor interno: confirmación
// sin archivos. No hay ninguna interacción con el almacenamiento remoto.
func (s *Delivery) completeInternal(ctx context.Context, token string, order entity.Order, meta entity.OrderMeta, provider *entity.Provider) (RedemptionResult, error) {
	previous := meta.Status
	if previous != entity.StatusTranslated {
		meta.Status = entity.StatusTranslated
		if err := s.orders.SaveMeta(ctx, meta); err != nil {
			return RedemptionResult{}, err
		}

		s.auditStatusChange(ctx, order.ID, previous, meta.Status)
	}

	if receipt, err := s.notifier.NotifyInternalCompletion(ctx, order, meta, provider); err != nil {
		s.log.Warn("no se pudo notificar la finalización interna", zap.Int("pedido", order.ID), zap.Error(err))
	} else {
		s.auditEmail(ctx, order.ID, receipt)
	}

	if err := s.tokens.Consume(ctx, token, nil); err != nil {
		return RedemptionResult{}, err
	}

	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: order.ID,
		Type:    entity.AuditInternalCompletion,
		Detail:  "El proveedor interno confirmó la traducción",
		Payload: map[string]string{"proveedor": provider.Name, "estado": string(meta.Status)},
	})

	return RedemptionResult{OrderID: order.ID, Internal: true, Status: meta.Status}, nil
}

// completeExternal sube los archivos entregados, consume el token y aplica la
// transición de estado según el modo de entrega del pedido.
func (s *Delivery) completeExternal(ctx context.Context, token string, order entity.Order, meta entity.OrderMeta, provider *entity.Provider, files []entity.FileUpload) (RedemptionResult, error) {
	if len(files) == 0 {
		return RedemptionResult{}, fmt.Errorf("%w: el formulario no incluye archivos", inerr.ErrUploadValidation)
	}

	storage := s.newStorage()

	// Camino dual heredado: históricamente los subidores marcados como
	// internos apuntaban a 03-Translation. El camino interno actual nunca
	// llega aquí, pero la selección se conserva tal cual.
	key := entity.SubfolderToClient
	if provider != nil && provider.Internal {
		key = entity.SubfolderTranslation
	}

	ref := order.Folders[key]
	if ref.ID == "" {
		return RedemptionResult{}, fmt.Errorf("%w: %v (%s)", inerr.ErrStorageUnavailable, inerr.ErrMissingFolder, key)
	}

	storage.EnsurePublicReadable(ctx, ref.ID)

	var names []string
	for _, file := range files {
		if _, err := storage.Upload(ctx, ref.ID, file.Name, file.ContentType, file.Content); err != nil {
			return RedemptionResult{}, fmt.Errorf("%w: %v", inerr.ErrStorageUnavailable, err)
		}

		names = append(names, file.Name)
	}

	if err := s.tokens.Consume(ctx, token, names); err != nil {
		return RedemptionResult{}, err
	}

	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: order.ID,
		Type:    entity.AuditFilesUpload,
		Detail:  fmt.Sprintf("%d archivo(s) subidos a %s", len(names), key),
		Payload: map[string]any{"archivos": names, "carpeta": string(key)},
	})

	previous := meta.Status
	target := entity.StatusDelivered
	if s.requiresPaperDelivery(order, meta) {
		target = entity.StatusAwaitingClientValidation
	}

	now := time.Now()
	meta.Status = target
	meta.RealPDFDelivery = &now
	if err := s.orders.SaveMeta(ctx, meta); err != nil {
		return RedemptionResult{}, err
	}
	if previous != target {
		s.auditStatusChange(ctx, order.ID, previous, target)
	}

	links := s.shareLinks(ctx, storage, order)
	if receipt, err := s.notifier.NotifyClientDelivery(ctx, order, meta, provider, links); err != nil {
		s.log.Warn("no se pudo notificar la entrega", zap.Int("pedido", order.ID), zap.Error(err))
	} else {
		s.auditEmail(ctx, order.ID, receipt)
	}

	return RedemptionResult{
		OrderID:  order.ID,
		Status:   target,
		Files:    names,
		ShareURL: links[entity.SubfolderToClient],
	}, nil
}

// IssueUploadLink emite un nuevo enlace de subida para el pedido.
func (s *Delivery) IssueUploadLink(ctx context.Context, orderID int, userID *int) (string, error) {
	if _, err := s.orders.Find(ctx, orderID); err != nil {
		return "", err
	}

	history, err := s.tokens.History(ctx, orderID)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(ctx, orderID)
	if err != nil {
		return "", err
	}

	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: orderID,
		UserID:  userID,
		Type:    entity.AuditOrderUpdate,
		Detail:  "Enlace de subida generado",
		Payload: map[string]int{"enlaces_previos": len(history)},
	})

	return fmt.Sprintf("%s/?token=%s", strings.TrimRight(s.publicURL, "/"), token), nil
}

// UpdateMeta guarda los metadatos editados de un pedido y registra la lista
// de cambios campo a campo. Si nada cambió no escribe ni registra.
func (s *Delivery) UpdateMeta(ctx context.Context, after entity.OrderMeta, userID *int) error {
	before, err := s.orders.Meta(ctx, after.OrderID)
	if err != nil {
		return err
	}

	after.Status = status.Normalize(string(after.Status))
	changes := status.DescribeChanges(before, after, s.providerName(ctx))
	if len(changes) == 0 {
		return nil
	}

	if err := s.orders.SaveMeta(ctx, after); err != nil {
		return err
	}

	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: after.OrderID,
		UserID:  userID,
		Type:    entity.AuditOrderUpdate,
		Detail:  fmt.Sprintf("%d campo(s) modificados", len(changes)),
		Payload: map[string]any{"cambios": changes},
	})
	if before.Status != after.Status {
		s.auditStatusChange(ctx, after.OrderID, before.Status, after.Status)
	}

	return nil
}

// assignedProvider carga el proveedor asignado al pedido, si lo hay. Un
// proveedor dado de baja se trata como ausencia de asignación.
func (s *Delivery) assignedProvider(ctx context.Context, meta entity.OrderMeta) (*entity.Provider, error) {
	if meta.ProviderID == nil {
		return nil, nil
	}

	provider, err := s.providers.Find(ctx, *meta.ProviderID)
	if errors.Is(err, inerr.ErrProviderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &provider, nil
}

// requiresPaperDelivery deriva el modo de entrega del pedido. El orden de
// precedencia es fijo: atributo explícito de método de entrega, bandera
// persistida envio_papel, heurística sobre el nombre del método de envío y
// atributo de preferencia de entrega. Gana la primera coincidencia.
func (s *Delivery) requiresPaperDelivery(order entity.Order, meta entity.OrderMeta) bool {
	if paper, ok := paperPreference(order.Attribute("método de entrega", "metodo de entrega", "forma de entrega", "delivery method")); ok {
		return paper
	}

	if meta.PaperShipping {
		return true
	}

	if paper, ok := paperPreference(order.ShippingMethod); ok {
		return paper
	}

	if paper, ok := paperPreference(order.Attribute("preferencia de entrega", "entrega")); ok {
		return paper
	}

	return false
}

// paperPreference interpreta un texto libre de método de entrega.
func paperPreference(value string) (paper, ok bool) {
	v := strings.ToLower(value)
	if v == "" {
		return false, false
	}

	for _, marker := range []string{"papel", "paper", "postal", "mensajer", "courier", "correo certificado"} {
		if strings.Contains(v, marker) {
			return true, true
		}
	}
	for _, marker := range []string{"digital", "pdf", "online", "email"} {
		if strings.Contains(v, marker) {
			return false, true
		}
	}

	return false, false
}

// shareLinks compone los enlaces de carpeta para las plantillas. Solo la
// carpeta de cliente se resuelve contra la API justo antes de notificar; el
// resto usa la url guardada del pedido.
func (s *Delivery) shareLinks(ctx context.Context, storage StorageGateway, order entity.Order) map[entity.SubfolderKey]string {
	links := map[entity.SubfolderKey]string{}
	for key, ref := range order.Folders {
		links[key] = ref.URL
	}

	toClient := order.Folders[entity.SubfolderToClient]
	if link := storage.ShareLink(ctx, toClient.ID, toClient.URL); link != "" {
		links[entity.SubfolderToClient] = link
	}

	return links
}

func (s *Delivery) providerName(ctx context.Context) status.ProviderNameResolver {
	return func(id int) string {
		provider, err := s.providers.Find(ctx, id)
		if err != nil {
			return ""
		}

		return provider.Name
	}
}

func (s *Delivery) auditStatusChange(ctx context.Context, orderID int, previous, current entity.OperationalStatus) {
	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: orderID,
		Type:    entity.AuditStatusChange,
		Detail:  fmt.Sprintf("%s → %s", status.Label(previous), status.Label(current)),
		Payload: map[string]string{"anterior": string(previous), "actual": string(current)},
	})
}

func (s *Delivery) auditEmail(ctx context.Context, orderID int, receipt entity.EmailReceipt) {
	s.auditAppend(ctx, entity.AuditEvent{
		OrderID: orderID,
		Type:    entity.AuditEmail,
		Detail:  receipt.Subject,
		Payload: receipt,
	})
}

// auditAppend registra el evento; un fallo del registro no interrumpe el
// flujo, solo se deja constancia en el log.
func (s *Delivery) auditAppend(ctx context.Context, event entity.AuditEvent) {
	if err := s.audit.Append(ctx, event); err != nil {
		s.log.Error("no se pudo registrar el evento de actividad",
			zap.Int("pedido", event.OrderID),
			zap.String("tipo", string(event.Type)),
			zap.Error(err),
		)
	}
}
