package entity

import "time"

// AuditType clasifica los eventos del registro de actividad.
type AuditType string

const (
	AuditEmail              AuditType = "email"
	AuditStatusChange       AuditType = "estado_operacional"
	AuditOrderUpdate        AuditType = "order_update"
	AuditFilesUpload        AuditType = "files_upload"
	AuditInternalCompletion AuditType = "internal_provider_completion"
)

// EmailReceipt resume un correo enviado, para el registro de actividad.
type EmailReceipt struct {
	Recipients []string `json:"destinatarios"`
	Subject    string   `json:"asunto"`
}

// AuditEvent es una entrada del registro de actividad. Solo se crea, nunca se
// modifica ni se borra. UserID a nil significa que el actor es el sistema.
type AuditEvent struct {
	OrderID   int
	UserID    *int
	Type      AuditType
	Detail    string
	Payload   any
	CreatedAt time.Time
}
