package mailer

import (
	"fmt"

	inerr "github.com/tradutema/delivery/internal/errors"
	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

// Sender es el transporte de correo externo. *mail.Dialer lo satisface.
type Sender interface {
	DialAndSend(messages ...*mail.Message) error
}

// Dispatcher envuelve el transporte de correo e inyecta siempre una copia
// oculta al buzón fijo de operaciones. Solo una señal explícita de éxito del
// transporte cuenta como envío correcto; los fallos se registran pero no se
// reintentan.
type Dispatcher struct {
	sender Sender
	from   string
	bcc    string
	log    *zap.Logger
}

func NewDispatcher(sender Sender, from, bcc string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		from:   from,
		bcc:    bcc,
		log:    log,
	}
}

// Send envía un mensaje HTML a los destinatarios indicados.
func (d *Dispatcher) Send(recipients []string, subject, htmlBody string, headers map[string]string, attachments []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: no recipients", inerr.ErrMailDeliveryFailed)
	}

	m := mail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", recipients...)
	if d.bcc != "" {
		m.SetHeader("Bcc", d.bcc)
	}
	m.SetHeader("Subject", subject)
	for name, value := range headers {
		m.SetHeader(name, value)
	}
	m.SetBody("text/html", htmlBody)
	for _, path := range attachments {
		m.Attach(path)
	}

	if err := d.sender.DialAndSend(m); err != nil {
		d.log.Error("fallo al enviar correo",
			zap.Strings("destinatarios", recipients),
			zap.String("asunto", subject),
			zap.Error(err),
		)

		return fmt.Errorf("%w: %v", inerr.ErrMailDeliveryFailed, err)
	}

	d.log.Info("correo enviado",
		zap.Strings("destinatarios", recipients),
		zap.String("asunto", subject),
	)

	return nil
}
