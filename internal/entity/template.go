package entity

// EmailTemplate es una plantilla de correo configurable, asociada
// opcionalmente a un estado operacional.
type EmailTemplate struct {
	ID         int
	Name       string
	Subject    string
	Recipients string
	BodyHTML   string
	Active     bool
	Status     OperationalStatus
}
