package entity

import "io"

// FileUpload es un archivo recibido en el formulario de entrega, pendiente de
// subir al almacenamiento remoto.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}
