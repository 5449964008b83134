package entity

// SubfolderKey nombra una de las subcarpetas remotas de la estructura de
// carpetas del pedido.
type SubfolderKey string

const (
	SubfolderSource      SubfolderKey = "01-Source"
	SubfolderWork        SubfolderKey = "02-Work"
	SubfolderTranslation SubfolderKey = "03-Translation"
	SubfolderToClient    SubfolderKey = "04-ToClient"
)

// FolderRef identifica una carpeta remota por id y/o url. Una referencia
// vacía significa que la carpeta no está disponible para el pedido, no es un
// error en sí misma.
type FolderRef struct {
	ID  string
	URL string
}

func (f FolderRef) Empty() bool {
	return f.ID == "" && f.URL == ""
}

// DriveFile es el resultado de una subida al almacenamiento remoto.
type DriveFile struct {
	ID          string
	WebViewLink string
}
