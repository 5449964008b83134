package migrations

import (
	"database/sql"

	"github.com/lopezator/migrator"
)

func Up(db *sql.DB) error {
	m, err := migrator.New(
		migrator.Migrations(
			&migrator.MigrationNoTx{
				Name: "Create orders snapshot table",
				Func: createOrdersTable,
			},
			&migrator.MigrationNoTx{
				Name: "Create order_meta table",
				Func: createOrderMetaTable,
			},
			&migrator.MigrationNoTx{
				Name: "Create providers table",
				Func: createProvidersTable,
			},
			&migrator.MigrationNoTx{
				Name: "Create email_templates table",
				Func: createEmailTemplatesTable,
			},
			&migrator.MigrationNoTx{
				Name: "Create upload_tokens table",
				Func: createUploadTokensTable,
			},
			&migrator.MigrationNoTx{
				Name: "Create audit_log table",
				Func: createAuditLogTable,
			},
		),
	)
	if err != nil {
		return err
	}

	return m.Migrate(db)
}

// createOrdersTable crea la instantánea local del pedido comercial. La
// alimenta el integrador de la tienda; este servicio solo la lee.
func createOrdersTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE orders
(
    id               integer PRIMARY KEY,
    customer_name    varchar(190) NOT NULL DEFAULT '',
    customer_email   varchar(190) NOT NULL DEFAULT '',
    billing_address  text         NOT NULL DEFAULT '',
    shipping_address text         NOT NULL DEFAULT '',
    shipping_method  varchar(190) NOT NULL DEFAULT '',
    customer_note    text         NOT NULL DEFAULT '',
    total            numeric(10, 2) NOT NULL DEFAULT 0,
    items            jsonb,
    drive_folders    jsonb,
    synced_at        timestamptz  NOT NULL DEFAULT now()
)
	`)

	return err
}

func createOrderMetaTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE order_meta
(
    id                     integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    order_id               integer      NOT NULL UNIQUE,
    proveedor_id           integer,
    comentario_interno     text         NOT NULL DEFAULT '',
    comentario_linguistico text         NOT NULL DEFAULT '',
    referencia             varchar(190) NOT NULL DEFAULT '',
    origen_pedido          varchar(20)  NOT NULL DEFAULT 'woocommerce',
    envio_papel            boolean      NOT NULL DEFAULT false,
    fecha_prevista_entrega date,
    hora_prevista_entrega  time,
    fecha_real_entrega_pdf timestamptz,
    idioma_origen          varchar(50)  NOT NULL DEFAULT '',
    idioma_destino         varchar(50)  NOT NULL DEFAULT '',
    num_paginas            integer,
    tarifa_aplicada        numeric(10, 2),
    estado_operacional     varchar(30)  NOT NULL DEFAULT 'recibido',
    created_at             timestamptz  NOT NULL DEFAULT now(),
    updated_at             timestamptz  NOT NULL DEFAULT now()
)
	`)

	return err
}

func createProvidersTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE providers
(
    id                 integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    nombre_comercial   varchar(190) NOT NULL,
    persona_contacto   varchar(190) NOT NULL DEFAULT '',
    email              varchar(190) NOT NULL DEFAULT '',
    telefono           varchar(50)  NOT NULL DEFAULT '',
    interno            boolean      NOT NULL DEFAULT false,
    direccion_recogida text         NOT NULL DEFAULT '',
    pares_idiomas      jsonb,
    estado             varchar(30)  NOT NULL DEFAULT 'activo',
    created_at         timestamptz  NOT NULL DEFAULT now(),
    updated_at         timestamptz  NOT NULL DEFAULT now()
)
	`)

	return err
}

func createEmailTemplatesTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE email_templates
(
    id                 integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    nombre             varchar(190) NOT NULL,
    asunto             varchar(255) NOT NULL,
    destinatarios      text         NOT NULL DEFAULT '',
    cuerpo_html        text         NOT NULL DEFAULT '',
    activo             boolean      NOT NULL DEFAULT true,
    estado_operacional varchar(30),
    created_at         timestamptz  NOT NULL DEFAULT now(),
    updated_at         timestamptz  NOT NULL DEFAULT now()
)
	`)

	return err
}

func createUploadTokensTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE upload_tokens
(
    id         integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    token      varchar(64) NOT NULL UNIQUE,
    order_id   integer     NOT NULL,
    used       boolean     NOT NULL DEFAULT false,
    used_at    timestamptz,
    files      jsonb,
    created_at timestamptz NOT NULL DEFAULT now()
)
	`)

	return err
}

func createAuditLogTable(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE audit_log
(
    id         integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    order_id   integer,
    user_id    integer,
    tipo       varchar(50)  NOT NULL,
    detalle    varchar(255) NOT NULL DEFAULT '',
    payload    jsonb,
    created_at timestamptz  NOT NULL DEFAULT now()
)
	`)

	return err
}
