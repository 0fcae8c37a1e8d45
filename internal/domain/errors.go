package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrRetryExhausted    = errors.New("reintentos agotados: el documento requiere intervención manual")
	ErrTransientSync     = errors.New("fallo transitorio de comunicación con el SRI")
)
