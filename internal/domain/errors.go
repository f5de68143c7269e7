package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto de versión con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrLockTimeout       = errors.New("no se pudo bloquear el registro a tiempo")
	ErrAlreadyReversed   = errors.New("la transacción ya fue revertida")
)
