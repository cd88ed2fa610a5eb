package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("no encontrado")
	ErrForbidden = errors.New("operación no permitida para el rol")
	// ErrConflict indica que otro escritor cambió la fila entre la lectura y la escritura.
	ErrConflict = errors.New("el registro cambió, recargá y reintentá")
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// DependencyError se devuelve cuando un borrado es rechazado porque otras filas
// todavía referencian a la entidad.
type DependencyError struct {
	Entity   string
	Relation string
	Count    int64
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("no se puede eliminar %s: está referenciado por %d %s", e.Entity, e.Count, relationLabels[e.Relation])
}

var relationLabels = map[string]string{
	RelBikes:      "bicicleta(s)",
	RelWorkOrders: "orden(es) de trabajo",
	RelOrderLines: "línea(s) de orden",
	RelRecipes:    "receta(s) de servicio",
}

type TransitionError struct {
	From ProcessStatus
	To   ProcessStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición inválida: %s -> %s", e.From, e.To)
}

type UnresolvedRecipeError struct {
	ServiceID uuid.UUID
	ItemIDs   []uuid.UUID
}

func (e *UnresolvedRecipeError) Error() string {
	ids := make([]string, 0, len(e.ItemIDs))
	for _, id := range e.ItemIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("la receta del servicio %s referencia productos inexistentes: %s", e.ServiceID, strings.Join(ids, ", "))
}
