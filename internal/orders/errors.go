package orders

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("commande introuvable")
	ErrInvalidTransition = errors.New("changement de statut non autorisé")
	ErrInProgress        = errors.New("une commande avec cette clé est déjà en cours de création")
)

// ErrKeyReused : la clé d'idempotence a déjà servi pour une commande différente (422).
var ErrKeyReused = &KeyReusedError{}

type KeyReusedError struct{}

func (*KeyReusedError) Error() string {
	return "clé d'idempotence déjà utilisée pour une autre commande"
}
func (*KeyReusedError) PublicMessage() string {
	return "Cette clé de commande a déjà servi pour une commande différente"
}
func (*KeyReusedError) HTTPStatus() int { return http.StatusUnprocessableEntity }

// RequestError signale une requête de création incohérente (400).
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string         { return e.Message }
func (e *RequestError) PublicMessage() string { return e.Message }
func (e *RequestError) HTTPStatus() int       { return http.StatusBadRequest }

// UpstreamError est retourné par Client quand le service de commandes répond hors 2xx.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string         { return e.Message }
func (e *UpstreamError) PublicMessage() string { return e.Message }

func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}
