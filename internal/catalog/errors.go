package catalog

import "errors"

var (
	ErrNotFound          = errors.New("ressource introuvable")
	ErrImagesUnavailable = errors.New("stockage d'images non configuré")
)

// InputError signale une donnée refusée (400) avec un message affichable.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }
