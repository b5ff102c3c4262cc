package pokeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRequest — запрос к PokeAPI завершился ошибкой.
var ErrRequest = errors.New("pokeapi request failed")

// StatusError — ответ PokeAPI с кодом >= 400.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error реализует интерфейс error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s: HTTP %d: %s", ErrRequest, e.URL, e.StatusCode, e.Body)
}

// Unwrap возвращает базовую ошибку.
func (e *StatusError) Unwrap() error {
	return ErrRequest
}

// Retryable — стоит ли повторить запрос.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
