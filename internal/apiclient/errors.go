package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnreachable сервер недоступен (сеть, DNS, отказ соединения)
	ErrUnreachable = errors.New("cannot reach server")
	// ErrSessionExpired обновление токена не удалось, сессия сброшена
	ErrSessionExpired = errors.New("session expired")
)

// APIError сервер отклонил запрос; Detail передаётся пользователю как есть
type APIError struct {
	Status int
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Detail)
}

// IsStatus сообщает, является ли err ответом сервера с данным кодом
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// newAPIError берёт "detail" из тела, иначе само тело, иначе текст статуса
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}
	var payload struct {
		Detail *string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		e.Detail = *payload.Detail
		return e
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		e.Detail = s
		return e
	}
	e.Detail = http.StatusText(status)
	return e
}
