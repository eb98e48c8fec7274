package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"inventaris/internal/auth"
	"inventaris/internal/domain"
	"inventaris/internal/logging"
	"inventaris/internal/repository"
	"inventaris/internal/service"
)

var errInvalidPage = errors.New("Invalid page.")

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNotEnoughStock),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, errInvalidPage):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail пишет {"detail": ...}; ошибки валидации дополнительно несут карту полей
func fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	body := gin.H{"detail": err.Error()}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body["errors"] = verr.Fields
	case errors.Is(err, repository.ErrNotFound):
		body["detail"] = "Not found."
	case errors.Is(err, repository.ErrDuplicate):
		body["detail"] = "Data dengan nilai unik yang sama sudah ada."
	case status == http.StatusInternalServerError:
		logging.FromCtx(c.Request.Context()).Error("request failed", "err", err)
		body["detail"] = "Terjadi kesalahan pada server."
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badJSON(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
}

// pageFilter читает ?page= и ?search=; страницы нумеруются с 1
func pageFilter(c *gin.Context, size int) (repository.Filter, int, error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return repository.Filter{}, 0, errInvalidPage
		}
		page = n
	}
	return repository.Filter{Search: c.Query("search"), Offset: (page - 1) * size, Limit: size}, page, nil
}

// paginated ответ в формате {count, next, previous, results}
func paginated[T any](c *gin.Context, rows []T, total, page, size int) (domain.Page[T], error) {
	if page > 1 && (page-1)*size >= total {
		return domain.Page[T]{}, errInvalidPage
	}
	out := domain.Page[T]{Count: total, Results: rows}
	if page*size < total {
		next := pageURL(c, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		out.Previous = &prev
	}
	return out, nil
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
