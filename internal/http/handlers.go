package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inventaris/internal/domain"
	"inventaris/internal/repository"
)

// crudService сервис справочника, общий для поставщиков, категорий, покупателей и товаров
type crudService[T any] interface {
	Create(ctx context.Context, v T) (*T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, id int64, v T) (*T, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.Filter) ([]T, int, error)
}

type crudHandler[T any] struct {
	svc      crudService[T]
	pageSize int
}

func mountCRUD[T any](g *gin.RouterGroup, path string, h crudHandler[T]) {
	g.GET(path, h.list)
	g.POST(path, h.create)
	g.GET(path+":id/", h.get)
	g.PUT(path+":id/", h.update)
	g.DELETE(path+":id/", h.delete)
}

// @Summary List records (paginated)
// @Produce json
// @Param page query int false "Page number"
// @Param search query string false "Search term"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /{resource}/ [get]
func (h crudHandler[T]) list(c *gin.Context) {
	f, page, err := pageFilter(c, h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	rows, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := paginated(c, rows, total, page, h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Create record
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /{resource}/ [post]
func (h crudHandler[T]) create(c *gin.Context) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	v, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary Get record by id
// @Produce json
// @Param id path int true "ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /{resource}/{id}/ [get]
func (h crudHandler[T]) get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	v, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Update record
// @Accept json
// @Produce json
// @Param id path int true "ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /{resource}/{id}/ [put]
func (h crudHandler[T]) update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	v, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Delete record
// @Param id path int true "ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /{resource}/{id}/ [delete]
func (h crudHandler[T]) delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transaction handlers

// @Summary List transactions, newest first
// @Tags transaksi
// @Produce json
// @Param page query int false "Page number"
// @Param search query string false "Number or note contains"
// @Success 200 {object} map[string]any
// @Router /transaksi/ [get]
func (s *Server) listTransactions(c *gin.Context) {
	f, page, err := pageFilter(c, s.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	rows, total, err := s.services.Transactions.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := paginated(c, rows, total, page, s.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Create transaction (prices and stock handled server-side)
// @Tags transaksi
// @Accept json
// @Produce json
// @Param input body domain.TransactionRequest true "Transaction"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} map[string]string
// @Router /transaksi/ [post]
func (s *Server) createTransaction(c *gin.Context) {
	var req domain.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	t, err := s.services.Transactions.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	s.metrics.transactionCreated(t)
	c.JSON(http.StatusCreated, t)
}

// @Summary Get transaction by id
// @Tags transaksi
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} map[string]string
// @Router /transaksi/{id}/ [get]
func (s *Server) getTransaction(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	t, err := s.services.Transactions.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Delete transaction and reverse its stock movement
// @Tags transaksi
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transaksi/{id}/ [delete]
func (s *Server) deleteTransaction(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if err := s.services.Transactions.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Auth handlers

// @Summary Obtain access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param input body domain.Credentials true "Credentials"
// @Success 200 {object} domain.TokenPair
// @Failure 401 {object} map[string]string
// @Router /token/ [post]
func (s *Server) issueToken(c *gin.Context) {
	var req domain.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	pair, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary Exchange refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body domain.RefreshRequest true "Refresh token"
// @Success 200 {object} domain.TokenPair
// @Failure 401 {object} map[string]string
// @Router /token/refresh/ [post]
func (s *Server) refreshToken(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	pair, err := s.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param input body domain.Registration true "Registration"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} map[string]string
// @Router /auth/register/ [post]
func (s *Server) register(c *gin.Context) {
	var req domain.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	u, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.Profile{ID: u.ID, Username: u.Username, Email: u.Email})
}

// @Summary Current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 401 {object} map[string]string
// @Router /auth/profile/ [get]
func (s *Server) profile(c *gin.Context) {
	p, err := s.auth.Profile(c.Request.Context(), claimsFrom(c).UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
