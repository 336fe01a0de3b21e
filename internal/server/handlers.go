package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"madhughor-backend/internal/domain"
	"madhughor-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSubmitOrder(c *gin.Context) {
	var req usecase.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed body falls into the same bucket as any other
		// unexpected failure, matching the endpoint contract.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
		return
	}
	number, err := s.intake.Submit(&req, clientIP(c.Request))
	if err != nil {
		var invalid usecase.ErrInvalidField
		var limited usecase.ErrRateLimited
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
		case errors.As(err, &limited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": limited.Error()})
		default:
			s.log.WithError(err).Error("order submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_number": number})
}

type trackEventReq struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleTrackEvent(c *gin.Context) {
	var req trackEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	raw := req.Payload
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	switch req.Action {
	case "track":
		var p usecase.TrackPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if err := s.events.Track(&p, clientIP(c.Request)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})

	case "abandoned_cart_save":
		var p usecase.CartSavePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		id, err := s.carts.Save(&p)
		if err != nil {
			s.log.WithError(err).Warn("abandoned cart save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})

	case "abandoned_cart_convert":
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		_ = s.carts.Convert(p.ID)
		c.JSON(http.StatusOK, gin.H{"ok": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
	}
}

func (s *Server) handleDistricts(c *gin.Context) {
	districts, err := s.admin.ActiveDistricts()
	if err != nil {
		s.log.WithError(err).Error("district list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": districts})
}

type loginReq struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}
	token, user, err := s.auth.Login(req.Code)
	if err != nil {
		var forbidden usecase.ErrForbidden
		if errors.As(err, &forbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) handleListOrders(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	orders, total := s.admin.ListOrders(page, pageSize)
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	o, err := s.admin.UpdateStatus(c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type updatePaymentReq struct {
	PaymentMethod string `json:"payment_method" binding:"required,max=50"`
}

func (s *Server) handleUpdatePayment(c *gin.Context) {
	var req updatePaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
		return
	}
	if err := s.admin.CorrectPaymentMethod(c.Param("id"), req.PaymentMethod); err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListCarts(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	carts, total, err := s.admin.UncompletedCarts(page, pageSize)
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"carts": carts, "total": total})
}

type contactCartReq struct {
	Notes string `json:"notes" binding:"max=2000"`
}

func (s *Server) handleContactCart(c *gin.Context) {
	var req contactCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notes"})
		return
	}
	if err := s.admin.MarkContacted(c.Param("id"), req.Notes); err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.admin.Stats()
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetSetting(c *gin.Context) {
	v, err := s.admin.GetSetting(c.Param("key"))
	if err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": v})
}

type putSettingReq struct {
	Value string `json:"value" binding:"required"`
}

func (s *Server) handlePutSetting(c *gin.Context) {
	var req putSettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
		return
	}
	if err := s.admin.PutSetting(c.Param("key"), req.Value); err != nil {
		s.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) adminError(c *gin.Context, err error) {
	var notFound usecase.ErrNotFound
	var badRequest usecase.ErrBadRequest
	var forbidden usecase.ErrForbidden
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &badRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": badRequest.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
	default:
		s.log.WithError(err).Error("admin request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return d
	}
	return n
}
