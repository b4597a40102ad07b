package server

import (
	"io"
	"net/http"

	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) PreviewBill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.billingSvc.PreviewBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FinalizeBill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		DiscountPercentage float64 `json:"discount_percentage"`
		Interstate         bool    `json:"interstate"`
	}
	// Empty body finalizes with no discount, intrastate.
	_ = c.ShouldBindJSON(&req)
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.billingSvc.FinalizeBill(c.Request.Context(), billingdomain.FinalizeBillRequest{
		SessionID:          id,
		DiscountPercentage: req.DiscountPercentage,
		Interstate:         req.Interstate,
		Staff:              staffID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetBill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.billingSvc.GetBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req billingdomain.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Staff = staffID(c)

	resp, err := s.billingSvc.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadReceipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bill, err := s.billingSvc.GetBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := s.receipts.Render(c.Request.Context(), bill)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+bill.ReceiptNumber+`.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}
