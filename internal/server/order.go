package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	TableID             snowflake.ID              `json:"table_id,string"`
	Lines               []orderdomain.LineRequest `json:"lines"`
	Priority            orderdomain.Priority      `json:"priority"`
	Source              orderdomain.Source        `json:"source"`
	CustomerName        string                    `json:"customer_name"`
	CustomerCount       int                       `json:"customer_count"`
	SpecialInstructions string                    `json:"special_instructions"`
	DiscountPercentage  float64                   `json:"discount_percentage"`
	Draft               bool                      `json:"draft"`
}

func (s *Server) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.PlaceOrder(c.Request.Context(), orderdomain.PlaceOrderRequest{
		TableID:             req.TableID,
		Lines:               req.Lines,
		Staff:               staffID(c),
		Priority:            req.Priority,
		Source:              req.Source,
		CustomerName:        req.CustomerName,
		CustomerCount:       req.CustomerCount,
		SpecialInstructions: req.SpecialInstructions,
		DiscountPercentage:  req.DiscountPercentage,
		Draft:               req.Draft,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.orderSvc.GetOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var req orderdomain.ListOrdersRequest
	if session := strings.TrimSpace(c.Query("session_id")); session != "" {
		id, err := snowflake.ParseString(session)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.SessionID = &id
	}
	if table := strings.TrimSpace(c.Query("table_id")); table != "" {
		id, err := snowflake.ParseString(table)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.TableID = &id
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		st := orderdomain.Status(status)
		req.Status = &st
	}

	resp, err := s.orderSvc.ListOrders(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddOrderLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req orderdomain.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.AddLine(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveOrderLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(c, "lineID")
	if !ok {
		return
	}

	resp, err := s.orderSvc.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.orderSvc.ConfirmOrder(c.Request.Context(), id, staffID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TransitionOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status orderdomain.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.TransitionOrder(c.Request.Context(), id, req.Status, staffID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
