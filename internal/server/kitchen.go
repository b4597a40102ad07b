package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	kitchendomain "github.com/dineops/dineops/internal/kitchen/domain"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) KitchenBoard(c *gin.Context) {
	var req kitchendomain.ListBoardRequest
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		st := orderdomain.LineStatus(status)
		req.Status = &st
	}
	if table := strings.TrimSpace(c.Query("table_id")); table != "" {
		id, err := snowflake.ParseString(table)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.TableID = &id
	}
	req.Cook = strings.TrimSpace(c.Query("cook"))

	resp, err := s.kitchenSvc.ListBoard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) StartLinePreparation(c *gin.Context) {
	s.moveLine(c, s.kitchenSvc.StartPreparation)
}

func (s *Server) MarkLineReady(c *gin.Context) {
	s.moveLine(c, s.kitchenSvc.MarkReady)
}

func (s *Server) MarkLineServed(c *gin.Context) {
	s.moveLine(c, s.kitchenSvc.MarkServed)
}

func (s *Server) CancelLine(c *gin.Context) {
	s.moveLine(c, s.kitchenSvc.CancelLine)
}

func (s *Server) moveLine(c *gin.Context, move func(ctx context.Context, lineID snowflake.ID, actor string) (*kitchendomain.Ticket, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := move(c.Request.Context(), id, staffID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
