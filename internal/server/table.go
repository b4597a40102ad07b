package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, param string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(param)))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) CreateTable(c *gin.Context) {
	var req tabledomain.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.tableSvc.CreateTable(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.tableSvc.GetTable(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTables(c *gin.Context) {
	var req tabledomain.ListTablesRequest
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		st := tabledomain.Status(status)
		req.Status = &st
	}

	resp, err := s.tableSvc.ListTables(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChangeTableStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status tabledomain.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.tableSvc.ChangeStatus(c.Request.Context(), id, req.Status, staffID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) StartSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PartySize int `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.tableSvc.StartSession(c.Request.Context(), tabledomain.StartSessionRequest{
		TableID:   id,
		PartySize: req.PartySize,
		Staff:     staffID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.tableSvc.GetSession(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := s.tableSvc.CancelSession(c.Request.Context(), id, strings.TrimSpace(req.Reason), staffID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cancelled": true}})
}
