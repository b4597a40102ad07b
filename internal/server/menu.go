package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateCategory(c *gin.Context) {
	var req menudomain.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.menuSvc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCategories(c *gin.Context) {
	resp, err := s.menuSvc.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateMenuItem(c *gin.Context) {
	var req menudomain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.menuSvc.CreateItem(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req menudomain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.menuSvc.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := s.menuSvc.GetItem(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMenuItems(c *gin.Context) {
	var req menudomain.ListItemsRequest
	if category := strings.TrimSpace(c.Query("category_id")); category != "" {
		id, err := snowflake.ParseString(category)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.CategoryID = &id
	}
	if availability := strings.TrimSpace(c.Query("availability")); availability != "" {
		av := menudomain.Availability(availability)
		req.Availability = &av
	}
	req.OnlyOrderable = c.Query("orderable") == "true"
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Limit = n
	}

	resp, err := s.menuSvc.ListItems(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
