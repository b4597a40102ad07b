package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	kitchendomain "github.com/dineops/dineops/internal/kitchen/domain"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts errors attached to the gin context
// into the JSON error envelope. Handlers abort with AbortWithError and
// never write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "forbidden"}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case isStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_state", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, menudomain.ErrInvalidName),
		errors.Is(err, menudomain.ErrInvalidPrice),
		errors.Is(err, menudomain.ErrInvalidCategory),
		errors.Is(err, tabledomain.ErrInvalidTableNumber),
		errors.Is(err, tabledomain.ErrInvalidCapacity),
		errors.Is(err, tabledomain.ErrInvalidStatus),
		errors.Is(err, tabledomain.ErrInvalidPartySize),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidDiscount),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, billingdomain.ErrInvalidPayment):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, menudomain.ErrNotFound),
		errors.Is(err, tabledomain.ErrTableNotFound),
		errors.Is(err, tabledomain.ErrSessionNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrLineNotFound),
		errors.Is(err, kitchendomain.ErrLineNotFound),
		errors.Is(err, billingdomain.ErrBillNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// Conflicts are races another actor won: the table was taken, the bill
// was already cut. Retrying after a fresh read is the client's move.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, tabledomain.ErrTableNotAvailable),
		errors.Is(err, tabledomain.ErrTableNumberTaken),
		errors.Is(err, tabledomain.ErrSessionHasProgress),
		errors.Is(err, billingdomain.ErrAlreadyBilled),
		errors.Is(err, billingdomain.ErrBillPaid):
		return true
	default:
		return false
	}
}

func isStateError(err error) bool {
	switch {
	case errors.Is(err, tabledomain.ErrInvalidTransition),
		errors.Is(err, tabledomain.ErrSessionNotActive),
		errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, orderdomain.ErrOrderNotEditable),
		errors.Is(err, orderdomain.ErrLineNotRetractable),
		errors.Is(err, orderdomain.ErrAggregatedStatus),
		errors.Is(err, kitchendomain.ErrInvalidLineMove),
		errors.Is(err, menudomain.ErrItemUnavailable),
		errors.Is(err, billingdomain.ErrEmptyBill),
		errors.Is(err, billingdomain.ErrOverpayment):
		return true
	default:
		return false
	}
}
