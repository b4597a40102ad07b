package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrTableNotFound      = errors.New("table_not_found")
	ErrTableNotAvailable  = errors.New("table_not_available")
	ErrTableNumberTaken   = errors.New("table_number_taken")
	ErrInvalidTableNumber = errors.New("invalid_table_number")
	ErrInvalidCapacity    = errors.New("invalid_capacity")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidTransition  = errors.New("invalid_table_transition")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionNotActive   = errors.New("session_not_active")
	ErrSessionHasProgress = errors.New("session_has_progressed_orders")
	ErrInvalidPartySize   = errors.New("invalid_party_size")
)

type CreateTableRequest struct {
	TableNumber     string    `json:"table_number"`
	SeatingCapacity int       `json:"seating_capacity"`
	TableType       TableType `json:"table_type"`
	LocationArea    string    `json:"location_area"`
}

type StartSessionRequest struct {
	TableID   snowflake.ID
	PartySize int
	Staff     string
}

type ListTablesRequest struct {
	Status *Status
}

type Service interface {
	CreateTable(ctx context.Context, req CreateTableRequest) (*Table, error)
	GetTable(ctx context.Context, id snowflake.ID) (*Table, error)
	ListTables(ctx context.Context, req ListTablesRequest) ([]Table, error)
	ChangeStatus(ctx context.Context, id snowflake.ID, to Status, staff string) (*Table, error)

	StartSession(ctx context.Context, req StartSessionRequest) (*Session, error)
	GetSession(ctx context.Context, id snowflake.ID) (*Session, error)
	ActiveSession(ctx context.Context, tableID snowflake.ID) (*Session, error)
	CancelSession(ctx context.Context, id snowflake.ID, reason, staff string) error
}
