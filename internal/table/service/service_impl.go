package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
	"github.com/dineops/dineops/internal/observability/metrics"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/dineops/dineops/pkg/db"
	"github.com/dineops/dineops/pkg/db/option"
	"github.com/dineops/dineops/pkg/repository"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Events  events.Publisher
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	events  events.Publisher
	metrics *metrics.Metrics

	tablerepo   repository.Repository[tabledomain.Table]
	sessionrepo repository.Repository[tabledomain.Session]
}

func NewService(p Params) tabledomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("table.service"),
		genID:   p.GenID,
		events:  p.Events,
		metrics: p.Metrics,

		tablerepo:   repository.ProvideStore[tabledomain.Table](p.DB),
		sessionrepo: repository.ProvideStore[tabledomain.Session](p.DB),
	}
}

func (s *Service) CreateTable(ctx context.Context, req tabledomain.CreateTableRequest) (*tabledomain.Table, error) {
	number := strings.TrimSpace(req.TableNumber)
	if number == "" {
		return nil, tabledomain.ErrInvalidTableNumber
	}
	capacity := req.SeatingCapacity
	if capacity <= 0 {
		capacity = 4
	}
	tableType := req.TableType
	if tableType == "" {
		tableType = tabledomain.TableTypeRegular
	}

	now := time.Now().UTC()
	table := &tabledomain.Table{
		ID:              s.genID.Generate(),
		TableNumber:     number,
		SeatingCapacity: capacity,
		TableType:       tableType,
		LocationArea:    strings.TrimSpace(req.LocationArea),
		Status:          tabledomain.StatusAvailable,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.tablerepo.Create(ctx, table); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, tabledomain.ErrTableNumberTaken
		}
		return nil, err
	}
	return table, nil
}

func (s *Service) GetTable(ctx context.Context, id snowflake.ID) (*tabledomain.Table, error) {
	table, err := s.tablerepo.FindOne(ctx, &tabledomain.Table{ID: id})
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, tabledomain.ErrTableNotFound
	}
	return table, nil
}

func (s *Service) ListTables(ctx context.Context, req tabledomain.ListTablesRequest) ([]tabledomain.Table, error) {
	filter := &tabledomain.Table{}
	if req.Status != nil {
		filter.Status = *req.Status
	}
	items, err := s.tablerepo.Find(ctx, filter, option.WithOrder("table_number"))
	if err != nil {
		return nil, err
	}
	tables := make([]tabledomain.Table, 0, len(items))
	for _, item := range items {
		tables = append(tables, *item)
	}
	return tables, nil
}

// ChangeStatus performs manual side-branch transitions. Occupancy itself
// is owned by session start and bill finalization.
func (s *Service) ChangeStatus(ctx context.Context, id snowflake.ID, to tabledomain.Status, staff string) (*tabledomain.Table, error) {
	switch to {
	case tabledomain.StatusAvailable, tabledomain.StatusReserved, tabledomain.StatusCleaning,
		tabledomain.StatusMaintenance, tabledomain.StatusBilling:
	default:
		return nil, tabledomain.ErrInvalidStatus
	}

	table, err := s.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tabledomain.CanChangeStatusTo(table.Status, to) {
		return nil, tabledomain.ErrInvalidTransition
	}

	// Compare-and-set against the status we just read; a concurrent
	// session start or finalize wins and this change is rejected.
	res := s.db.WithContext(ctx).
		Model(&tabledomain.Table{}).
		Where("id = ? AND status = ?", id, table.Status).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, tabledomain.ErrTableNotAvailable
	}

	s.events.Publish(events.TypeTableChanged, map[string]any{
		"table_id":     id.String(),
		"table_number": table.TableNumber,
		"status":       string(to),
		"staff":        staff,
	})
	return s.GetTable(ctx, id)
}

func (s *Service) StartSession(ctx context.Context, req tabledomain.StartSessionRequest) (*tabledomain.Session, error) {
	if req.PartySize <= 0 {
		return nil, tabledomain.ErrInvalidPartySize
	}

	var session *tabledomain.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := StartSessionTx(ctx, tx, s.genID, req.TableID, req.PartySize, req.Staff)
		if err != nil {
			return err
		}
		session = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsStarted.Inc()
	s.events.Publish(events.TypeSessionStarted, map[string]any{
		"session_id": session.ID.String(),
		"code":       session.Code,
		"table_id":   session.TableID.String(),
		"party_size": session.PartySize,
		"staff":      session.OpenedBy,
	})
	s.log.Info("session started",
		zap.String("session", session.Code),
		zap.String("table_id", session.TableID.String()),
	)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id snowflake.ID) (*tabledomain.Session, error) {
	session, err := s.sessionrepo.FindOne(ctx, &tabledomain.Session{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, tabledomain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) ActiveSession(ctx context.Context, tableID snowflake.ID) (*tabledomain.Session, error) {
	session, err := s.sessionrepo.FindOne(ctx, &tabledomain.Session{
		TableID: tableID,
		Status:  tabledomain.SessionActive,
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, tabledomain.ErrSessionNotFound
	}
	return session, nil
}

// CancelSession rolls an active session back to an available table
// without producing a bill. Permitted only while no order has progressed
// past confirmed.
func (s *Service) CancelSession(ctx context.Context, id snowflake.ID, reason, staff string) error {
	var tableID snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessionrepo.WithTrx(tx).FindOne(ctx, &tabledomain.Session{ID: id})
		if err != nil {
			return err
		}
		if session == nil {
			return tabledomain.ErrSessionNotFound
		}
		if session.Status != tabledomain.SessionActive {
			return tabledomain.ErrSessionNotActive
		}

		var progressed int64
		err = tx.Model(&orderdomain.Order{}).
			Where("session_id = ? AND status IN ?", id, []orderdomain.Status{
				orderdomain.StatusPreparing,
				orderdomain.StatusReady,
				orderdomain.StatusServed,
				orderdomain.StatusCompleted,
			}).
			Count(&progressed).Error
		if err != nil {
			return err
		}
		if progressed > 0 {
			return tabledomain.ErrSessionHasProgress
		}

		now := time.Now().UTC()
		res := tx.Model(&tabledomain.Session{}).
			Where("id = ? AND status = ?", id, tabledomain.SessionActive).
			Updates(map[string]any{
				"status":       tabledomain.SessionCancelled,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tabledomain.ErrSessionNotActive
		}

		if err := tx.Model(&orderdomain.Order{}).
			Where("session_id = ? AND status NOT IN ?", id, []orderdomain.Status{
				orderdomain.StatusCancelled,
				orderdomain.StatusCompleted,
			}).
			Updates(map[string]any{
				"status":       orderdomain.StatusCancelled,
				"cancelled_at": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&orderdomain.Line{}).
			Where("order_id IN (?)",
				tx.Session(&gorm.Session{NewDB: true}).
					Model(&orderdomain.Order{}).
					Select("id").
					Where("session_id = ?", id),
			).
			Where("status <> ?", orderdomain.LineCancelled).
			Update("status", orderdomain.LineCancelled).Error; err != nil {
			return err
		}

		tableID = session.TableID
		return tx.Model(&tabledomain.Table{}).
			Where("id = ?", session.TableID).
			Updates(map[string]any{
				"status":             tabledomain.StatusAvailable,
				"current_session_id": nil,
				"updated_at":         now,
			}).Error
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.TypeSessionCancelled, map[string]any{
		"session_id": id.String(),
		"table_id":   tableID.String(),
		"reason":     reason,
		"staff":      staff,
	})
	s.log.Info("session cancelled",
		zap.String("session_id", id.String()),
		zap.String("reason", reason),
	)
	return nil
}

// StartSessionTx occupies a table and opens its session inside the
// caller's transaction. The status compare-and-set serializes concurrent
// starts per table: the loser observes zero affected rows and fails with
// ErrTableNotAvailable instead of opening a second session.
func StartSessionTx(ctx context.Context, tx *gorm.DB, genID *snowflake.Node, tableID snowflake.ID, partySize int, staff string) (*tabledomain.Session, error) {
	var table tabledomain.Table
	if err := tx.WithContext(ctx).Where("id = ?", tableID).First(&table).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, tabledomain.ErrTableNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	session := &tabledomain.Session{
		ID:        genID.Generate(),
		Code:      NewSessionCode(table.TableNumber, now),
		TableID:   tableID,
		Status:    tabledomain.SessionActive,
		PartySize: partySize,
		OpenedBy:  staff,
		CreatedAt: now,
	}

	res := tx.WithContext(ctx).
		Model(&tabledomain.Table{}).
		Where("id = ? AND status = ?", tableID, tabledomain.StatusAvailable).
		Updates(map[string]any{
			"status":             tabledomain.StatusOccupied,
			"current_session_id": session.ID,
			"last_occupied_at":   now,
			"updated_at":         now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, tabledomain.ErrTableNotAvailable
	}

	if err := tx.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// NewSessionCode builds a human-scannable session code like
// T5-260828-9F3A1C.
func NewSessionCode(tableNumber string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "T" + tableNumber + "-" + now.Format("060102") + "-" + suffix
}
