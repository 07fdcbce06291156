package assignment

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

type stubOrderRepo struct {
	order   *models.Order
	updates map[string]any
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrderRepo) List(ctx context.Context, filters orders.ListFilters, params pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) ListForExport(ctx context.Context, filters orders.ListFilters, maxRows int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, filters orders.DriverListFilters, params pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubOrderRepo) CountByDriver(ctx context.Context, driverIDs []uuid.UUID) (map[uuid.UUID]orders.DriverOrderCounts, error) {
	return nil, nil
}

type stubUserFinder struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fixture struct {
	ownerID uuid.UUID
	owner   *models.User
	driver  *models.User
	order   *models.Order
}

func newFixture() fixture {
	ownerID := uuid.New()
	return fixture{
		ownerID: ownerID,
		owner:   &models.User{ID: ownerID, Role: enums.UserRoleUser},
		driver: &models.User{
			ID:        uuid.New(),
			Role:      enums.UserRoleDriver,
			CreatedBy: &ownerID,
			Country:   "KSA",
			City:      "Riyadh",
		},
		order: &models.Order{
			ID:             uuid.New(),
			ShipmentStatus: enums.ShipmentStatusPending,
			Country:        "KSA",
			City:           "Riyadh",
		},
	}
}

func newService(fx fixture, extra ...*models.User) (Service, *stubOrderRepo) {
	repo := &stubOrderRepo{order: fx.order}
	users := &stubUserFinder{users: map[uuid.UUID]*models.User{
		fx.owner.ID:  fx.owner,
		fx.driver.ID: fx.driver,
	}}
	for _, user := range extra {
		users.users[user.ID] = user
	}
	return NewService(repo, users, stubTxRunner{}, testLogger()), repo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestAssignHappyPathAdvancesPending(t *testing.T) {
	fx := newFixture()
	svc, repo := newService(fx)

	resp, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.DriverID == nil || *resp.DriverID != fx.driver.ID {
		t.Fatal("expected driver stamped on order")
	}
	if resp.ShipmentStatus != enums.ShipmentStatusAssigned {
		t.Fatalf("expected pending to advance to assigned, got %s", resp.ShipmentStatus)
	}
	if repo.updates["shipment_status"] != enums.ShipmentStatusAssigned.String() {
		t.Fatal("expected shipment_status persisted")
	}
}

func TestAssignKeepsLaterStatus(t *testing.T) {
	fx := newFixture()
	fx.order.ShipmentStatus = enums.ShipmentStatusInTransit
	svc, repo := newService(fx)

	resp, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.ShipmentStatus != enums.ShipmentStatusInTransit {
		t.Fatalf("reassignment must not reset status, got %s", resp.ShipmentStatus)
	}
	if _, ok := repo.updates["shipment_status"]; ok {
		t.Fatal("must not rewrite a post-pending shipment status")
	}
}

func TestAssignOrderNotFound(t *testing.T) {
	fx := newFixture()
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   uuid.New(),
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAssignUnknownDriverIsValidation(t *testing.T) {
	fx := newFixture()
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  uuid.New(),
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignRejectsNonDriver(t *testing.T) {
	fx := newFixture()
	fx.driver.Role = enums.UserRoleManager
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignRejectsFinalizedOrder(t *testing.T) {
	fx := newFixture()
	fx.order.ShipmentStatus = enums.ShipmentStatusDelivered
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAssignOwnerCannotReachForeignDriver(t *testing.T) {
	fx := newFixture()
	otherOwner := uuid.New()
	fx.driver.CreatedBy = &otherOwner
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestAssignCityMismatch(t *testing.T) {
	fx := newFixture()
	fx.driver.City = "Dammam"
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignCityMatchIsCaseInsensitive(t *testing.T) {
	fx := newFixture()
	fx.order.City = "RIYADH"
	fx.driver.City = "riyadh"
	svc, _ := newService(fx)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   fx.owner.ID,
		ActorRole: enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("case difference alone must not block assignment: %v", err)
	}
}

func TestAssignManagerSameWorkspace(t *testing.T) {
	fx := newFixture()
	manager := &models.User{ID: uuid.New(), Role: enums.UserRoleManager, CreatedBy: &fx.ownerID}
	svc, _ := newService(fx, manager)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   manager.ID,
		ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestAssignManagerAssignedCountryRule(t *testing.T) {
	fx := newFixture()
	manager := &models.User{
		ID:              uuid.New(),
		Role:            enums.UserRoleManager,
		CreatedBy:       &fx.ownerID,
		AssignedCountry: "UAE",
	}
	svc, _ := newService(fx, manager)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   manager.ID,
		ActorRole: enums.UserRoleManager,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// Same country, different casing, is allowed.
	manager.AssignedCountry = "ksa"
	if _, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   manager.ID,
		ActorRole: enums.UserRoleManager,
	}); err != nil {
		t.Fatalf("expected success with matching country, got %v", err)
	}
}

func TestAssignManagerForeignWorkspace(t *testing.T) {
	fx := newFixture()
	otherWorkspace := uuid.New()
	manager := &models.User{ID: uuid.New(), Role: enums.UserRoleManager, CreatedBy: &otherWorkspace}
	svc, _ := newService(fx, manager)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   manager.ID,
		ActorRole: enums.UserRoleManager,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestAssignRoleWithoutPermission(t *testing.T) {
	fx := newFixture()
	dropshipper := &models.User{ID: uuid.New(), Role: enums.UserRoleDropshipper, CreatedBy: &fx.ownerID}
	svc, _ := newService(fx, dropshipper)

	_, err := svc.Assign(context.Background(), AssignInput{
		OrderID:   fx.order.ID,
		DriverID:  fx.driver.ID,
		ActorID:   dropshipper.ID,
		ActorRole: enums.UserRoleDropshipper,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}
