package orders

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/thehassans/sial-backend/pkg/db/models"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
)

// utf8BOM keeps spreadsheet tools from mangling non-ASCII customer and
// city names in the exported file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportHeader = []string{
	"order_id",
	"created_at",
	"updated_at",
	"status",
	"shipment_status",
	"source",
	"customer_name",
	"customer_phone",
	"country",
	"city",
	"area",
	"address",
	"currency",
	"total",
	"item_count",
	"items",
	"driver_name",
	"driver_city",
	"delivered_at",
}

// Export streams the filtered orders as RFC 4180 CSV. The result set is
// capped by the configured export row ceiling.
func (s *service) Export(ctx context.Context, w io.Writer, filters ListFilters) error {
	found, err := s.repo.ListForExport(ctx, filters, s.maxExportRows)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load orders for export")
	}

	drivers, err := s.resolveDrivers(ctx, found)
	if err != nil {
		return err
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write export")
	}
	for _, order := range found {
		if err := cw.Write(exportRow(order, drivers)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write export")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write export")
	}

	s.logg.Info(s.logg.WithField(ctx, "rows", len(found)), "orders.exported")
	return nil
}

func (s *service) resolveDrivers(ctx context.Context, found []models.Order) (map[uuid.UUID]models.User, error) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, order := range found {
		if order.DriverID == nil {
			continue
		}
		if _, ok := seen[*order.DriverID]; ok {
			continue
		}
		seen[*order.DriverID] = struct{}{}
		ids = append(ids, *order.DriverID)
	}
	drivers := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return drivers, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load drivers for export")
	}
	for _, user := range users {
		drivers[user.ID] = user
	}
	return drivers, nil
}

func exportRow(order models.Order, drivers map[uuid.UUID]models.User) []string {
	phone := order.CustomerPhone
	if order.PhoneCountryCode != "" {
		phone = order.PhoneCountryCode + " " + phone
	}

	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fmt.Sprintf("%s x%d", item.Name, item.Qty))
	}

	driverName, driverCity := "", ""
	if order.DriverID != nil {
		if driver, ok := drivers[*order.DriverID]; ok {
			driverName, driverCity = driver.Name, driver.City
		}
	}

	deliveredAt := ""
	if order.DeliveredAt != nil {
		deliveredAt = order.DeliveredAt.UTC().Format("2006-01-02 15:04:05")
	}

	return []string{
		order.ID.String(),
		order.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		order.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		order.Status.String(),
		order.ShipmentStatus.String(),
		order.Source.String(),
		order.CustomerName,
		phone,
		order.Country,
		order.City,
		order.Area,
		order.Address,
		order.Currency,
		order.Total.StringFixed(2),
		strconv.Itoa(len(order.Items)),
		strings.Join(items, "; "),
		driverName,
		driverCity,
		deliveredAt,
	}
}
