package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
)

// AddonSelection is one requested addon line, by catalog id.
type AddonSelection struct {
	AddonID  uuid.UUID
	Quantity int
}

// AddonLine is a priced addon selection. Subtotal is price times quantity,
// snapshotted from the catalog at quote time.
type AddonLine struct {
	AddonID  uuid.UUID
	Quantity int
	Subtotal decimal.Decimal
}

// Quote is the server-side total for an order. Only this value is persisted;
// client-supplied totals are never trusted.
type Quote struct {
	ContainerAmount decimal.Decimal
	AddonLines      []AddonLine
	AddonTotal      decimal.Decimal
	Total           decimal.Decimal
}

// ContainerAmount prices the container portion of an order. Purchases pay the
// flat catalog price. Rentals pay price per day times the day count rounded
// up, with no one-day floor: a same-day range prices to zero.
func ContainerAmount(price decimal.Decimal, typ enums.OrderType, start, end *time.Time) (decimal.Decimal, error) {
	switch typ {
	case enums.OrderTypeBuy:
		return price, nil
	case enums.OrderTypeRent:
		if start == nil || end == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "rental orders require start and end dates")
		}
		if end.Before(*start) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "end date must not be before start date")
		}
		days := rentalDays(*start, *end)
		return price.Mul(decimal.NewFromInt(days)), nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order type %q", typ))
	}
}

// PriceAddons resolves each selection against the available catalog subset and
// snapshots a subtotal per line. Any unknown addon or non-positive quantity
// aborts the whole quote; input order is preserved.
func PriceAddons(selections []AddonSelection, catalog []models.Addon) ([]AddonLine, decimal.Decimal, error) {
	if len(selections) == 0 {
		return nil, decimal.Zero, nil
	}

	byID := make(map[uuid.UUID]models.Addon, len(catalog))
	for _, addon := range catalog {
		if addon.IsAvailable {
			byID[addon.ID] = addon
		}
	}

	lines := make([]AddonLine, 0, len(selections))
	total := decimal.Zero
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("addon %s quantity must be positive", sel.AddonID))
		}
		addon, ok := byID[sel.AddonID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("addon %s not found or unavailable", sel.AddonID))
		}
		subtotal := addon.Price.Mul(decimal.NewFromInt(int64(sel.Quantity)))
		lines = append(lines, AddonLine{
			AddonID:  sel.AddonID,
			Quantity: sel.Quantity,
			Subtotal: subtotal,
		})
		total = total.Add(subtotal)
	}
	return lines, total, nil
}

// BuildQuote combines the container amount with the priced addon lines.
func BuildQuote(container models.Container, typ enums.OrderType, start, end *time.Time, selections []AddonSelection, catalog []models.Addon) (*Quote, error) {
	amount, err := ContainerAmount(container.Price, typ, start, end)
	if err != nil {
		return nil, err
	}
	lines, addonTotal, err := PriceAddons(selections, catalog)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ContainerAmount: amount,
		AddonLines:      lines,
		AddonTotal:      addonTotal,
		Total:           amount.Add(addonTotal),
	}, nil
}

func rentalDays(start, end time.Time) int64 {
	hours := end.Sub(start).Hours()
	return int64(math.Ceil(hours / 24))
}
