package checkout

import (
	"strings"

	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Shipping zones for deliveries within Tunisia
const (
	ZoneGrandTunis = "grand-tunis"
	ZoneNord       = "nord"
	ZoneCentre     = "centre"
	ZoneSud        = "sud"
)

// ZoneTable maps a shipping zone to its delivery price
type ZoneTable map[string]decimal.Decimal

// DefaultZoneTable returns the standard zone pricing
func DefaultZoneTable() ZoneTable {
	return ZoneTable{
		ZoneGrandTunis: decimal.NewFromInt(7),
		ZoneNord:       decimal.NewFromInt(9),
		ZoneCentre:     decimal.NewFromInt(10),
		ZoneSud:        decimal.NewFromInt(12),
	}
}

// zoneETA returns the estimated delivery window in days for a zone
func zoneETA(zone string) (minDays, maxDays int) {
	switch zone {
	case ZoneGrandTunis:
		return 1, 2
	case ZoneNord:
		return 2, 3
	case ZoneCentre:
		return 2, 4
	default:
		return 3, 5
	}
}

// ShippingQuote is the result of a shipping computation
type ShippingQuote struct {
	Cost       valueobject.Money `json:"cost"`
	Zone       string            `json:"zone"`
	IsFree     bool              `json:"is_free"`
	ETAMinDays int               `json:"eta_min_days"`
	ETAMaxDays int               `json:"eta_max_days"`
}

// ShippingRequest carries the inputs of a shipping computation
type ShippingRequest struct {
	Zone            string
	CarrierFlatRate *decimal.Decimal // fallback when no zone is provided
	Subtotal        valueobject.Money
	FreeThreshold   valueobject.Money
}

// ComputeShipping computes the delivery cost for a cart. Zone lookup wins
// over the carrier flat rate when both are provided; free-over-threshold
// is applied last.
func ComputeShipping(table ZoneTable, req ShippingRequest) (ShippingQuote, error) {
	zone := strings.ToLower(strings.TrimSpace(req.Zone))
	currency := req.Subtotal.Currency()

	var cost decimal.Decimal
	switch {
	case zone != "":
		price, ok := table[zone]
		if !ok {
			return ShippingQuote{}, shared.NewDomainError("UNKNOWN_ZONE", "Zone de livraison inconnue: "+zone)
		}
		cost = price
	case req.CarrierFlatRate != nil:
		cost = *req.CarrierFlatRate
	default:
		return ShippingQuote{}, shared.NewDomainError("INVALID_INPUT", "Zone ou transporteur requis")
	}

	quote := ShippingQuote{Zone: zone}
	quote.ETAMinDays, quote.ETAMaxDays = zoneETA(zone)

	if !req.FreeThreshold.IsZero() {
		free, err := req.Subtotal.GreaterThanOrEqual(req.FreeThreshold)
		if err != nil {
			return ShippingQuote{}, err
		}
		if free {
			quote.Cost = valueobject.Zero(currency)
			quote.IsFree = true
			return quote, nil
		}
	}

	money, err := valueobject.NewMoney(cost, currency)
	if err != nil {
		return ShippingQuote{}, err
	}
	quote.Cost = money
	return quote, nil
}
