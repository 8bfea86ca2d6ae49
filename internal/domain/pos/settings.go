package pos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// Setting keys read from the key/value settings store
const (
	SettingPriceTolerance   = "pos.price_tolerance_percent"
	SettingValidateStock    = "pos.validate_stock"
	SettingWalkInCode       = "pos.walk_in_customer_code"
	SettingValidateCredit   = "pos.validate_credit"
	SettingDefaultCurrency  = "pos.default_currency"
	SettingRejectZeroCost   = "pos.reject_zero_cost"
	SettingAccountCash      = "pos.account.cash"
	SettingAccountAR        = "pos.account.ar"
	SettingAccountRevenue   = "pos.account.revenue"
	SettingAccountTax       = "pos.account.tax_payable"
	SettingAccountCOGS      = "pos.account.cogs"
	SettingAccountInventory = "pos.account.inventory"
)

// SettingsPrefix is the key prefix shared by every sale setting
const SettingsPrefix = "pos."

// Accounts are the GL accounts a sale posts to
type Accounts struct {
	Cash               finance.Account
	AccountsReceivable finance.Account
	Revenue            finance.Account
	TaxPayable         finance.Account
	COGS               finance.Account
	Inventory          finance.Account
}

// Settings are the runtime switches of the sale processor
type Settings struct {
	PriceTolerancePercent decimal.Decimal
	ValidateStock         bool
	WalkInCustomerCode    string
	ValidateCredit        bool
	DefaultCurrency       string
	RejectZeroCost        bool
	Accounts              Accounts
}

// DefaultSettings returns the built-in defaults
func DefaultSettings() Settings {
	return Settings{
		PriceTolerancePercent: decimal.NewFromInt(10),
		ValidateStock:         true,
		WalkInCustomerCode:    "WALK-IN",
		ValidateCredit:        false,
		DefaultCurrency:       "USD",
		RejectZeroCost:        false,
		Accounts: Accounts{
			Cash:               finance.Account{Code: "1000", Name: "Cash"},
			AccountsReceivable: finance.Account{Code: "1200", Name: "Accounts Receivable"},
			Inventory:          finance.Account{Code: "1300", Name: "Inventory"},
			TaxPayable:         finance.Account{Code: "2100", Name: "Sales Tax Payable"},
			Revenue:            finance.Account{Code: "4000", Name: "Sales Revenue"},
			COGS:               finance.Account{Code: "5000", Name: "Cost of Goods Sold"},
		},
	}
}

// Override applies stored values on top of s. Unparsable values keep the
// current setting and are reported so the caller can log them.
func (s Settings) Override(values map[string]string) (Settings, []error) {
	var errs []error
	for key, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		var err error
		switch key {
		case SettingPriceTolerance:
			var tol decimal.Decimal
			tol, err = decimal.NewFromString(value)
			if err == nil && tol.IsNegative() {
				err = fmt.Errorf("must not be negative")
			}
			if err == nil {
				s.PriceTolerancePercent = tol
			}
		case SettingValidateStock:
			s.ValidateStock, err = parseBool(value, s.ValidateStock)
		case SettingValidateCredit:
			s.ValidateCredit, err = parseBool(value, s.ValidateCredit)
		case SettingRejectZeroCost:
			s.RejectZeroCost, err = parseBool(value, s.RejectZeroCost)
		case SettingWalkInCode:
			s.WalkInCustomerCode = value
		case SettingDefaultCurrency:
			s.DefaultCurrency = strings.ToUpper(value)
		case SettingAccountCash:
			s.Accounts.Cash.Code = value
		case SettingAccountAR:
			s.Accounts.AccountsReceivable.Code = value
		case SettingAccountRevenue:
			s.Accounts.Revenue.Code = value
		case SettingAccountTax:
			s.Accounts.TaxPayable.Code = value
		case SettingAccountCOGS:
			s.Accounts.COGS.Code = value
		case SettingAccountInventory:
			s.Accounts.Inventory.Code = value
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %s=%q: %w", key, raw, err))
		}
	}
	return s, errs
}

func parseBool(value string, current bool) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return current, err
	}
	return b, nil
}

// SettingsRepository reads raw settings from the key/value store
type SettingsRepository interface {
	// FindByPrefix returns every key starting with prefix
	FindByPrefix(ctx context.Context, prefix string) (map[string]string, error)

	// Set upserts a single key
	Set(ctx context.Context, key, value string) error
}
