// Package pos implements sale ingestion from point-of-sale terminals: one
// call turns a terminal transaction into an invoice, its ledger postings,
// FIFO stock depletion, COGS and the customer receipt.
package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/posgateway/internal/domain/catalog"
	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/partner"
	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/erp/posgateway/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/erp/posgateway/internal/application/pos"

	invoicePrefix = "INV-POS"
	receiptPrefix = "RCP-POS"

	refTypeInvoice = "invoice"
	refTypeReceipt = "receipt"

	// Metric outcomes besides the error codes
	OutcomeCompleted = "completed"
	OutcomeReplayed  = "replayed"
)

// errDuplicateCompletion marks a rollback caused by a racing duplicate that
// committed its completed audit row first.
var errDuplicateCompletion = errors.New("sale already completed by a concurrent request")

// SaleProcessor ingests terminal sales
type SaleProcessor struct {
	repos    ReadRepositories
	scope    TransactionScope
	limiter  RateLimiter
	settings SettingsProvider
	locker   SaleLocker
	archiver PayloadArchiver
	metrics  SaleMetrics
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewSaleProcessor creates a SaleProcessor. Locking defaults to a no-op;
// archiving and metrics are off until set.
func NewSaleProcessor(
	repos ReadRepositories,
	scope TransactionScope,
	limiter RateLimiter,
	settings SettingsProvider,
	logger *zap.Logger,
) *SaleProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleProcessor{
		repos:    repos,
		scope:    scope,
		limiter:  limiter,
		settings: settings,
		locker:   NoOpSaleLocker{},
		logger:   logger.Named("pos"),
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetLocker sets the cross-instance lock taken per transaction id
func (s *SaleProcessor) SetLocker(locker SaleLocker) {
	if locker == nil {
		locker = NoOpSaleLocker{}
	}
	s.locker = locker
}

// SetArchiver sets the payload archive written after each completed sale
func (s *SaleProcessor) SetArchiver(archiver PayloadArchiver) {
	s.archiver = archiver
}

// SetMetrics sets the outcome recorder
func (s *SaleProcessor) SetMetrics(metrics SaleMetrics) {
	s.metrics = metrics
}

// SetClock replaces the time source
func (s *SaleProcessor) SetClock(now func() time.Time) {
	s.now = now
}

// ProcessSale runs one terminal transaction end to end. A non-nil error is
// always a *pos.SaleError.
func (s *SaleProcessor) ProcessSale(ctx context.Context, p *pos.SalePayload) (*pos.SaleResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "pos.ProcessSale", trace.WithAttributes(
		attribute.String("pos.terminal_id", p.RateLimitKey()),
	))
	defer span.End()
	if p != nil {
		span.SetAttributes(attribute.String("pos.transaction_id", p.TransactionID))
	}

	result, saleErr := s.process(ctx, p)

	outcome := OutcomeCompleted
	switch {
	case saleErr != nil:
		outcome = string(saleErr.Code)
		span.SetStatus(codes.Error, string(saleErr.Code))
		if saleErr.Err != nil {
			span.RecordError(saleErr.Err)
		}
	case result.Replayed:
		outcome = OutcomeReplayed
		span.SetAttributes(attribute.Bool("pos.replayed", true))
	default:
		span.SetAttributes(attribute.String("pos.invoice_number", result.InvoiceNumber))
	}
	if s.metrics != nil {
		s.metrics.RecordSale(ctx, outcome, time.Since(start))
	}

	if saleErr != nil {
		return nil, saleErr
	}
	return result, nil
}

func (s *SaleProcessor) process(ctx context.Context, p *pos.SalePayload) (*pos.SaleResult, *pos.SaleError) {
	terminal := p.RateLimitKey()
	log := s.logger.With(zap.String("terminal_id", terminal))
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		log = log.With(zap.String("trace_id", traceID))
	}

	allowed, err := s.limiter.Allow(ctx, terminal)
	if err != nil {
		log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
		allowed = true
	}
	if !allowed {
		log.Warn("Terminal rate limit exceeded")
		return nil, pos.NewRateLimitError(terminal)
	}

	if violations := pos.ValidatePayload(p); len(violations) > 0 {
		log.Info("Rejected malformed sale payload", zap.Int("violations", len(violations)))
		return nil, pos.NewInvalidPayloadError("Invalid sale payload", violations)
	}
	log = log.With(zap.String("transaction_id", p.TransactionID))

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, s.internalError(ctx, log, p, nil, fmt.Errorf("load settings: %w", err))
	}

	release, err := s.locker.Acquire(ctx, p.TransactionID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.internalError(ctx, log, p, nil, fmt.Errorf("acquire sale lock: %w", err))
		}
		// the completed-row unique index still rejects racing duplicates
		log.Warn("Sale lock unavailable, continuing without it", zap.Error(err))
		release = func() {}
	}
	defer release()

	replay, err := s.findCompleted(ctx, p.TransactionID)
	if err != nil {
		return nil, s.internalError(ctx, log, p, nil, err)
	}
	if replay != nil {
		log.Info("Replaying completed sale", zap.String("invoice_number", replay.InvoiceNumber))
		return replay, nil
	}

	totals := pos.ComputeTotals(p.Items, p.AmountPaid)

	products, issues, err := s.validateCatalog(ctx, p, settings)
	if err != nil {
		return nil, s.internalError(ctx, log, p, &totals, err)
	}
	if settings.ValidateStock {
		stockIssues, err := s.validateStock(ctx, p, products)
		if err != nil {
			return nil, s.internalError(ctx, log, p, &totals, err)
		}
		issues = append(issues, stockIssues...)
	}
	bank, bankIssue, err := s.resolveBankAccount(ctx, p)
	if err != nil {
		return nil, s.internalError(ctx, log, p, &totals, err)
	}
	if bankIssue != nil {
		issues = append(issues, *bankIssue)
	}
	if len(issues) > 0 {
		log.Info("Sale failed validation", zap.Int("issues", len(issues)))
		return nil, s.reject(ctx, p, &totals, pos.NewValidationFailedError(issues))
	}

	customer, err := s.resolveCustomer(ctx, p, settings)
	if err != nil {
		return nil, s.internalError(ctx, log, p, &totals, err)
	}

	if saleErr, err := s.checkCredit(ctx, customer, settings, totals); err != nil {
		return nil, s.internalError(ctx, log, p, &totals, err)
	} else if saleErr != nil {
		log.Info("Sale exceeds customer credit", zap.String("customer_code", customer.Code))
		return nil, s.reject(ctx, p, &totals, saleErr)
	}

	sale := &saleContext{
		payload:  p,
		settings: settings,
		customer: customer,
		products: products,
		bank:     bank,
		totals:   totals,
		saleTime: p.SaleTime(s.now()),
		log:      log,
	}

	var result *pos.SaleResult
	err = s.scope.Execute(ctx, func(repos WriteRepositories) error {
		var txErr error
		result, txErr = s.writeSale(ctx, repos, sale)
		return txErr
	})
	if err != nil {
		var saleErr *pos.SaleError
		switch {
		case errors.As(err, &saleErr):
			return nil, s.reject(ctx, p, &totals, saleErr)
		case errors.Is(err, errDuplicateCompletion):
			winner, findErr := s.findCompleted(ctx, p.TransactionID)
			if findErr == nil && winner != nil {
				log.Info("Concurrent duplicate completed first, replaying its result")
				return winner, nil
			}
			return nil, s.internalError(ctx, log, p, &totals, err)
		default:
			return nil, s.internalError(ctx, log, p, &totals, err)
		}
	}

	log.Info("Sale completed",
		zap.String("invoice_number", result.InvoiceNumber),
		zap.String("total", result.TotalAmount.StringFixed(2)),
		zap.String("invoice_status", string(result.InvoiceStatus)),
	)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, p, result); err != nil {
			log.Warn("Failed to archive sale payload", zap.Error(err))
		}
	}
	return result, nil
}

// saleContext carries everything resolved before the write phase
type saleContext struct {
	payload  *pos.SalePayload
	settings pos.Settings
	customer *partner.Customer
	products map[string]catalog.Product
	bank     *finance.BankAccount
	totals   pos.Totals
	saleTime time.Time
	log      *zap.Logger
}

// findCompleted returns the stored result of a completed attempt, or nil
func (s *SaleProcessor) findCompleted(ctx context.Context, transactionID string) (*pos.SaleResult, error) {
	saleLog, err := s.repos.SaleLogs.FindCompleted(ctx, transactionID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	result, err := saleLog.Result()
	if err != nil {
		return nil, err
	}
	result.Replayed = true
	if s.metrics != nil {
		s.metrics.RecordReplay(ctx)
	}
	return result, nil
}

// validateCatalog resolves every SKU in one query and checks status and price
func (s *SaleProcessor) validateCatalog(ctx context.Context, p *pos.SalePayload, settings pos.Settings) (map[string]catalog.Product, []pos.ValidationIssue, error) {
	found, err := s.repos.Products.FindBySKUs(ctx, p.SKUs())
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}
	products := make(map[string]catalog.Product, len(found))
	for _, product := range found {
		products[product.SKU] = product
	}

	var issues []pos.ValidationIssue
	for _, item := range p.Items {
		product, ok := products[item.SKU]
		switch {
		case !ok:
			issues = append(issues, pos.ValidationIssue{SKU: item.SKU, Error: "Product not found"})
		case !product.IsActive():
			issues = append(issues, pos.ValidationIssue{SKU: item.SKU, Error: "Product is inactive"})
		case !product.PriceWithinTolerance(item.UnitPrice, settings.PriceTolerancePercent):
			issues = append(issues, pos.ValidationIssue{
				SKU: item.SKU,
				Error: fmt.Sprintf("Price %s deviates from catalog cost %s beyond %s%% tolerance",
					item.UnitPrice.StringFixed(2), product.UnitCost.StringFixed(2), settings.PriceTolerancePercent.String()),
			})
		}
	}
	return products, issues, nil
}

// validateStock compares the requested quantity per SKU with stock on hand
// summed over every location
func (s *SaleProcessor) validateStock(ctx context.Context, p *pos.SalePayload, products map[string]catalog.Product) ([]pos.ValidationIssue, error) {
	requested := p.QuantityBySKU()
	ids := make([]uuid.UUID, 0, len(requested))
	for _, sku := range p.SKUs() {
		if product, ok := products[sku]; ok && product.IsActive() {
			ids = append(ids, product.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	available, err := s.repos.StockLevels.SumAvailable(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stock levels: %w", err)
	}

	var issues []pos.ValidationIssue
	for _, sku := range p.SKUs() {
		product, ok := products[sku]
		if !ok || !product.IsActive() {
			continue
		}
		onHand := available[product.ID]
		if requested[sku].GreaterThan(onHand) {
			issues = append(issues, pos.ValidationIssue{
				SKU: sku,
				Error: fmt.Sprintf("Insufficient stock: requested %s, available %s",
					requested[sku].String(), onHand.String()),
			})
		}
	}
	return issues, nil
}

func (s *SaleProcessor) resolveBankAccount(ctx context.Context, p *pos.SalePayload) (*finance.BankAccount, *pos.ValidationIssue, error) {
	if p.BankAccountID == "" {
		return nil, nil, nil
	}
	id, err := uuid.Parse(p.BankAccountID)
	if err != nil {
		return nil, &pos.ValidationIssue{Field: "bank_account_id", Error: "Bank account id is not a valid UUID"}, nil
	}
	account, err := s.repos.BankAccounts.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, &pos.ValidationIssue{Field: "bank_account_id", Error: "Bank account not found"}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load bank account: %w", err)
	}
	return account, nil, nil
}

// resolveCustomer finds the named customer, falling back to the walk-in
// customer which is created on first use
func (s *SaleProcessor) resolveCustomer(ctx context.Context, p *pos.SalePayload, settings pos.Settings) (*partner.Customer, error) {
	if p.CustomerCode != "" {
		customer, err := s.repos.Customers.FindByCode(ctx, p.CustomerCode)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("load customer %s: %w", p.CustomerCode, err)
		}
		s.logger.Info("Unknown customer code, using walk-in customer",
			zap.String("customer_code", p.CustomerCode))
	}

	code := settings.WalkInCustomerCode
	customer, err := s.repos.Customers.FindByCode(ctx, code)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load walk-in customer: %w", err)
	}

	walkIn, err := partner.NewWalkInCustomer(code)
	if err != nil {
		return nil, err
	}
	err = s.repos.Customers.Create(ctx, walkIn)
	if errors.Is(err, shared.ErrDuplicate) {
		// another request created it first
		return s.repos.Customers.FindByCode(ctx, code)
	}
	if err != nil {
		return nil, fmt.Errorf("create walk-in customer: %w", err)
	}
	s.logger.Info("Created walk-in customer", zap.String("customer_code", code))
	return walkIn, nil
}

// checkCredit rejects a sale whose unpaid part exceeds the customer's
// remaining credit. Walk-in customers and customers without a limit skip it.
func (s *SaleProcessor) checkCredit(ctx context.Context, customer *partner.Customer, settings pos.Settings, totals pos.Totals) (*pos.SaleError, error) {
	if !settings.ValidateCredit || customer.Code == settings.WalkInCustomerCode || !customer.HasCreditLimit() {
		return nil, nil
	}
	outstanding, err := s.repos.Invoices.OutstandingForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("load outstanding balance: %w", err)
	}
	available := customer.AvailableCredit(outstanding)
	if !totals.BalanceDue.GreaterThan(available) {
		return nil, nil
	}
	return pos.NewCreditLimitError(pos.CreditLimitDetails{
		CustomerCode:       customer.Code,
		CreditLimit:        customer.CreditLimit.InexactFloat64(),
		OutstandingBalance: outstanding.InexactFloat64(),
		SaleTotal:          totals.Total.InexactFloat64(),
		AmountPaid:         totals.Paid.InexactFloat64(),
		AvailableCredit:    available.InexactFloat64(),
	}), nil
}

// writeSale performs every write of a sale inside one transaction
func (s *SaleProcessor) writeSale(ctx context.Context, repos WriteRepositories, sale *saleContext) (*pos.SaleResult, error) {
	p, settings, totals := sale.payload, sale.settings, sale.totals

	invoice, err := finance.NewPOSInvoice(
		finance.GenerateDocumentNumber(invoicePrefix, sale.saleTime),
		sale.customer.ID, sale.saleTime, settings.DefaultCurrency, p.TransactionID)
	if err != nil {
		return nil, err
	}
	invoice.Notes = p.Notes
	for _, line := range totals.Lines {
		invoice.AddLine(finance.InvoiceLine{
			ProductID: sale.products[line.Item.SKU].ID,
			SKU:       line.Item.SKU,
			Quantity:  line.Item.Quantity,
			UnitPrice: line.Item.UnitPrice,
			Discount:  line.Item.Discount,
			TaxRate:   line.Item.TaxRate,
			Subtotal:  line.Subtotal,
			TaxAmount: line.Tax,
			LineTotal: line.Total,
		})
	}
	applied := invoice.ApplyPayment(totals.Paid)
	if err := repos.Invoices().Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	cashAccount := settings.Accounts.Cash
	if sale.bank != nil {
		cashAccount = sale.bank.GLAccount()
	}
	journal := finance.NewJournal(refTypeInvoice, invoice.ID, "POS sale "+invoice.InvoiceNumber)
	journal.Credit(settings.Accounts.Revenue, totals.Subtotal)
	journal.Credit(settings.Accounts.TaxPayable, totals.Tax)
	journal.Debit(cashAccount, applied)
	journal.Debit(settings.Accounts.AccountsReceivable, invoice.BalanceDue())
	if len(journal.Entries) > 0 {
		if err := repos.Ledger().Post(ctx, journal); err != nil {
			return nil, fmt.Errorf("post sale journal: %w", err)
		}
	}

	cogs := decimal.Zero
	var uncosted []pos.ValidationIssue
	seen := make(map[string]bool)
	for _, line := range totals.Lines {
		product := sale.products[line.Item.SKU]
		cost, err := s.depleteStock(ctx, repos, sale, product, line.Item.Quantity, invoice.ID)
		if err != nil {
			return nil, err
		}
		if !cost.IsPositive() && !seen[line.Item.SKU] {
			seen[line.Item.SKU] = true
			uncosted = append(uncosted, pos.ValidationIssue{SKU: line.Item.SKU, Error: "No cost basis"})
		}
		cogs = cogs.Add(cost)
	}
	cogs = cogs.Round(2)

	if len(uncosted) > 0 {
		if settings.RejectZeroCost {
			return nil, pos.NewValidationFailedError(uncosted)
		}
		skus := make([]string, 0, len(uncosted))
		for _, issue := range uncosted {
			skus = append(skus, issue.SKU)
		}
		sale.log.Warn("Sale lines have no cost basis", zap.Strings("skus", skus))
	}
	if cogs.IsPositive() {
		cogsJournal := finance.NewJournal(refTypeInvoice, invoice.ID, "COGS "+invoice.InvoiceNumber)
		cogsJournal.Debit(settings.Accounts.COGS, cogs)
		cogsJournal.Credit(settings.Accounts.Inventory, cogs)
		if err := repos.Ledger().Post(ctx, cogsJournal); err != nil {
			return nil, fmt.Errorf("post COGS journal: %w", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCOGS(ctx, len(uncosted) > 0)
	}

	var receiptID *uuid.UUID
	var receiptNumber *string
	if applied.IsPositive() {
		receipt, err := s.recordReceipt(ctx, repos, sale, invoice.ID, applied)
		if err != nil {
			return nil, err
		}
		receiptID, receiptNumber = &receipt.ID, &receipt.ReceiptNumber
	}

	result := &pos.SaleResult{
		InvoiceNumber:    invoice.InvoiceNumber,
		InvoiceID:        invoice.ID,
		ReceiptNumber:    receiptNumber,
		ReceiptID:        receiptID,
		Subtotal:         totals.Subtotal,
		TaxAmount:        totals.Tax,
		TotalAmount:      totals.Total,
		AmountPaid:       totals.Paid,
		ChangeDue:        totals.Change,
		BalanceDue:       invoice.BalanceDue(),
		COGSAmount:       cogs,
		InvoiceStatus:    invoice.Status(),
		InventoryUpdated: true,
		GLPosted:         true,
		Timestamp:        s.now(),
	}

	saleLog, err := pos.NewCompletedSaleLog(p, result, s.now())
	if err != nil {
		return nil, err
	}
	if err := repos.SaleLogs().Create(ctx, saleLog); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return nil, errDuplicateCompletion
		}
		return nil, fmt.Errorf("record completed sale: %w", err)
	}
	return result, nil
}

// depleteStock draws quantity from the product's batches oldest first and
// from its stock levels in location order. It returns the cost of goods sold.
// Quantity not covered by batches is costed at the catalog unit cost.
func (s *SaleProcessor) depleteStock(ctx context.Context, repos WriteRepositories, sale *saleContext, product catalog.Product, quantity decimal.Decimal, invoiceID uuid.UUID) (decimal.Decimal, error) {
	cost := decimal.Zero
	uncosted := quantity

	if product.BatchTracked {
		batches, err := repos.Batches().FindActiveByProduct(ctx, product.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load batches for %s: %w", product.SKU, err)
		}
		plan := inventory.PlanFIFO(batches, quantity)
		for _, draw := range plan.Draws {
			if err := repos.Batches().Decrement(ctx, draw.BatchID, draw.Quantity); err != nil {
				return decimal.Zero, fmt.Errorf("deplete batch %s: %w", draw.BatchID, err)
			}
			batchID := draw.BatchID
			movement := inventory.NewSaleTransaction(product.ID, &batchID, draw.Quantity, draw.UnitCost, refTypeInvoice, invoiceID, sale.saleTime)
			if err := repos.InventoryTransactions().Create(ctx, movement); err != nil {
				return decimal.Zero, fmt.Errorf("record stock movement: %w", err)
			}
		}
		cost = plan.BatchCost()
		uncosted = plan.Shortfall
	}

	if uncosted.IsPositive() {
		movement := inventory.NewSaleTransaction(product.ID, nil, uncosted, product.UnitCost, refTypeInvoice, invoiceID, sale.saleTime)
		if err := repos.InventoryTransactions().Create(ctx, movement); err != nil {
			return decimal.Zero, fmt.Errorf("record stock movement: %w", err)
		}
		cost = cost.Add(movement.TotalCost)
	}

	levels, err := repos.StockLevels().FindByProduct(ctx, product.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load stock levels for %s: %w", product.SKU, err)
	}
	draws, shortfall := inventory.PlanLevelDraws(levels, quantity)
	for _, draw := range draws {
		if err := repos.StockLevels().Decrement(ctx, draw.LevelID, draw.Quantity); err != nil {
			return decimal.Zero, fmt.Errorf("decrement stock at %s: %w", draw.LocationCode, err)
		}
	}
	if shortfall.IsPositive() {
		if sale.settings.ValidateStock {
			// validated earlier, so another sale took the stock meanwhile
			return decimal.Zero, fmt.Errorf("stock for %s changed during sale: %w", product.SKU, shared.ErrInsufficientStock)
		}
		sale.log.Warn("Sold more than stock on hand",
			zap.String("sku", product.SKU),
			zap.String("shortfall", shortfall.String()))
	}
	return cost, nil
}

func (s *SaleProcessor) recordReceipt(ctx context.Context, repos WriteRepositories, sale *saleContext, invoiceID uuid.UUID, amount decimal.Decimal) (*finance.Receipt, error) {
	receipt, err := finance.NewReceipt(
		finance.GenerateDocumentNumber(receiptPrefix, sale.saleTime),
		sale.customer.ID, amount, sale.payload.PaymentMethod, sale.saleTime)
	if err != nil {
		return nil, err
	}
	if err := receipt.AllocateTo(invoiceID, amount); err != nil {
		return nil, err
	}
	if sale.bank != nil {
		receipt.BankAccountID = &sale.bank.ID
	}
	if err := repos.Receipts().Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	if sale.bank == nil {
		return receipt, nil
	}
	deposit := finance.NewDeposit(sale.bank.ID, amount, refTypeReceipt, receipt.ID,
		"POS receipt "+receipt.ReceiptNumber, sale.saleTime)
	if err := repos.BankAccounts().RecordTransaction(ctx, deposit); err != nil {
		return nil, fmt.Errorf("record bank deposit: %w", err)
	}
	if err := repos.BankAccounts().IncrementBalance(ctx, sale.bank.ID, amount); err != nil {
		return nil, fmt.Errorf("update bank balance: %w", err)
	}
	return receipt, nil
}

// reject writes the failed audit row and returns saleErr
func (s *SaleProcessor) reject(ctx context.Context, p *pos.SalePayload, totals *pos.Totals, saleErr *pos.SaleError) *pos.SaleError {
	saleLog, err := pos.NewFailedSaleLog(p, saleErr, totals, s.now())
	if err == nil {
		err = s.repos.SaleLogs.Create(ctx, saleLog)
	}
	if err != nil {
		s.logger.Error("Failed to record rejected sale",
			zap.String("transaction_id", p.TransactionID),
			zap.String("error_code", string(saleErr.Code)),
			zap.Error(err))
	}
	return saleErr
}

// internalError logs the cause, audits the attempt and hides the cause from the caller
func (s *SaleProcessor) internalError(ctx context.Context, log *zap.Logger, p *pos.SalePayload, totals *pos.Totals, cause error) *pos.SaleError {
	log.Error("Sale processing failed", zap.Error(cause))
	return s.reject(ctx, p, totals, pos.NewInternalError(cause))
}
