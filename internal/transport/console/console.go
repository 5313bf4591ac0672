// Package console provides the interactive menu front-end of the inventory.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/abgdnv/stockguard/internal/auth"
	perrors "github.com/abgdnv/stockguard/internal/inventory/errors"
	"github.com/abgdnv/stockguard/internal/inventory/service"
	"github.com/abgdnv/stockguard/internal/report"
	"github.com/abgdnv/stockguard/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// MaxLoginAttempts is the number of failed logins after which the session ends.
const MaxLoginAttempts = 3

// ErrAuthenticationFailed is returned by Run when every login attempt failed.
var ErrAuthenticationFailed = errors.New("authentication failed")

const rule = "============================================================"
const divider = "------------------------------------------------------------"

// PasswordReader prompts for and reads a password without echoing it.
type PasswordReader func(prompt string) (string, error)

// Console runs the menu loop over a line-oriented input and output.
type Console struct {
	service      service.InventoryService
	credentials  auth.CredentialVerifier
	in           *bufio.Scanner
	out          io.Writer
	readPassword PasswordReader
	logger       *slog.Logger
	user         string
}

// Option configures a Console.
type Option func(*Console)

// WithPasswordReader replaces reading the password as a plain input line.
func WithPasswordReader(fn PasswordReader) Option {
	return func(c *Console) {
		c.readPassword = fn
	}
}

// WithLogger sets the logger for audit records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New creates a Console reading commands from in and writing to out.
func New(svc service.InventoryService, credentials auth.CredentialVerifier, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		service:     svc,
		credentials: credentials,
		in:          bufio.NewScanner(in),
		out:         out,
		logger:      slog.New(slog.DiscardHandler),
	}
	c.readPassword = func(prompt string) (string, error) {
		return c.prompt(prompt)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run logs the operator in and serves the menu until Exit or end of input.
// It returns ErrAuthenticationFailed when a login gives up.
func (c *Console) Run(ctx context.Context) error {
	c.println("")
	c.println("SMART INVENTORY MANAGEMENT AGENT")
	c.println("Warehouse Decision System")

	if !c.login(ctx) {
		c.println("\nAuthentication failed. Exiting...")
		return ErrAuthenticationFailed
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.showMenu()
		choice, err := c.prompt("\nEnter your choice (1-9): ")
		if err != nil {
			return endOfInput(err)
		}

		userCtx := logger.WithSubject(ctx, c.user)
		switch strings.TrimSpace(choice) {
		case "1":
			c.showDashboard(userCtx)
		case "2":
			err = c.addProduct(userCtx)
		case "3":
			err = c.updateStock(userCtx)
		case "4":
			err = c.deleteProduct(userCtx)
		case "5":
			c.showRecommendations(userCtx)
		case "6":
			c.export(userCtx, report.FormatPDF)
		case "7":
			c.export(userCtx, report.FormatCSV)
		case "8":
			c.println("\nLogging out...")
			c.logger.InfoContext(userCtx, "user logged out")
			c.user = ""
			if !c.login(ctx) {
				c.println("\nAuthentication failed. Exiting...")
				return ErrAuthenticationFailed
			}
		case "9":
			c.println("\nThank you for using Smart Inventory Agent. Goodbye!")
			return nil
		default:
			c.println("\nInvalid choice. Please try again.")
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func (c *Console) login(ctx context.Context) bool {
	c.header("LOGIN")
	for attempt := 1; attempt <= MaxLoginAttempts; attempt++ {
		username, err := c.prompt("\nUsername: ")
		if err != nil {
			return false
		}
		username = strings.TrimSpace(username)
		password, err := c.readPassword("Password: ")
		if err != nil {
			return false
		}

		err = c.credentials.Verify(ctx, username, password)
		if err == nil {
			c.user = username
			c.logger.InfoContext(logger.WithSubject(ctx, username), "user logged in")
			c.printf("\nWelcome, %s!\n", username)
			return true
		}
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			c.logger.ErrorContext(ctx, "credential check failed", "username", username, "error", err)
		}
		c.logger.WarnContext(ctx, "login failed", "username", username, "attempt", attempt)

		if remaining := MaxLoginAttempts - attempt; remaining > 0 {
			c.printf("Invalid credentials. %d attempt(s) remaining.\n", remaining)
		} else {
			c.println("Login failed. Too many attempts.")
		}
	}
	return false
}

func (c *Console) showMenu() {
	c.println("\n" + rule)
	c.println("  SMART INVENTORY MANAGEMENT SYSTEM")
	c.println(rule)
	c.printf("  Logged in as: %s\n", c.user)
	c.println(rule)
	c.println("\n1. Dashboard")
	c.println("2. Add Product")
	c.println("3. Update Stock")
	c.println("4. Delete Product")
	c.println("5. Recommendations")
	c.println("6. Generate PDF Report")
	c.println("7. Export CSV")
	c.println("8. Logout")
	c.println("9. Exit")
	c.println(divider)
}

func (c *Console) showDashboard(ctx context.Context) {
	c.header("DASHBOARD")
	d := c.service.Dashboard(ctx)
	if d.DurabilityWarning != "" {
		c.printf("\nWARNING: %s\n", d.DurabilityWarning)
	}
	if d.TotalProducts == 0 {
		c.println("\nNo products in inventory. Add a product to get started!")
		return
	}

	c.printf("\nTotal Products: %d\n", d.TotalProducts)
	c.printf("Total Stock: %d units\n", d.TotalStock)
	c.printf("Low Stock Items: %d (below %d)\n", d.LowStock, d.LowLimit)
	c.println(divider)
	c.println("\nINVENTORY TABLE:")
	c.printTable(c.service.List(ctx))
}

func (c *Console) printTable(products []service.ProductDto) {
	idWidth, nameWidth := len("Product ID"), len("Product Name")
	for _, p := range products {
		idWidth = max(idWidth, len(p.ID))
		nameWidth = max(nameWidth, len(p.Name))
	}
	c.printf("%-*s  %-*s  %8s  %12s\n", idWidth, "Product ID", nameWidth, "Product Name", "Stock", "Daily Demand")
	for _, p := range products {
		c.printf("%-*s  %-*s  %8d  %12d\n", idWidth, p.ID, nameWidth, p.Name, p.Stock, p.DailyDemand)
	}
}

func (c *Console) addProduct(ctx context.Context) error {
	c.header("ADD PRODUCT")
	id, err := c.prompt("\nProduct ID: ")
	if err != nil {
		return err
	}
	name, err := c.prompt("Product Name: ")
	if err != nil {
		return err
	}
	stockText, err := c.prompt("Initial Stock: ")
	if err != nil {
		return err
	}
	demandText, err := c.prompt("Daily Demand: ")
	if err != nil {
		return err
	}

	stock, stockErr := strconv.Atoi(strings.TrimSpace(stockText))
	demand, demandErr := strconv.Atoi(strings.TrimSpace(demandText))
	if stockErr != nil || demandErr != nil {
		c.println("Stock and Demand must be numbers.")
		return nil
	}

	added, err := c.service.Add(ctx, service.ProductCreateDto{ID: id, Name: name, Stock: stock, DailyDemand: demand})
	if err != nil {
		c.reportError(err, strings.TrimSpace(id))
		return nil
	}
	c.printf("\nProduct '%s' added successfully!\n", added.Name)
	return nil
}

func (c *Console) updateStock(ctx context.Context) error {
	c.header("UPDATE STOCK")
	products := c.service.List(ctx)
	if len(products) == 0 {
		c.println("\nNo products in inventory. Please add a product first.")
		return nil
	}

	c.println("\nAvailable Products:")
	for i, p := range products {
		c.printf("  %d. %s (ID: %s) - Current Stock: %d\n", i+1, p.Name, p.ID, p.Stock)
	}

	choiceText, err := c.prompt("\nSelect product number: ")
	if err != nil {
		return err
	}
	choice, err := strconv.Atoi(strings.TrimSpace(choiceText))
	if err != nil {
		c.println("Invalid input.")
		return nil
	}
	if choice < 1 || choice > len(products) {
		c.println("Invalid selection.")
		return nil
	}

	selected := products[choice-1]
	c.printf("\nUpdating '%s'\n", selected.Name)
	c.printf("   Current Stock: %d\n", selected.Stock)
	stockText, err := c.prompt("New Stock: ")
	if err != nil {
		return err
	}
	stock, err := strconv.Atoi(strings.TrimSpace(stockText))
	if err != nil {
		c.println("Invalid input.")
		return nil
	}

	if _, err := c.service.UpdateStock(ctx, selected.ID, stock); err != nil {
		c.reportError(err, selected.ID)
		return nil
	}
	c.println("\nStock updated successfully!")
	return nil
}

func (c *Console) deleteProduct(ctx context.Context) error {
	c.header("DELETE PRODUCT")
	id, err := c.prompt("\nProduct ID to delete: ")
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)

	if err := c.service.Delete(ctx, id); err != nil {
		c.reportError(err, id)
		return nil
	}
	c.printf("\nProduct '%s' deleted successfully!\n", id)
	return nil
}

func (c *Console) showRecommendations(ctx context.Context) {
	c.header("RECOMMENDATIONS")
	recs, err := c.service.Recommendations(ctx)
	if err != nil {
		c.reportError(err, "")
		return
	}
	if len(recs) == 0 {
		c.println("\nNo products to analyze. Add products first!")
		return
	}

	c.println("\n" + rule)
	for i, r := range recs {
		c.printf("\n%d. %s\n", i+1, r.Name)
		c.println(divider)
		c.printf("   Current Stock: %d units\n", r.Stock)
		c.printf("   Daily Demand: %d units\n", r.DailyDemand)
		c.printf("   7-Day Forecast: %d units\n", r.WeekForecast)
		c.printf("   Priority Score: %d\n", r.PriorityScore)
		c.printf("   Status: %s\n", r.Tier)
		c.printf("   Recommendation: %s\n", r.Recommendation)
	}
	c.println("\n" + rule)
}

func (c *Console) export(ctx context.Context, format string) {
	if format == report.FormatPDF {
		c.header("GENERATE PDF REPORT")
	} else {
		c.header("EXPORT DATA")
	}
	path, err := c.service.Export(ctx, format)
	switch {
	case errors.Is(err, report.ErrRendererUnavailable):
		c.printf("\n%s export is not available. Enable it with report.%s.enabled.\n", strings.ToUpper(format), format)
	case errors.Is(err, report.ErrNothingToReport):
		c.println("\nNo products to report. Add products first!")
	case err != nil:
		c.printf("\nError generating %s: %v\n", strings.ToUpper(format), err)
	case format == report.FormatPDF:
		c.printf("\nReport generated: %s\n", path)
	default:
		c.printf("\nData exported to: %s\n", path)
	}
}

// reportError prints a user-facing message for a failed operation.
func (c *Console) reportError(err error, id string) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		for _, fieldErr := range validationErrors {
			c.println(fieldMessage(fieldErr))
		}
	case errors.Is(err, perrors.ErrDuplicateProduct):
		c.printf("Product ID '%s' already exists!\n", id)
	case errors.Is(err, perrors.ErrProductNotFound):
		c.printf("Product ID '%s' not found.\n", id)
	case errors.Is(err, perrors.ErrStorage):
		c.printf("Could not save the inventory, the change was not applied: %v\n", err)
	default:
		c.printf("Error: %v\n", err)
	}
}

var fieldLabels = map[string]string{
	"ID":          "Product ID",
	"Name":        "Product Name",
	"Stock":       "Stock",
	"DailyDemand": "Daily Demand",
}

func fieldMessage(fieldErr validator.FieldError) string {
	label, ok := fieldLabels[fieldErr.Field()]
	if !ok {
		label = fieldErr.Field()
	}
	switch fieldErr.Tag() {
	case "required":
		return label + " cannot be empty."
	case "min":
		return label + " cannot be negative."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s).", label, fieldErr.Tag())
	}
}

func (c *Console) header(title string) {
	c.println("\n" + rule)
	c.println("  " + title)
	c.println(rule)
}

// prompt writes text and reads one input line. It returns io.EOF when input is exhausted.
func (c *Console) prompt(text string) (string, error) {
	_, _ = fmt.Fprint(c.out, text)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.in.Text(), nil
}

func (c *Console) println(text string) {
	_, _ = fmt.Fprintln(c.out, text)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
