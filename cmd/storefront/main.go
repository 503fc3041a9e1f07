// storefront is a CLI for driving the auto parts store from a terminal.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	storefront login -cookie SESSIONID
//	storefront status
//	storefront cart
//	storefront add -product ID [-qty N]
//	storefront quote -region ID -county CODE -address ADDR
//	storefront checkout -delivery ship -payment webpay -region ID -county CODE -address ADDR [-option N]
//
// Examples:
//
//	storefront login -cookie "$SESSIONID"
//	storefront add -product 60 -qty 2
//	storefront quote -region R13 -county 13101 -address "Av. Matta 123"
//	storefront checkout -delivery ship -payment webpay -region R13 -county 13101 -address "Av. Matta 123" -option 1
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"autoparts-storefront/internal/api"
	"autoparts-storefront/internal/cart"
	"autoparts-storefront/internal/checkout"
	"autoparts-storefront/internal/config"
	"autoparts-storefront/internal/credstore"
	"autoparts-storefront/internal/guestcart"
	"autoparts-storefront/internal/model"
	"autoparts-storefront/internal/session"
	"autoparts-storefront/internal/shipping"
)

// Global flags (apply to all commands)
var (
	quiet   bool
	noColor bool
	verbose bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		runLogin(args)
	case "logout":
		runLogout(args)
	case "status":
		runStatus(args)
	case "cart":
		runCart(args)
	case "add":
		runAdd(args)
	case "increase":
		runQuantity(args, "increase")
	case "decrease":
		runQuantity(args, "decrease")
	case "remove":
		runQuantity(args, "remove")
	case "clear":
		runClear(args)
	case "migrate":
		runMigrate(args)
	case "regions":
		runRegions(args)
	case "coverage":
		runCoverage(args)
	case "quote":
		runQuote(args)
	case "checkout":
		runCheckout(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storefront - auto parts store client

Usage:
  storefront <command> [options]

Commands:
  login     Exchange the browser session cookie for an API token
  logout    Invalidate the token and clear local credentials
  status    Show session and cart state
  cart      List the active cart with CLP totals
  add       Add a product to the cart
  increase  Raise a line's quantity by one
  decrease  Lower a line's quantity by one
  remove    Remove a line entirely
  clear     Empty the cart
  migrate   Push guest cart lines into the server cart
  regions   List serviced regions
  coverage  List serviced comunas of a region
  quote     Request courier quotes for the cart
  checkout  Place an order

Examples:
  # Log in with the browser session cookie
  storefront login -cookie "$SESSIONID"

  # Build a cart and check totals
  storefront add -product 60 -qty 2
  storefront cart

  # Quote shipping and place the order
  storefront quote -region R13 -county 13101 -address "Av. Matta 123"
  storefront checkout -delivery ship -payment webpay -region R13 -county 13101 -address "Av. Matta 123" -option 0

Run 'storefront <command> -h' for command-specific options.

Configuration comes from STORE_URL and friends, or CONFIG_FILE.
`)
}

// =============================================================================
// CORE WIRING
// =============================================================================

// core bundles the client services a command needs.
type core struct {
	client     *api.Client
	creds      credstore.Store
	session    *session.Coordinator
	engine     *cart.Engine
	negotiator *shipping.Negotiator
	geo        *shipping.Catalog
	submitter  *checkout.Submitter
}

// buildCore loads configuration and wires the services. sessionCookie
// overrides the configured cookie when non-empty (login command).
func buildCore(ctx context.Context, sessionCookie string) (*core, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cookie := cfg.Store.SessionCookie
	if sessionCookie != "" {
		cookie = sessionCookie
	}

	client := api.New(cfg.Store.StoreURL)
	creds := credstore.NewFileStore(cfg.Store.CredentialsFile)

	sess := session.New(session.Config{
		API:           client,
		Credentials:   creds,
		SessionCookie: cookie,
		Logger:        logger,
	})

	guest := guestcart.New(creds, logger)
	engine := cart.New(cart.Config{
		Session: sess,
		Server:  client,
		Guest:   guest,
		Catalog: client,
		Logger:  logger,
	})

	negotiator := shipping.New(client, sess, logger)
	submitter := checkout.New(checkout.Config{
		Session: sess,
		Cart:    engine,
		Quotes:  negotiator,
		API:     client,
		Logger:  logger,
	})

	return &core{
		client:     client,
		creds:      creds,
		session:    sess,
		engine:     engine,
		negotiator: negotiator,
		geo:        shipping.NewCatalog(client),
		submitter:  submitter,
	}, nil
}

// newFlagSet creates a flag set with the shared flags registered.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - log client activity")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefront %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func runLogin(args []string) {
	fs := newFlagSet("login", "login -cookie SESSIONID [options]")
	var cookie string
	fs.StringVar(&cookie, "cookie", "", "Browser session cookie value (required)")
	parseFlags(fs, args)

	if cookie == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, cookie)
	if err != nil {
		fatal("%v", err)
	}

	if _, err := c.session.EnsureToken(ctx); err != nil {
		fatal("Login failed: %v", err)
	}
	printSuccess("Logged in")
}

func runLogout(args []string) {
	fs := newFlagSet("logout", "logout [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	if err := c.session.Logout(ctx); err != nil {
		fatal("Logout failed: %v", err)
	}
	printSuccess("Logged out")
}

func runStatus(args []string) {
	fs := newFlagSet("status", "status [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	authed := c.session.IsAuthenticated(ctx)
	total, err := c.engine.TotalItems(ctx)
	if err != nil {
		fatal("Reading cart: %v", err)
	}

	if quiet {
		fmt.Println(authed)
		return
	}

	state := colorRed + "anonymous" + colorReset
	if authed {
		state = colorGreen + "authenticated" + colorReset
	}
	fmt.Printf("Session: %s\n", state)
	fmt.Printf("Cart items: %s%d%s\n", colorCyan, total, colorReset)
}

// =============================================================================
// CART COMMANDS
// =============================================================================

func runCart(args []string) {
	fs := newFlagSet("cart", "cart [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	lines, err := c.engine.CurrentLines(ctx)
	if err != nil {
		fatal("Reading cart: %v", err)
	}
	if len(lines) == 0 {
		printInfo("Cart is empty")
		return
	}

	totals := cart.ComputeTotals(lines, model.DeliveryPickup, 0)
	for _, line := range lines {
		fmt.Printf("  %s%d×%s %s%s%s  %s  (#%d)\n",
			colorBold, line.Quantity, colorReset,
			colorCyan, line.Name, colorReset,
			model.FormatCLP(line.Subtotal()), line.ProductID)
	}
	fmt.Printf("\n  Net:   %s\n", model.FormatCLP(totals.Net))
	fmt.Printf("  IVA:   %s\n", model.FormatCLP(totals.Tax))
	fmt.Printf("  Total: %s%s%s\n", colorGreen, model.FormatCLP(totals.Gross), colorReset)
}

func runAdd(args []string) {
	fs := newFlagSet("add", "add -product ID [-qty N] [options]")
	var productID int64
	var qty int
	fs.Int64Var(&productID, "product", 0, "Product ID (required)")
	fs.IntVar(&qty, "qty", 1, "Quantity")
	parseFlags(fs, args)

	if productID == 0 {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	if err := c.engine.Add(ctx, productID, qty); err != nil {
		fatal("Add failed: %v", err)
	}
	printSuccess("Added %d× product %d", qty, productID)
}

func runQuantity(args []string, op string) {
	fs := newFlagSet(op, op+" -product ID [options]")
	var productID int64
	fs.Int64Var(&productID, "product", 0, "Product ID (required)")
	parseFlags(fs, args)

	if productID == 0 {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	switch op {
	case "increase":
		err = c.engine.Increase(ctx, productID)
	case "decrease":
		err = c.engine.Decrease(ctx, productID)
	case "remove":
		err = c.engine.Remove(ctx, productID)
	}
	if err != nil {
		fatal("%s failed: %v", op, err)
	}
	printSuccess("Done")
}

func runClear(args []string) {
	fs := newFlagSet("clear", "clear [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	if err := c.engine.Clear(ctx); err != nil {
		fatal("Clear failed: %v", err)
	}
	printSuccess("Cart cleared")
}

func runMigrate(args []string) {
	fs := newFlagSet("migrate", "migrate [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	if err := c.engine.MigrateGuestCart(ctx); err != nil {
		// Failed lines stay local; the command may simply be rerun.
		fatal("Migration incomplete: %v", err)
	}
	printSuccess("Guest cart migrated")
}

// =============================================================================
// SHIPPING COMMANDS
// =============================================================================

func runRegions(args []string) {
	fs := newFlagSet("regions", "regions [options]")
	parseFlags(fs, args)

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	regions, err := c.geo.Regions(ctx)
	if err != nil {
		fatal("Fetching regions: %v", err)
	}
	for _, region := range regions {
		fmt.Printf("  %s%s%s  %s\n", colorCyan, region.ID, colorReset, region.Name)
	}
}

func runCoverage(args []string) {
	fs := newFlagSet("coverage", "coverage -region ID [options]")
	var regionID string
	fs.StringVar(&regionID, "region", "", "Region ID (required)")
	parseFlags(fs, args)

	if regionID == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	areas, err := c.geo.Coverage(ctx, regionID)
	if err != nil {
		fatal("Fetching coverage: %v", err)
	}
	for _, area := range areas {
		fmt.Printf("  %s%s%s  %s\n", colorCyan, area.CountyCode, colorReset, area.Name)
	}
}

func runQuote(args []string) {
	fs := newFlagSet("quote", "quote -region ID -county CODE -address ADDR [options]")
	var regionID, countyCode, address string
	fs.StringVar(&regionID, "region", "", "Destination region ID (required)")
	fs.StringVar(&countyCode, "county", "", "Destination comuna code (required)")
	fs.StringVar(&address, "address", "", "Street address (required)")
	parseFlags(fs, args)

	if regionID == "" || countyCode == "" || address == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	lines, err := c.engine.CurrentLines(ctx)
	if err != nil {
		fatal("Reading cart: %v", err)
	}

	dest := model.Destination{RegionID: regionID, CountyCode: countyCode, Address: address}
	quotes, err := c.negotiator.RequestQuotes(ctx, dest, lines)
	if err != nil {
		fatal("Quote failed: %v", err)
	}

	for i, quote := range quotes {
		fmt.Printf("  %s[%d]%s %s%-12s%s %s  %s\n",
			colorYellow, i, colorReset,
			colorCyan, quote.ServiceName, colorReset,
			model.FormatCLP(quote.Cost), colorGray+quote.ETA+colorReset)
	}
}

// =============================================================================
// CHECKOUT COMMAND
// =============================================================================

func runCheckout(args []string) {
	fs := newFlagSet("checkout", "checkout -delivery ship|pickup -payment METHOD [options]")
	var delivery, payment, regionID, countyCode, address, notes string
	var option int
	fs.StringVar(&delivery, "delivery", "", "Delivery type: ship or pickup (required)")
	fs.StringVar(&payment, "payment", "", "Payment method, e.g. webpay (required)")
	fs.StringVar(&regionID, "region", "", "Destination region ID (ship only)")
	fs.StringVar(&countyCode, "county", "", "Destination comuna code (ship only)")
	fs.StringVar(&address, "address", "", "Street address (ship only)")
	fs.StringVar(&notes, "notes", "", "Order notes")
	fs.IntVar(&option, "option", 0, "Shipping option index from quote (ship only)")
	parseFlags(fs, args)

	if delivery == "" || payment == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildCore(ctx, "")
	if err != nil {
		fatal("%v", err)
	}

	req := checkout.Request{
		Delivery:      model.DeliveryType(delivery),
		PaymentMethod: payment,
		Notes:         notes,
	}

	lines, err := c.engine.CurrentLines(ctx)
	if err != nil {
		fatal("Reading cart: %v", err)
	}

	var shippingCost int64

	// Quote state lives in this process, so ship orders quote here before
	// submitting rather than relying on an earlier invocation.
	if req.Delivery == model.DeliveryShip {
		req.Destination = &model.Destination{
			RegionID:   regionID,
			CountyCode: countyCode,
			Address:    address,
		}

		quotes, err := c.negotiator.RequestQuotes(ctx, *req.Destination, lines)
		if err != nil {
			fatal("Quote failed: %v", err)
		}
		quote, err := c.negotiator.Select(option)
		if err != nil {
			fatal("Selecting option %d of %d: %v", option, len(quotes), err)
		}
		shippingCost = quote.Cost
		printInfo("Shipping via %s for %s", quote.ServiceName, model.FormatCLP(quote.Cost))
	}

	totals := cart.ComputeTotals(lines, req.Delivery, shippingCost)

	order, err := c.submitter.Submit(ctx, req)
	if err != nil {
		fatal("Checkout failed: %v", err)
	}

	if quiet {
		fmt.Println(order.ID)
		return
	}
	printSuccess("Order placed")
	fmt.Printf("  Order ID: %s%d%s\n", colorGreen, order.ID, colorReset)
	fmt.Printf("  Total:    %s%s%s\n", colorGreen, model.FormatCLP(totals.Grand), colorReset)
	fmt.Printf("  Pay at:   %s%s%s\n", colorCyan, order.PaymentURL, colorReset)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
