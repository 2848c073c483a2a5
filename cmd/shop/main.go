// Command shop is a terminal client for the cosmetics storefront API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
	"go-cosmetics/internal/storefront"
)

func main() {
	apiURL := envOr("SHOP_API_URL", "http://localhost:8080")

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "Account email")
	loginPassword := loginCmd.String("password", "", "Account password")

	productsCmd := flag.NewFlagSet("products", flag.ExitOnError)
	productsQuery := productsCmd.String("q", "", "Search text")
	productsPage := productsCmd.Int("page", 1, "Page number")
	productsLimit := productsCmd.Int("limit", 20, "Page size")

	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	addProduct := addCmd.Int("product", 0, "Product ID")
	addQty := addCmd.Int("qty", 1, "Quantity")

	checkoutCmd := flag.NewFlagSet("checkout", flag.ExitOnError)
	coName := checkoutCmd.String("name", "", "Recipient name")
	coPhone := checkoutCmd.String("phone", "", "Recipient phone")
	coAddress := checkoutCmd.String("address", "", "Street address")
	coProvince := checkoutCmd.Int("province", 0, "Province code")
	coDistrict := checkoutCmd.Int("district", 0, "District code")
	coWard := checkoutCmd.Int("ward", 0, "Ward code")
	coPayment := checkoutCmd.Int("payment", 1, "Payment method ID")
	coNote := checkoutCmd.String("note", "", "Order note")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	client, err := newClient(apiURL)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "login":
		loginCmd.Parse(os.Args[2:])
		err = handleLogin(ctx, client, *loginEmail, *loginPassword)
	case "logout":
		err = storefront.NewSession(client).Logout()
		if err == nil {
			fmt.Println("Đã đăng xuất")
		}
	case "products":
		productsCmd.Parse(os.Args[2:])
		err = handleProducts(ctx, client, *productsQuery, *productsPage, *productsLimit)
	case "cart":
		err = handleCart(ctx, client)
	case "add":
		addCmd.Parse(os.Args[2:])
		err = handleAdd(ctx, client, *addProduct, *addQty)
	case "checkout":
		checkoutCmd.Parse(os.Args[2:])
		err = handleCheckout(ctx, client, [3]int{*coProvince, *coDistrict, *coWard}, storefront.CheckoutForm{
			RecipientName:   *coName,
			Phone:           *coPhone,
			AddressDetail:   *coAddress,
			PaymentMethodID: *coPayment,
			Note:            *coNote,
		})
	case "orders":
		err = handleOrders(ctx, client)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func printUsage() {
	fmt.Println(`Usage: shop <command> [flags]

Commands:
  login     -email -password
  logout
  products  [-q text] [-page n] [-limit n]
  cart
  add       -product id [-qty n]
  checkout  -name -phone -address -province -district -ward [-payment id] [-note text]
  orders

Environment:
  SHOP_API_URL  API server root (default http://localhost:8080)`)
}

func newClient(apiURL string) (*storefront.Client, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	storage, err := storefront.NewFileStorage(filepath.Join(dir, "go-cosmetics", "shop.json"))
	if err != nil {
		return nil, err
	}
	return storefront.New(storefront.Config{
		BaseURL: apiURL,
		Store:   storefront.NewStore(storage),
		OnUnauthorized: func() {
			fmt.Fprintln(os.Stderr, "Phiên đăng nhập đã hết hạn, hãy chạy: shop login")
		},
	})
}

func handleLogin(ctx context.Context, client *storefront.Client, email, password string) error {
	if email == "" || password == "" {
		return errors.New("-email and -password are required")
	}
	session := storefront.NewSession(client)
	route, err := session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	u, _ := session.User()
	fmt.Printf("Xin chào %s (%s), trang bắt đầu: %s\n", displayName(u), u.Email, route)
	return nil
}

func handleProducts(ctx context.Context, client *storefront.Client, query string, page, limit int) error {
	var (
		result storefront.Page[models.Product]
		err    error
	)
	if query != "" {
		result, err = client.SearchProducts(ctx, query, page, limit)
	} else {
		result, err = client.ListProducts(ctx, page, limit)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTÊN\tGIÁ\tKHO")
	for _, p := range result.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", p.ID, p.Name, pricing.FormatVND(p.UnitPrice()), p.Stock)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Trang %d/%d, %d sản phẩm\n", result.Meta.Page, result.Meta.TotalPages, result.Meta.Total)
	return nil
}

func handleCart(ctx context.Context, client *storefront.Client) error {
	cart := storefront.NewCartFlow(client, storefront.NewEventBus())
	if err := cart.Load(ctx); err != nil {
		return err
	}
	items := cart.Items()
	if len(items) == 0 {
		fmt.Println("Giỏ hàng trống")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DÒNG\tSẢN PHẨM\tSL\tĐƠN GIÁ")
	for _, it := range items {
		name, price := "#"+strconv.Itoa(it.ProductID), "-"
		if it.Product != nil {
			name, price = it.Product.Name, pricing.FormatVND(it.Product.UnitPrice())
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", it.ID, name, it.Quantity, price)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printTotals(cart.Totals())
	return nil
}

func handleAdd(ctx context.Context, client *storefront.Client, productID, qty int) error {
	if productID == 0 {
		return errors.New("-product is required")
	}
	bus := storefront.NewEventBus()
	badge := storefront.NewCartBadge(client, bus)
	if _, err := storefront.NewCartFlow(client, bus).Add(ctx, productID, qty); err != nil {
		return err
	}
	if err := badge.Refresh(ctx); err != nil {
		return err
	}
	fmt.Printf("Đã thêm vào giỏ, giỏ hàng có %d sản phẩm\n", badge.Count())
	return nil
}

func handleCheckout(ctx context.Context, client *storefront.Client, codes [3]int, form storefront.CheckoutForm) error {
	cart := storefront.NewCartFlow(client, storefront.NewEventBus())
	if err := cart.Load(ctx); err != nil {
		return err
	}
	if _, err := cart.ProceedToCheckout(); err != nil {
		return err
	}

	address := storefront.NewAddressSelector(storefront.NewAddressDirectory(os.Getenv("SHOP_ADDRESS_API"), nil))
	if err := address.SelectProvince(ctx, codes[0]); err != nil {
		return err
	}
	if err := address.SelectDistrict(ctx, codes[1]); err != nil {
		return err
	}
	address.SelectWard(codes[2])

	flow := storefront.NewCheckoutFlow(client, address)
	if err := flow.LoadProducts(ctx); err != nil {
		return err
	}
	printTotals(flow.Totals())
	placed, err := flow.PlaceOrder(ctx, form)
	if err != nil {
		return err
	}
	if placed.RedirectURL != "" {
		fmt.Printf("Mở liên kết sau để thanh toán đơn %s:\n%s\n", placed.Order.Code, placed.RedirectURL)
		return nil
	}
	fmt.Printf("Đặt hàng thành công: %s (%s)\n", placed.Order.Code, storefront.OrderStatusLabel(placed.Order.Status).Text)
	return nil
}

func handleOrders(ctx context.Context, client *storefront.Client) error {
	orders, err := client.MyOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("Chưa có đơn hàng")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MÃ ĐƠN\tNGÀY\tTỔNG\tTRẠNG THÁI\tTHANH TOÁN")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.Code,
			o.CreatedAt.Local().Format("02/01/2006 15:04"),
			pricing.FormatVND(o.Total),
			storefront.OrderStatusLabel(o.Status).Text,
			storefront.PaymentStatusLabel(o.PaymentStatus).Text,
		)
	}
	return w.Flush()
}

func printTotals(t pricing.Totals) {
	fmt.Printf("Tạm tính: %s\nPhí vận chuyển: %s\nTổng cộng: %s\n",
		pricing.FormatVND(t.Subtotal), pricing.FormatVND(t.Shipping), pricing.FormatVND(t.Total))
}

func displayName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Lỗi:", storefront.Message(err))
	var apiErr *storefront.APIError
	if !errors.As(err, &apiErr) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
