package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"app/internal/cart"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/infra/db"
	"app/internal/infra/localstore"
	infraRepo "app/internal/infra/repository"
	"app/internal/realtime"
	"app/internal/receipt"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// 店頭キオスク。端末ローカルのカートで操作し、接続があれば
// リモートにも同期する。注文確定でレシートを印字する。
//
// コマンド:
//
//	menu                  メニュー一覧
//	add <No> [qty] [size] カートに追加
//	cart                  カートの中身
//	remove <No>           行を削除
//	clear                 カートを空にする
//	checkout <name> <phone> 注文確定（店内）
//	takeout <name> <phone>  注文確定（持ち帰り）
//	last                  直近の注文控え
//	quit                  終了

type stdoutPrinter struct{}

func (stdoutPrinter) Print(text string) error {
	_, err := fmt.Print(text)
	return err
}

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	storePath := cfg.LocalStorePath
	if storePath == "" {
		storePath = "kiosk.db"
	}

	local, err := localstore.Open(storePath)
	if err != nil {
		log.Fatal().Err(err).Msg("local store open failed")
	}
	defer local.Close()

	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	userRepo := infraRepo.NewUserGormRepository(gormDB)
	foodRepo := infraRepo.NewFoodItemGormRepository(gormDB)
	sizeRepo := infraRepo.NewSizeOptionGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	ctx := context.Background()

	kioskUser, err := ensureKioskUser(ctx, userRepo, cfg.KioskName)
	if err != nil {
		log.Fatal().Err(err).Msg("kiosk account setup failed")
	}

	var feed realtime.Feed
	if cfg.RabbitURL != "" {
		rf, ferr := realtime.NewRabbitFeed(cfg.RabbitURL, "boki.changes")
		if ferr != nil {
			log.Warn().Err(ferr).Msg("rabbitmq unavailable, orders will not notify")
			feed = realtime.NewMemoryFeed()
		} else {
			defer rf.Close()
			feed = rf
		}
	} else {
		feed = realtime.NewMemoryFeed()
	}

	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, txManager, feed, local)

	//端末ローカルが移行元、リモートが正
	rec := cart.NewReconciler(cart.NewLocalStore(local), func(uid string) cart.Store {
		return cart.NewRemoteStore(cartRepo, uid)
	})
	if err := rec.LoadForIdentity(ctx, cart.ForUser(kioskUser.ID, model.RoleKiosk)); err != nil {
		log.Fatal().Err(err).Msg("cart load failed")
	}

	runLoop(ctx, rec, foodRepo, sizeRepo, orderUC, local)
}

// キオスクの固定アカウントを引く。無ければ作る。
func ensureKioskUser(ctx context.Context, users repo.UserRepository, name string) (*model.User, error) {
	if name == "" {
		name = "kiosk-1"
	}
	email := name + "@kiosk.local"

	u, err := users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return u, nil
	}

	//ログイン不能なランダムパスワード
	pw, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u = &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(pw),
		Role:         model.RoleKiosk,
		FullName:     name,
		IsActive:     true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func runLoop(
	ctx context.Context,
	rec *cart.Reconciler,
	foodRepo repo.FoodItemRepository,
	sizeRepo repo.SizeOptionRepository,
	orderUC *usecase.OrderUsecase,
	local *localstore.Store,
) {
	printer := stdoutPrinter{}
	sc := bufio.NewScanner(os.Stdin)

	fmt.Println("BOKI kiosk ready. Type 'menu' to start.")

	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "menu":
			showMenu(ctx, foodRepo, sizeRepo)

		case "add":
			addToCart(ctx, rec, foodRepo, sizeRepo, fields[1:])

		case "cart":
			showCart(rec)

		case "remove":
			if len(fields) < 2 {
				fmt.Println("usage: remove <No>")
				continue
			}
			if line, ok := lineByNumber(rec, fields[1]); ok {
				rec.RemoveLine(ctx, line.FoodItemID, line.SizeOptionID)
			}
			showCart(rec)

		case "clear":
			if err := rec.Clear(ctx); err != nil {
				fmt.Println("clear failed:", err)
			}

		case "checkout", "takeout":
			if len(fields) < 3 {
				fmt.Printf("usage: %s <name> <phone>\n", fields[0])
				continue
			}
			//店内はdelivery扱い（DINE-IN）、持ち帰りはpickup
			orderType := string(model.OrderTypeDelivery)
			if fields[0] == "takeout" {
				orderType = string(model.OrderTypePickup)
			}
			placeOrder(ctx, rec, orderUC, printer, fields[1], fields[2], orderType)

		case "last":
			showLastOrder(ctx, local)

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func showMenu(ctx context.Context, foodRepo repo.FoodItemRepository, sizeRepo repo.SizeOptionRepository) {
	items, _, err := foodRepo.ListPublic(ctx, repo.FoodItemListQuery{Page: 1, Limit: 100, AvailableOnly: true})
	if err != nil {
		fmt.Println("menu unavailable:", err)
		return
	}

	for i, it := range items {
		fmt.Printf("%3d. %-30s %s\n", i+1, it.Name, receipt.FormatPeso(it.Price))
	}

	sizes, err := sizeRepo.ListActive(ctx)
	if err == nil && len(sizes) > 0 {
		fmt.Println("sizes:")
		for _, s := range sizes {
			fmt.Printf("     %-10s x%.2f\n", s.Name, s.Multiplier)
		}
	}
}

func addToCart(ctx context.Context, rec *cart.Reconciler, foodRepo repo.FoodItemRepository, sizeRepo repo.SizeOptionRepository, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: add <No> [qty] [size]")
		return
	}

	no, err := strconv.Atoi(args[0])
	if err != nil || no < 1 {
		fmt.Println("invalid item number")
		return
	}

	items, _, err := foodRepo.ListPublic(ctx, repo.FoodItemListQuery{Page: 1, Limit: 100, AvailableOnly: true})
	if err != nil || no > len(items) {
		fmt.Println("item not found")
		return
	}
	item := items[no-1]

	qty := int64(1)
	if len(args) >= 2 {
		q, qerr := strconv.ParseInt(args[1], 10, 64)
		if qerr != nil || q < 1 {
			fmt.Println("invalid quantity")
			return
		}
		qty = q
	}

	var size *model.SizeOption
	if len(args) >= 3 {
		sizes, serr := sizeRepo.ListActive(ctx)
		if serr != nil {
			fmt.Println("sizes unavailable:", serr)
			return
		}
		for i := range sizes {
			if strings.EqualFold(sizes[i].Name, args[2]) {
				size = &sizes[i]
				break
			}
		}
		if size == nil {
			fmt.Println("unknown size:", args[2])
			return
		}
	}

	rec.AddLine(ctx, model.NewCartLine(item, size, qty))
	showCart(rec)
}

func showCart(rec *cart.Reconciler) {
	lines := rec.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return
	}

	for i, l := range lines {
		name := l.Name
		if l.SizeName != "" {
			name += " (" + l.SizeName + ")"
		}
		fmt.Printf("%3d. %-30s %dx %s = %s\n", i+1, name, l.Quantity, receipt.FormatPeso(l.Price), receipt.FormatPeso(l.LineTotal()))
	}

	t := rec.Totals()
	fmt.Printf("     TOTAL: %s (%d items)\n", receipt.FormatPeso(t.TotalPrice), t.TotalItems)
}

func lineByNumber(rec *cart.Reconciler, arg string) (model.CartLine, bool) {
	no, err := strconv.Atoi(arg)
	lines := rec.Lines()
	if err != nil || no < 1 || no > len(lines) {
		fmt.Println("invalid line number")
		return model.CartLine{}, false
	}
	return lines[no-1], true
}

func placeOrder(
	ctx context.Context,
	rec *cart.Reconciler,
	orderUC *usecase.OrderUsecase,
	printer receipt.Printer,
	name string,
	phone string,
	orderType string,
) {
	out, err := orderUC.PlaceOrder(ctx, rec, usecase.PlaceOrderInput{
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: "BOKI Restaurant (in-store)",
		OrderType:       orderType,
		PaymentMethod:   string(model.PaymentMethodCash),
	})
	if err != nil {
		fmt.Println("order failed:", err)
		return
	}

	number := receipt.GenerateOrderNumber(out.Order.CreatedAt)
	text := receipt.FormatText(receipt.FromOrder(out.Order, out.Order.Items, number, out.Order.CreatedAt))
	if perr := printer.Print(text); perr != nil {
		log.Warn().Err(perr).Msg("kiosk: receipt print failed")
	}

	fmt.Printf("order placed. estimated time: %s\n", out.EstimatedTime)
}

func showLastOrder(ctx context.Context, local *localstore.Store) {
	last, err := local.LoadLastOrder(ctx)
	if err != nil || last == nil {
		fmt.Println("no recent order")
		return
	}

	fmt.Printf("order %s (%s)\n", last.ID, last.Status)
	for _, l := range last.Items {
		fmt.Printf("  %dx %s\n", l.Quantity, l.Name)
	}
	fmt.Printf("  total %s, %s\n", receipt.FormatPeso(last.Total), last.EstimatedTime)
}
