package receipt

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"app/internal/domain/model"

	"github.com/dustin/go-humanize"
)

// レシートの1行分
type Line struct {
	Name     string
	Quantity int64
	//サイズ倍率込みの単価
	UnitPrice int64
	SizeName  string
}

type Data struct {
	OrderID     string
	OrderNumber string

	CustomerName  string
	CustomerPhone string
	OrderType     model.OrderType

	Lines       []Line
	TotalAmount int64

	//時計には依存しない。呼び出し側が注入する。
	Timestamp time.Time
}

// ペソ表記（3桁区切り・小数2桁）
func FormatPeso(amount int64) string {
	return "₱" + humanize.Comma(amount) + ".00"
}

// 注文番号: BK + yymmdd + 乱数3桁
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("BK%s%03d", now.Format("060102"), rand.Intn(1000))
}

// キオスク向けの表示。店内注文は配達をDINE-IN、持ち帰りをTAKE-OUTとして出す。
func displayOrderType(t model.OrderType) string {
	if t == model.OrderTypeDelivery {
		return "DINE-IN"
	}
	return "TAKE-OUT"
}

// 注文をレシート文字列にする純関数。同じ入力なら必ず同じ出力。
// 印刷・書き出しはこの出力をそのままシンクへ渡すだけ。
func FormatText(d Data) string {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString("              BOKI RESTAURANT\n")
	b.WriteString("              Order Receipt\n")
	b.WriteString("========================================\n\n")

	fmt.Fprintf(&b, "Order #: %s\n", d.OrderNumber)
	fmt.Fprintf(&b, "Date: %s\n", d.Timestamp.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n", d.Timestamp.Format("15:04:05"))
	fmt.Fprintf(&b, "Type: %s\n\n", displayOrderType(d.OrderType))

	b.WriteString("----------------------------------------\n")
	b.WriteString("                ITEMS\n")
	b.WriteString("----------------------------------------\n")

	for _, l := range d.Lines {
		name := l.Name
		if l.SizeName != "" {
			name += " (" + l.SizeName + ")"
		}
		fmt.Fprintf(&b, "%s\n", name)
		fmt.Fprintf(&b, "  %dx %s = %s\n", l.Quantity, FormatPeso(l.UnitPrice), FormatPeso(l.UnitPrice*l.Quantity))
	}

	b.WriteString("\n----------------------------------------\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", FormatPeso(d.TotalAmount))
	b.WriteString("----------------------------------------\n\n")

	b.WriteString("Please take this receipt to the cashier\n")
	b.WriteString("to complete your payment.\n\n")

	fmt.Fprintf(&b, "Order ID: %s\n\n", d.OrderID)

	b.WriteString("Thank you for choosing BOKI!\n")
	b.WriteString("========================================\n")

	return b.String()
}

// 印刷・書き出しのシンク。渡すテキストはFormatTextの出力そのもの。
type Printer interface {
	Print(text string) error
}

// FromOrderは確定済み注文＋明細をレシート入力へ落とす。
func FromOrder(order model.Order, items []model.OrderItem, orderNumber string, at time.Time) Data {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			Name:      it.NameSnapshot,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			SizeName:  it.SizeName,
		})
	}
	return Data{
		OrderID:       order.ID,
		OrderNumber:   orderNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		OrderType:     order.OrderType,
		Lines:         lines,
		TotalAmount:   order.TotalAmount,
		Timestamp:     at,
	}
}
