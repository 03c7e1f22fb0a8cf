package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/worker"
)

func Status(stats worker.ReconcilerStats, settings deal.Settings) string {
	state := "🔴 остановлена"
	if stats.Running {
		state = "🟢 работает"
	}

	last := "ещё не было"
	if !stats.LastCycleAt.IsZero() {
		last = stats.LastCycleAt.Format("2006-01-02 15:04:05")
	}

	return fmt.Sprintf(`📊 <b>Статус системы</b>

🔍 <b>Сверка связей:</b> %s
🔁 <b>Циклов:</b> %d, последний: %s
✅ <b>Проверено:</b> %d, починено: %d, ошибок: %d

🏢 <b>Посредник:</b> %s
💵 <b>Комиссия продавца:</b> %s%%
📉 <b>Лимит скидки:</b> %s%% / %s%% для посредника`,
		state,
		stats.Cycles, last,
		stats.Checked, stats.Repaired, stats.Failed,
		html.EscapeString(settings.ManagementCompany),
		settings.SellerFeeRate.Shift(2).String(),
		settings.BuyerDiscountCap.String(), settings.PrivilegedDiscountCap.String(),
	)
}

func DealCard(d *entity.Deal) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📄 <b>Сделка #%s</b>\n", html.EscapeString(d.Number))
	fmt.Fprintf(&sb, "🏷 %s\n", d.Type)
	fmt.Fprintf(&sb, "📍 %s / %s\n", d.Stage, d.Status)
	fmt.Fprintf(&sb, "💰 $%s", d.Amount.StringFixed(2))
	if d.Fee.IsPositive() {
		fmt.Fprintf(&sb, " (комиссия $%s)", d.Fee.StringFixed(2))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "💎 Позиций: %d\n", len(d.Items))

	if d.PairedDealID != uuid.Nil {
		fmt.Fprintf(&sb, "🔗 Сделка покупателя: <code>%s</code>\n", d.PairedDealID)
	}
	if len(d.PairedDealIDs) > 0 {
		fmt.Fprintf(&sb, "🔗 Сделок с продавцами: %d\n", len(d.PairedDealIDs))
	}
	if reason := d.Request.RejectionReason; reason != "" {
		fmt.Fprintf(&sb, "❌ %s\n", html.EscapeString(reason))
	}

	fmt.Fprintf(&sb, "🕒 Последнее действие: %s", d.LastActionAt.Format("2006-01-02 15:04"))

	return sb.String()
}

func PairingReport(number string, r entity.PairingReport) string {
	if r.OK() {
		return fmt.Sprintf("✅ Связи сделки <code>%s</code> в порядке", html.EscapeString(number))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ <b>Расхождения в сделке <code>%s</code></b>\n", html.EscapeString(number))

	for _, group := range []struct {
		title string
		ids   []uuid.UUID
	}{
		{"Нет обратной ссылки", r.MissingBackLinks},
		{"Ссылка на несуществующую сделку", r.DanglingIDs},
		{"Сделка привязана к другому покупателю", r.ForeignLinks},
		{"Альтернатива не в списке", r.UnlistedAlternatives},
	} {
		if len(group.ids) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n<b>%s:</b>\n", group.title)
		for _, id := range group.ids {
			fmt.Fprintf(&sb, "• <code>%s</code>\n", id)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

//nolint:gochecknoglobals
var dashboardIcons = map[string]string{
	"mainCustomerSale":            "🛒",
	"primarySupplierPurchase":     "📦",
	"alternativeSupplierPurchase": "🔀",
	"standaloneSupplierPurchase":  "📥",
}

func Dashboard(entries []entity.DashboardEntry, page int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 <b>Сделки посредника</b> (стр. %d)\n\n", page)

	for _, e := range entries {
		icon := dashboardIcons[string(e.Kind)]
		fmt.Fprintf(&sb, "%s <code>%s</code> %s/%s $%s",
			icon, html.EscapeString(e.Deal.Number), e.Deal.Stage, e.Deal.Status, e.Deal.Amount.StringFixed(2))
		if e.CounterpartyName != "" {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(e.CounterpartyName))
		}
		if e.LinkedDealNumber != "" {
			fmt.Fprintf(&sb, " → #%s", html.EscapeString(e.LinkedDealNumber))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
