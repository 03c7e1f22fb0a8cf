package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/pkg/logx"
)

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64, opts ...telego.BotOption) (*TelegramBot, error) {
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Bot клиент Telegram, общий с админ-ботом.
func (b *TelegramBot) Bot() *telego.Bot {
	return b.bot
}

// Notify отправляет событие сразу, без очереди.
func (b *TelegramBot) Notify(ctx context.Context, event entity.DealEvent) error {
	return b.SendDealEvent(ctx, event)
}

func (b *TelegramBot) SendDealEvent(ctx context.Context, event entity.DealEvent) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatDealEvent(event),
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	logger(ctx).Debug("deal event sent",
		slog.String(logx.FieldDealNumber, event.DealNumber),
		slog.String("event", string(event.Kind)),
	)

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}

//nolint:gochecknoglobals
var eventTitles = map[value.EventKind]string{
	value.EventDealCreated:     "🆕 <b>Deal created</b>",
	value.EventTermsProposed:   "💬 <b>Terms proposed</b>",
	value.EventTermsAccepted:   "🤝 <b>Terms accepted</b>",
	value.EventStageChanged:    "🔄 <b>Deal updated</b>",
	value.EventUnitSubstituted: "💎 <b>Unit substituted</b>",
	value.EventDealCompleted:   "✅ <b>Deal completed</b>",
	value.EventDealCancelled:   "❌ <b>Deal cancelled</b>",
	value.EventPairingRepaired: "🛠 <b>Pairing repaired</b>",
}

// FormatDealEvent HTML-текст уведомления.
func FormatDealEvent(event entity.DealEvent) string {
	title, ok := eventTitles[event.Kind]
	if !ok {
		title = "<b>" + html.EscapeString(string(event.Kind)) + "</b>"
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "📄 <b>Deal:</b> #%s (%s)\n", html.EscapeString(event.DealNumber), event.DealType)
	fmt.Fprintf(&sb, "📍 <b>Stage:</b> %s / %s\n", event.Stage, event.Status)
	fmt.Fprintf(&sb, "💰 <b>Amount:</b> $%s", event.Amount.StringFixed(2))

	if event.Details != "" {
		sb.WriteString("\n\n")
		sb.WriteString(html.EscapeString(event.Details))
	}

	return sb.String()
}
