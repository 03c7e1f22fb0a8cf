package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/transport/bot/view"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Status(h.reconciler.Stats(), h.svc.Settings()))
}

func (h *Handler) OnDeal(ctx *th.Context, msg telego.Message) error {
	d, ok, err := h.dealFromArgs(ctx, msg, "deal")
	if !ok {
		return err
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.DealCard(d))
}

func (h *Handler) OnVerify(ctx *th.Context, msg telego.Message) error {
	d, ok, err := h.dealFromArgs(ctx, msg, "verify")
	if !ok {
		return err
	}

	report, err := h.svc.VerifyPairingIntegrity(ctx, d.ID)
	if err != nil {
		logger(ctx).Error("pairing verification failed", slog.String(logx.FieldDealNumber, d.Number), logx.Error(err))
		return h.send(ctx, msg.Chat.ID, view.DealLoadError)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.PairingReport(d.Number, report))
}

func (h *Handler) OnReconcile(ctx *th.Context, msg telego.Message) error {
	d, ok, err := h.dealFromArgs(ctx, msg, "reconcile")
	if !ok {
		return err
	}

	report, err := h.svc.ReconcilePairing(ctx, d.ID)
	if err != nil {
		logger(ctx).Error("pairing reconcile failed", slog.String(logx.FieldDealNumber, d.Number), logx.Error(err))
		return h.send(ctx, msg.Chat.ID, view.DealLoadError)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.PairingReport(d.Number, report))
}

func (h *Handler) OnStartReconcile(ctx *th.Context, msg telego.Message) error {
	if h.reconciler.IsRunning() {
		return h.send(ctx, msg.Chat.ID, view.ReconcilerAlreadyRunning)
	}

	// Сверка живёт дольше обработки команды.
	if err := h.reconciler.Start(context.WithoutCancel(ctx)); err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf(view.ReconcilerStartError, err))
	}

	return h.send(ctx, msg.Chat.ID, view.ReconcilerStarted)
}

func (h *Handler) OnStopReconcile(ctx *th.Context, msg telego.Message) error {
	if !h.reconciler.IsRunning() {
		return h.send(ctx, msg.Chat.ID, view.ReconcilerNotRunning)
	}

	h.reconciler.Stop()

	return h.send(ctx, msg.Chat.ID, view.ReconcilerStopped)
}

func (h *Handler) OnDashboard(ctx *th.Context, msg telego.Message) error {
	text, keyboard, err := h.dashboardPage(ctx, 1)
	if err != nil {
		logger(ctx).Error("dashboard failed", logx.Error(err))
		return h.send(ctx, msg.Chat.ID, view.DashboardError)
	}

	_, err = ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: msg.Chat.ID},
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: keyboard,
	})
	return err
}

// dealFromArgs ищет сделку по номеру из аргумента команды. ok=false значит,
// что ответ пользователю уже отправлен.
func (h *Handler) dealFromArgs(ctx *th.Context, msg telego.Message, command string) (*entity.Deal, bool, error) {
	args := strings.Fields(msg.Text)
	if len(args) < 2 {
		return nil, false, h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.DealMissingArgument, command))
	}

	d, err := h.svc.GetByNumber(ctx, args[1])
	if err != nil {
		if domain.HasCode(err, errcodes.DealNotFound) {
			return nil, false, h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.DealNotFound, args[1]))
		}
		logger(ctx).Error("failed to load deal", slog.String(logx.FieldDealNumber, args[1]), logx.Error(err))
		return nil, false, h.send(ctx, msg.Chat.ID, view.DealLoadError)
	}

	return d, true, nil
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}

func (h *Handler) send(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}
