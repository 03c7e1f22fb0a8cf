package handler

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"gem_market/internal/domain/service/deal"
	"gem_market/internal/transport/bot/view"
	"gem_market/pkg/logx"
)

const dashboardPageSize = 10

func (h *Handler) OnDashboardCallback(ctx *th.Context, query telego.CallbackQuery) error {
	var page int
	_, err := fmt.Sscanf(query.Data, "dashboard_page:%d", &page)
	if err != nil || page < 1 {
		page = 1
	}

	text, keyboard, err := h.dashboardPage(ctx, page)
	if err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText(view.DashboardError).WithShowAlert())
		return err
	}

	_, err = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(query.Message.GetChat().ID),
		MessageID:   query.Message.GetMessageID(),
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		// Telegram отвечает ошибкой, если текст не изменился.
		logger(ctx).Debug("edit dashboard message", logx.Error(err))
	}

	_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))

	return nil
}

func (h *Handler) dashboardPage(ctx context.Context, page int) (string, *telego.InlineKeyboardMarkup, error) {
	entries, err := h.svc.Dashboard(ctx, h.operator, deal.Page{
		Limit:  dashboardPageSize,
		Offset: (page - 1) * dashboardPageSize,
	})
	if err != nil {
		return "", nil, err
	}

	if len(entries) == 0 && page == 1 {
		return view.DashboardEmpty, nil, nil
	}

	return view.Dashboard(entries, page), paginationKeyboard(page, len(entries) == dashboardPageSize), nil
}

func paginationKeyboard(page int, hasNext bool) *telego.InlineKeyboardMarkup {
	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("⬅️").
			WithCallbackData(fmt.Sprintf("dashboard_page:%d", page-1)))
	}

	buttons = append(buttons, tu.InlineKeyboardButton(fmt.Sprintf("%d", page)).
		WithCallbackData("noop"))

	if hasNext {
		buttons = append(buttons, tu.InlineKeyboardButton("➡️").
			WithCallbackData(fmt.Sprintf("dashboard_page:%d", page+1)))
	}

	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(buttons...),
	)
}
