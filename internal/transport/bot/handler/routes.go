package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"gem_market/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnDeal, th.CommandEqual("deal"))
	adminGroup.HandleMessage(h.OnVerify, th.CommandEqual("verify"))
	adminGroup.HandleMessage(h.OnReconcile, th.CommandEqual("reconcile"))
	adminGroup.HandleMessage(h.OnDashboard, th.CommandEqual("dashboard"))
	adminGroup.HandleMessage(h.OnStartReconcile, th.CommandEqual("startreconcile"))
	adminGroup.HandleMessage(h.OnStopReconcile, th.CommandEqual("stopreconcile"))

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnDashboardCallback, th.CallbackDataPrefix("dashboard_page"))
}
