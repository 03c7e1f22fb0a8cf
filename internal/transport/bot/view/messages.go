package view

const (
	StartMessage = `👋 <b>Панель площадки</b>

/status - состояние сверки и параметры
/deal <code>номер</code> - карточка сделки
/verify <code>номер</code> - проверить связи сделок
/reconcile <code>номер</code> - починить связи
/dashboard - сделки посредника
/startreconcile - запустить фоновую сверку
/stopreconcile - остановить фоновую сверку`

	DealMissingArgument = "❌ Использование: /%s <code>номер</code>"
	DealNotFound        = "⚠️ Сделка <code>%s</code> не найдена"
	DealLoadError       = "❌ Не удалось получить сделку"
	DashboardError      = "❌ Не удалось получить панель"
	DashboardEmpty      = "📭 Сделок нет"

	ReconcilerAlreadyRunning = "Сверка уже запущена!"
	ReconcilerNotRunning     = "Сверка не запущена!"
	ReconcilerStarted        = "Сверка запущена!"
	ReconcilerStopped        = "Сверка остановлена!"
	ReconcilerStartError     = "Ошибка запуска сверки: %v"
)
