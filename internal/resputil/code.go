package resputil

// User-facing messages shared across handlers. Per-entity messages
// («Проект не найден» etc.) stay at the call site.
const (
	MsgUnauthorized = "Требуется авторизация"
	MsgForbidden    = "Недостаточно прав"
	MsgServerError  = "Ошибка сервера"
)
