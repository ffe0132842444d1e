package model

// AuditRequest is a single submitted audit intake. Records are immutable
// once stored; the operator removes them by position when handled.
type AuditRequest struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	AuditType string `json:"audit_type"`
	Goal      string `json:"goal"`
	Link      string `json:"link"`
	// RFC 3339 creation time, assigned by the repository when empty.
	Timestamp string `json:"timestamp"`
}

// AuditTypeOptions are the only accepted answers for the first intake step.
var AuditTypeOptions = []string{
	"Telegram Ads",
	"Канал и оформление",
	"Посевы",
	"Всё сразу",
}

// GoalOptions are the only accepted answers for the second intake step.
var GoalOptions = []string{
	"Продажи",
	"Подписчики",
	"Вовлечение",
	"Другое",
}
