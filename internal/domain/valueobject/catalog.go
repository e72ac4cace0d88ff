package valueobject

import "strings"

// StatusDefinition запись справочника статусов: метка, базовый вес прогресса
// и признак терминальности.
type StatusDefinition struct {
	Code           StatusCode
	Label          string
	Description    string
	ProgressWeight int
	Terminal       bool
}

// UnknownDefinition фолбэк для кодов, отсутствующих в справочнике. Отображение
// не должно падать из-за неизвестного статуса бэкенда.
var UnknownDefinition = StatusDefinition{
	Code:           "UNKNOWN",
	Label:          "Unknown",
	ProgressWeight: 20,
	Terminal:       false,
}

// StatusCatalog неизменяемый справочник статусов, поиск по коду без учёта регистра.
type StatusCatalog struct {
	defs map[string]StatusDefinition
}

// NewStatusCatalog строит справочник из набора определений.
func NewStatusCatalog(defs []StatusDefinition) *StatusCatalog {
	m := make(map[string]StatusDefinition, len(defs))
	for _, d := range defs {
		m[strings.ToUpper(string(d.Code))] = d
	}
	return &StatusCatalog{defs: m}
}

// DefaultStatusCatalog возвращает встроенный справочник. Используется, пока
// таблица status_definitions пуста, и как сид для миграции.
func DefaultStatusCatalog() *StatusCatalog {
	return NewStatusCatalog(DefaultStatusDefinitions())
}

// DefaultStatusDefinitions канонический набор статусов платформы.
func DefaultStatusDefinitions() []StatusDefinition {
	return []StatusDefinition{
		{Code: StatusNew, Label: "New", Description: "Заявка подана и ожидает триажа", ProgressWeight: 5},
		{Code: StatusPending, Label: "Pending", Description: "Заявка в триаже, готовится предложение цены", ProgressWeight: 15},
		{Code: StatusWaitingCustomer, Label: "Waiting For Customer", Description: "Ожидается решение заказчика", ProgressWeight: 30},
		{Code: StatusInProgress, Label: "In Progress", Description: "Тестирование идёт", ProgressWeight: 60},
		{Code: StatusReadyForReview, Label: "Ready For Review", Description: "Результаты готовы к проверке", ProgressWeight: 85},
		{Code: StatusCompleted, Label: "Completed", Description: "Работа завершена", ProgressWeight: 100, Terminal: true},
		{Code: StatusCancelled, Label: "Cancelled", Description: "Заявка отменена", ProgressWeight: 100, Terminal: true},
		{Code: StatusExpired, Label: "Expired", Description: "Заявка истекла без решения заказчика", ProgressWeight: 100, Terminal: true},
	}
}

// Lookup возвращает определение статуса. Никогда не ошибается: для
// неизвестного кода возвращается UnknownDefinition.
func (c *StatusCatalog) Lookup(code StatusCode) StatusDefinition {
	if def, ok := c.defs[strings.ToUpper(string(code))]; ok {
		return def
	}
	return UnknownDefinition
}

// IsTerminal сообщает, является ли статус терминальным.
func (c *StatusCatalog) IsTerminal(code StatusCode) bool {
	return c.Lookup(code).Terminal
}

// Label возвращает человекочитаемую метку статуса. Для кода вне справочника
// метка строится из самого кода: READY_FOR_REVIEW -> "Ready For Review".
func (c *StatusCatalog) Label(code StatusCode) string {
	if def, ok := c.defs[strings.ToUpper(string(code))]; ok {
		return def.Label
	}
	return HumanizeCode(string(code))
}

// All возвращает все определения справочника.
func (c *StatusCatalog) All() []StatusDefinition {
	out := make([]StatusDefinition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	return out
}

// DisplayBucket сводит детальный статус к укрупнённой корзине клиентского
// дашборда. Единый справочник вместо двух параллельных таксономий.
func (c *StatusCatalog) DisplayBucket(code StatusCode) string {
	switch StatusCode(strings.ToUpper(string(code))) {
	case StatusInProgress, StatusReadyForReview:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled, StatusExpired:
		return "failed"
	default:
		return "pending"
	}
}

// HumanizeCode превращает SNAKE_CASE код в заголовок с большими буквами.
func HumanizeCode(code string) string {
	parts := strings.FieldsFunc(strings.ToLower(code), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
