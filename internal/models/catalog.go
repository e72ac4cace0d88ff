package models

// StatusDefinition строка справочника статусов жизненного цикла заявки.
// Справочник загружается один раз и считается неизменяемым на время работы процесса.
type StatusDefinition struct {
	Code           string `db:"code" json:"code"`
	Label          string `db:"label" json:"label"`
	Description    string `db:"description" json:"description"`
	ProgressWeight int    `db:"progress_weight" json:"progress_weight"`
	Terminal       bool   `db:"terminal" json:"terminal"`
}
