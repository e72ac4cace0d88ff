// Package pricing вычисляет стоимость выбранных видов тестирования в токенах.
// Все функции чистые и безопасны для конкурентного вызова.
package pricing

import "strings"

// Канонические ключи стоимости.
const (
	KeyBasicTest       = "basic_test"
	KeyIntegrationTest = "integration_test"
	KeyLoadTest        = "load_test"
	KeyAIAnalysis      = "ai_analysis"
)

// costTable стоимость канонических ключей в токенах.
var costTable = map[string]int{
	KeyBasicTest:       1,
	KeyIntegrationTest: 3,
	KeyLoadTest:        5,
	KeyAIAnalysis:      8,
}

// aliasTable сопоставляет нормализованные названия видов тестирования
// каноническим ключам. Названия приходят из UI в свободной форме.
var aliasTable = map[string]string{
	// базовое тестирование
	KeyBasicTest:            KeyBasicTest,
	"basic_testing":         KeyBasicTest,
	"functional_testing":    KeyBasicTest,
	"regression_testing":    KeyBasicTest,
	"usability_testing":     KeyBasicTest,
	"compatibility_testing": KeyBasicTest,
	"ui_testing":            KeyBasicTest,

	// интеграционное тестирование
	KeyIntegrationTest:           KeyIntegrationTest,
	"integration_testing":        KeyIntegrationTest,
	"api_testing":                KeyIntegrationTest,
	"system_integration_testing": KeyIntegrationTest,

	// нагрузочное тестирование
	KeyLoadTest:           KeyLoadTest,
	"load_testing":        KeyLoadTest,
	"performance_testing": KeyLoadTest,
	"stress_testing":      KeyLoadTest,
	"security_testing":    KeyLoadTest,

	// AI-анализ
	KeyAIAnalysis:          KeyAIAnalysis,
	"ai_assisted_testing":  KeyAIAnalysis,
	"ai_testing":           KeyAIAnalysis,
	"analysis_testing":     KeyAIAnalysis,
	"ai_assisted_analysis": KeyAIAnalysis,
}

// Normalize приводит произвольное название к нормализованному ключу: нижний
// регистр, последовательности небуквенно-цифровых символов схлопываются в один
// "_", ведущие и замыкающие "_" отбрасываются.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	prevUnderscore := false
	for _, r := range strings.ToLower(raw) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

// ResolveCostKey отображает нормализованный ключ в канонический. Ключи без
// алиаса возвращаются как есть.
func ResolveCostKey(key string) string {
	if canonical, ok := aliasTable[key]; ok {
		return canonical
	}
	return key
}

// CostOf возвращает стоимость канонического ключа в токенах. Любой ключ вне
// таблицы стоит как basic_test: незнакомые виды тестирования не отклоняются,
// а тарифицируются по минимальной ставке.
func CostOf(canonicalKey string) int {
	if cost, ok := costTable[canonicalKey]; ok {
		return cost
	}
	return costTable[KeyBasicTest]
}

// TokensFor возвращает стоимость одного вида тестирования в свободной форме.
func TokensFor(rawType string) int {
	return CostOf(ResolveCostKey(Normalize(rawType)))
}

// RequiredTokens возвращает суммарную стоимость выбранных видов тестирования.
// Пустой список стоит 0.
func RequiredTokens(types []string) int {
	total := 0
	for _, t := range types {
		total += TokensFor(t)
	}
	return total
}

// Catalog возвращает канонические ключи с их стоимостью для выдачи клиенту.
func Catalog() map[string]int {
	out := make(map[string]int, len(costTable))
	for k, v := range costTable {
		out[k] = v
	}
	return out
}
