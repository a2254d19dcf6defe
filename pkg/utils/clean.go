// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки аргументов LLM от markdown-обёртки
// и нормализации текста, полученного инструментами из сети.
package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// LLM часто возвращает JSON обёрнутым в markdown кодовые блоки:
//   ```json
//   {"key": "value"}
//   ```
//
// Эта функция очищает такие обёртки, возвращая чистый JSON.
// Пустой ввод превращается в "{}" — инструменты без аргументов
// получают валидный объект.
//
// Примеры:
//   ```json {"a": 1} ``` → {"a": 1}
//   ``` {"a": 1} ``` → {"a": 1}
//   "" → {}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	// Удаляем ```json в начале
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```Json")

	// Удаляем ``` в начале
	s = strings.TrimPrefix(s, "```")

	// Удаляем ``` в конце
	s = strings.TrimSuffix(s, "```")

	s = strings.TrimSpace(s)
	if s == "" {
		return "{}"
	}
	return s
}

// CollapseWhitespace сводит любые последовательности пробельных символов
// к одному пробелу.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate обрезает строку до max рун, добавляя "…".
//
// Режет по границе руны: ответы новостных сайтов бывают на норвежском,
// и байтовая обрезка портила бы æ/ø/å.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
