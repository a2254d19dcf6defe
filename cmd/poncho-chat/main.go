// Poncho Chat — чат с LLM, инструментами и подсказками.
// Точка входа: TUI по умолчанию, однократный запрос через "ask".
package main

func main() {
	Execute()
}
