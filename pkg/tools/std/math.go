// Package std содержит стандартные инструменты чата: арифметику,
// новости, погоду и инструмент подсказок.
//
// Все инструменты следуют контракту "Raw In, String Out": на вход сырой
// JSON аргументов от LLM, на выход текст для модели. Внутренние ошибки
// не пробрасываются наружу, а маскируются фиксированной строкой-извинением.
package std

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Строки-извинения, которые видит модель при сбое инструмента.
const (
	NewsApology    = "I'm sorry, I couldn't find the news headlines."
	WeatherApology = "I'm sorry, I couldn't find the weather forecast."
	MathApology    = "I'm sorry, I couldn't compute that."
)

// wholeNumber — целое число в аргументах LLM.
//
// Модели присылают 2, 2.0 или "2": принимаются все варианты,
// если значение целое. 2.5 и "x" — ошибка.
type wholeNumber int64

// UnmarshalJSON реализует json.Unmarshaler.
func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = wholeNumber(v)
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("not a whole number: %s", data)
	}
	*n = wholeNumber(f)
	return nil
}

// binaryArgs — аргументы add/multiply.
type binaryArgs struct {
	A *wholeNumber `json:"a"`
	B *wholeNumber `json:"b"`
}

func parseBinaryArgs(argsJSON string) (int64, int64, bool) {
	var args binaryArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return 0, 0, false
	}
	if args.A == nil || args.B == nil {
		return 0, 0, false
	}
	return int64(*args.A), int64(*args.B), true
}

func binaryDefinition(name, description string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  tools.ObjectSchema(map[string]string{"a": "integer", "b": "integer"}, "a", "b"),
	}
}

// AddTool складывает два целых числа.
type AddTool struct{}

// NewAddTool создает инструмент сложения.
func NewAddTool() *AddTool { return &AddTool{} }

// Definition возвращает определение инструмента для function calling.
func (t *AddTool) Definition() tools.ToolDefinition {
	return binaryDefinition("add", "Adds a and b.")
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *AddTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	a, b, ok := parseBinaryArgs(argsJSON)
	if !ok {
		utils.Warn("add: invalid arguments", "args", argsJSON)
		return MathApology, nil
	}
	return strconv.FormatInt(a+b, 10), nil
}

// MultiplyTool перемножает два целых числа.
type MultiplyTool struct{}

// NewMultiplyTool создает инструмент умножения.
func NewMultiplyTool() *MultiplyTool { return &MultiplyTool{} }

// Definition возвращает определение инструмента для function calling.
func (t *MultiplyTool) Definition() tools.ToolDefinition {
	return binaryDefinition("multiply", "Multiplies a and b.")
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *MultiplyTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	a, b, ok := parseBinaryArgs(argsJSON)
	if !ok {
		utils.Warn("multiply: invalid arguments", "args", argsJSON)
		return MathApology, nil
	}
	return strconv.FormatInt(a*b, 10), nil
}
