package chat

import "errors"

var (
	// ErrModelAdapter оборачивает любую ошибку модели (сеть, API, пустой ответ).
	// Ход прерывается, в истории остаётся только сообщение пользователя.
	ErrModelAdapter = errors.New("model adapter failure")

	// ErrEmptyPrompt возвращается для пустого или пробельного ввода.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrTurnInProgress возвращается если предыдущий ход ещё не завершён.
	ErrTurnInProgress = errors.New("turn already in progress")

	// ErrInvalidConfig возвращается NewSession при незаполненных зависимостях.
	ErrInvalidConfig = errors.New("invalid session config")
)
