package loader

import "errors"

// Ошибки loader'а.
var (
	// ErrUnknownMessageType — нет обработчика для типа сообщения.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrSinkFailed — запись части цепочек в хранилище не удалась.
	ErrSinkFailed = errors.New("evolution sink failed")

	// ErrLoaderStopped — loader остановлен.
	ErrLoaderStopped = errors.New("loader stopped")
)
