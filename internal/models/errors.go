package models

import "errors"

// Общие ошибки доменного слоя. Хендлеры мапят их на HTTP статусы.
var (
	ErrNotFound = errors.New("resource not found") // Сущность отсутствует или принадлежит другому пользователю

	// Ошибки жизненного цикла
	ErrInvalidStatus       = errors.New("operation is not allowed in the current status")
	ErrFinalized           = errors.New("finalized entities cannot be modified")
	ErrInvalidCharacterIDs = errors.New("character list is invalid or contains ineligible characters")
	ErrCoverImageExists    = errors.New("story already has a cover image")

	// Ошибки генерации
	ErrGenerationFailed = errors.New("generation failed")

	// Ошибки аутентификации (граница HTTP слоя)
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Общие
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)
