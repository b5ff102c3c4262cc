package repo

import "errors"

// ErrInvalidRecord — запись нарушает инвариант таблицы.
var ErrInvalidRecord = errors.New("invalid record")
