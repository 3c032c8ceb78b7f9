package entity

import "errors"

var (
	ErrInvalidTurn = errors.New("invalid turn")
	ErrTurnOrder   = errors.New("turn out of order")
)
