package shell

import "errors"

var (
	ErrNotConnected       = errors.New("shell: not connected")
	ErrAlreadyConnected   = errors.New("shell: connection already open")
	ErrTransactionTimeout = errors.New("shell: transaction timed out before sentinel")
	ErrSentinelNotFound   = errors.New("shell: sentinel not observed within read budget")
)
