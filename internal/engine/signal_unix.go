//go:build unix

package engine

import "syscall"

var interruptSignal = syscall.SIGTERM
