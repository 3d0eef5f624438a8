//go:build windows

package engine

import "os"

var interruptSignal = os.Kill
