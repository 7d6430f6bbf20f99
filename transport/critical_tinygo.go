//go:build tinygo || baremetal

package transport

import "runtime/interrupt"

type irqState = interrupt.State

func disableInterrupts() irqState { return interrupt.Disable() }

func restoreInterrupts(s irqState) { interrupt.Restore(s) }
