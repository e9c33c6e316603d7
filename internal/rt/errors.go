package rt

import "fmt"

// Code identifies the type of runtime fault.
type Code int

// Stable fault codes - do not change values.
const (
	CodeDoubleFree    Code = 2001 // RT2001: decref past zero
	CodeUseAfterFree  Code = 2002 // RT2002: freed value used
	CodeTypeMismatch  Code = 2003 // RT2003: wrong kind for operation
	CodeTryDepth      Code = 2004 // RT2004: try stack overflow
	CodeUncaughtThrow Code = 2005 // RT2005: throw with no active try
	CodeBadTransition Code = 2006 // RT2006: invalid future state change
	CodeChannelClosed Code = 2007 // RT2007: send on closed channel
	CodeLeakDetected  Code = 2008 // RT2008: live values at leak check
	CodeInternal      Code = 2999 // RT2999: runtime invariant broken
)

// String returns the code as "RT2001" format.
func (c Code) String() string {
	return fmt.Sprintf("RT%d", c)
}

// Error represents a fatal runtime fault. Faults of this type signal misuse
// of the substrate (double free, use after free, broken invariants); they are
// not catchable by user-level try targets.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fault %s: %s", e.Code, e.Message)
}

func rtPanic(code Code, msg string) {
	panic(&Error{Code: code, Message: msg})
}
