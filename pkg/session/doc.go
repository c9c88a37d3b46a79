// Package session owns the single shared backend session and everything
// that guards it: lifecycle state, mutually exclusive initialization,
// transparent re-creation of a dead session, and the pacing gate that
// spaces out invocation starts.
//
// All requests in the process go through one Manager. The Manager is the
// only component that reads or writes the session handle and the last
// invocation stamp; handlers interact with it exclusively through Start,
// Stop, Invoke, and InvokeStream.
//
// # State Machine
//
//	Uninitialized -> Initializing -> Ready
//	Ready -> (backend reports dead) -> NotReady -> Initializing -> Ready
//	Ready|NotReady -> Stop -> Uninitialized
//
// Initialization failure returns the Manager to Uninitialized and surfaces
// the error; the next invocation attempts initialization again. There is no
// automatic retry loop.
package session
